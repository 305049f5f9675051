// Package errcode defines small, stable error identifiers shared between
// the timer core and host tooling. A Code is a string newtype: comparable,
// allocation-free, and usable as an error, which matters in interrupt-adjacent
// code where fmt-style error construction is off limits.
package errcode

// Code is a stable error identifier.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK Code = "ok"

	// Soft-timer multiplexer.
	Full            Code = "timer_table_full"
	InvalidPeriod   Code = "invalid_period"
	InvalidCount    Code = "invalid_count"
	InvalidCallback Code = "invalid_callback"
	InvalidSlot     Code = "invalid_slot"

	// Hardware periodic trigger.
	Unachievable Code = "period_unachievable"
	InUse        Code = "timer_in_use"
	NotAttached  Code = "not_attached"

	Error Code = "error" // generic fallback
)

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
