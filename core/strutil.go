package core

// Integer-to-string helpers that avoid the fmt package. Stat lines and
// debug output are built from these so firmware binaries stay small and
// no formatting machinery runs near interrupt paths.

// itoa converts a signed integer to a string.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	negative := n < 0
	if negative {
		n = -n
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}
	if negative {
		digits++
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}
	if negative {
		buf[0] = '-'
	}
	return string(buf)
}

// utoa converts a 32-bit unsigned integer to a string.
func utoa(n uint32) string {
	return u64toa(uint64(n))
}

// u64toa converts a 64-bit unsigned integer to a string.
func u64toa(n uint64) string {
	if n == 0 {
		return "0"
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}
	return string(buf)
}
