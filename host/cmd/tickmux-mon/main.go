// tickmux-mon watches a board running tickmux demo firmware and reports
// per-slot firing rates from the stat lines it prints over serial.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"tickmux/host/monitor"
	"tickmux/host/serial"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config)")
	configPath = flag.String("config", "", "YAML config file")
	verbose    = flag.Bool("verbose", false, "Log firmware console output too")
)

func main() {
	flag.Parse()

	cfg := monitor.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = monitor.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	port, err := serial.Open(&serial.Config{
		Device: cfg.Device,
		Baud:   cfg.Baud,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open serial port")
	}
	defer port.Close()

	log.Info().Str("device", cfg.Device).Uint32("tick_us", cfg.TickUS).Msg("monitoring")

	mon := monitor.New(log, cfg.TickUS, cfg.StallAfter)
	if err := mon.Run(port); err != nil {
		log.Fatal().Err(err).Msg("serial read")
	}
	log.Info().Int("stats", mon.Observed()).Msg("stream ended")
}
