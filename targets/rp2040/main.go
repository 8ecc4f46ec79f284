//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"adcvolt/config"
	"adcvolt/core"
)

// boardConfig is the sampling setup for a Pico: ADC0 (GPIO26), 12 bits
// against the 3.3 V rail, reported every 100 ms.
func boardConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Channels = []uint8{0}
	cfg.ResolutionBits = rpADCResolution
	cfg.ReferenceVolts = 3.3
	return cfg
}

func main() {
	// Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		fault()
	}

	if err := InitSerial(); err != nil {
		fault()
	}
	out := &reportWriter{}
	core.SetDebugWriter(func(s string) { out.WriteString(s + "\r\n") })

	cfg := boardConfig()
	chs, err := cfg.ChannelSet()
	if err != nil {
		fault()
	}
	conv, err := cfg.Converter()
	if err != nil {
		fault()
	}

	// No valid sample can be taken without the converter, so this is fatal.
	ctrl, err := core.Initialize(NewRPAdcDriver(), chs)
	if err != nil {
		fault()
	}
	sampler, err := core.NewSampler(ctrl, conv, cfg.PollPolicy())
	if err != nil {
		fault()
	}
	sampler.CycleTimeout = cfg.Timeout()

	printBanner(out, chs, conv)

	rep := &core.WriterReporter{
		W: out,
		OnFault: func(err error) {
			out.WriteString("adc fault: " + err.Error() + "\r\n")
			core.DumpEvents()
		},
	}

	// Run only returns on a protocol error; start over from a fresh cycle.
	for {
		if err := sampler.Run(context.Background(), cfg.Interval(), rep); err != nil {
			out.WriteString("sampler stopped: " + err.Error() + "\r\n")
			core.DumpEvents()
		}
		time.Sleep(cfg.Interval())
	}
}

// fault blinks the LED forever to signal a failed bring-up
func fault() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
