//go:build rp2040

package main

import (
	"machine"
	"strconv"

	"adcvolt/core"
)

// Version is set at link time: -ldflags "-X main.Version=..."
var Version = "dev"

// printBanner writes the greeting and device information that precede the
// report stream.
func printBanner(w *reportWriter, chs core.ChannelSet, conv core.ConverterConfig) {
	w.WriteString("Hello World!\r\n\r\n")

	w.WriteString("Vendor Name: Raspberry Pi\r\n")
	w.WriteString("Device type: " + machine.Device + "\r\n")
	w.WriteString("Device Info:\r\n")
	w.WriteString("\tUnique ID: " + hexBytes(machine.DeviceID()) + "\r\n")
	w.WriteString("\tCPU clock: " + strconv.FormatUint(uint64(machine.CPUFrequency()/1000000), 10) + " MHz\r\n\r\n")

	w.WriteString("Firmware version: " + Version + "\r\n")
	w.WriteString("ADC: channels " + chs.String() +
		", " + strconv.Itoa(conv.ResolutionBits) + " bits, reference " +
		strconv.FormatFloat(conv.ReferenceVolts, 'f', 3, 64) + " V\r\n\r\n")
}

func hexBytes(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, 2*len(b))
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0xF])
	}
	return string(out)
}
