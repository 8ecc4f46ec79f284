//go:build rp2040

package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

const reportBaud = 115200

var uart = uartx.UART1

// InitSerial brings up USB CDC and the report UART
func InitSerial() error {
	// machine.Serial is USB CDC on the Pico; descriptors come from the runtime
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return err
	}
	return uart.Configure(uartx.UARTConfig{
		BaudRate: reportBaud,
		TX:       uartx.UART1_TX_PIN,
		RX:       uartx.UART1_RX_PIN,
	})
}

// reportWriter sends every line to both the UART and USB CDC. USB errors
// are ignored: nobody may have the port open.
type reportWriter struct {
	usbFailures uint32
}

func (w *reportWriter) Write(p []byte) (int, error) {
	if _, err := machine.Serial.Write(p); err != nil {
		w.usbFailures++
	}
	return uart.Write(p)
}

// WriteString implements io.StringWriter for the banner code
func (w *reportWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
