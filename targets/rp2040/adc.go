//go:build rp2040

package main

import (
	"device/rp"
	"machine"

	"adcvolt/core"
)

// RP2040 ADC inputs: 0-3 are GPIO26-29, 4 is the on-die temperature sensor.
const (
	rpADCInputs     = 5
	rpTempInput     = 4
	rpADCResolution = 12
)

// RpAdcDriver implements core.ADCDriver on the RP2040 ADC block. Completion
// is read from CS.READY, which the hardware raises at end of conversion.
type RpAdcDriver struct {
	input uint32
	armed bool
}

// NewRPAdcDriver constructs the driver; Configure powers the ADC up.
func NewRPAdcDriver() *RpAdcDriver {
	return &RpAdcDriver{}
}

// Configure selects the single input to convert. The block converts one
// input at a time, so exactly one channel is accepted.
func (d *RpAdcDriver) Configure(chs core.ChannelSet) error {
	ids := chs.IDs()
	if len(ids) != 1 {
		return core.ErrConfig
	}
	ch := ids[0]
	if ch >= rpADCInputs {
		return core.ErrConfig
	}

	machine.InitADC()

	if ch == rpTempInput {
		rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
	} else {
		// Put the GPIO into analog mode (input buffer off, no pulls).
		pins := [...]machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3}
		adc := machine.ADC{Pin: pins[ch]}
		if err := adc.Configure(machine.ADCConfig{}); err != nil {
			return err
		}
	}

	d.input = uint32(ch)
	return nil
}

// Start selects the input and kicks off one conversion
func (d *RpAdcDriver) Start() error {
	rp.ADC.CS.ReplaceBits(d.input<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
	d.armed = true
	return nil
}

// Poll checks CS.READY without waiting
func (d *RpAdcDriver) Poll() (core.Completion, bool) {
	if !d.armed || !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
		return core.Completion{}, false
	}
	d.armed = false
	return core.Completion{
		Channels: core.NewChannelSet(core.ADCChannelID(d.input)),
		Code:     core.RawSample(rp.ADC.RESULT.Get() & 0xFFF),
	}, true
}

// Cancel forgets the conversion in flight; the hardware finishes it on its
// own within 96 ADC clocks.
func (d *RpAdcDriver) Cancel() {
	d.armed = false
}
