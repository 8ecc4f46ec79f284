package core

import "math"

// Convert maps a raw code onto [0, referenceVolts] linearly, with the full
// scale code 2^resolutionBits-1 landing exactly on the reference.
// No validation is done here; see NewConverterConfig.
func Convert(code RawSample, referenceVolts float64, resolutionBits int) float64 {
	full := float64(uint64(1)<<uint(resolutionBits) - 1)
	return float64(code) * referenceVolts / full
}

// ConverterConfig fixes the resolution and reference for the lifetime of a sampler.
type ConverterConfig struct {
	ResolutionBits int
	ReferenceVolts float64
}

// NewConverterConfig validates the converter parameters once so that the
// per-sample path is arithmetic only.
func NewConverterConfig(resolutionBits int, referenceVolts float64) (ConverterConfig, error) {
	if resolutionBits <= 0 || resolutionBits > 32 {
		return ConverterConfig{}, configErr("resolution must be 1..32 bits", nil)
	}
	if !(referenceVolts > 0) || math.IsInf(referenceVolts, 0) {
		return ConverterConfig{}, configErr("reference voltage must be positive", nil)
	}
	return ConverterConfig{ResolutionBits: resolutionBits, ReferenceVolts: referenceVolts}, nil
}

// Volts converts code using the configured parameters.
func (c ConverterConfig) Volts(code RawSample) float64 {
	return Convert(code, c.ReferenceVolts, c.ResolutionBits)
}

// Microvolts is Volts rounded to the nearest microvolt.
func (c ConverterConfig) Microvolts(code RawSample) int32 {
	return int32(math.Round(c.Volts(code) * 1e6))
}

// MaxCode is the full scale code.
func (c ConverterConfig) MaxCode() RawSample {
	return RawSample(uint64(1)<<uint(c.ResolutionBits) - 1)
}

// Step is the voltage of one LSB.
func (c ConverterConfig) Step() float64 {
	return c.ReferenceVolts / float64(c.MaxCode())
}
