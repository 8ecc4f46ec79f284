package core

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-12

func TestConvertFullScale(t *testing.T) {
	if v := Convert(0, 1.5, 14); v != 0.0 {
		t.Errorf("Convert(0) = %v, want 0", v)
	}
	if v := Convert(16383, 1.5, 14); math.Abs(v-1.5) > epsilon {
		t.Errorf("Convert(16383) = %v, want 1.5", v)
	}
	if v := Convert(4095, 3.3, 12); math.Abs(v-3.3) > epsilon {
		t.Errorf("Convert(4095, 3.3, 12) = %v, want 3.3", v)
	}
}

func TestConvertLinearity(t *testing.T) {
	step := 1.5 / 16383
	prev := Convert(0, 1.5, 14)
	for code := RawSample(1); code <= 16383; code++ {
		v := Convert(code, 1.5, 14)
		if v <= prev {
			t.Fatalf("not monotonic at code %d: %v <= %v", code, v, prev)
		}
		if d := v - prev; math.Abs(d-step) > 1e-9 {
			t.Fatalf("step at code %d is %v, want %v", code, d, step)
		}
		prev = v
	}

	a, b := Convert(1000, 1.5, 14), Convert(3000, 1.5, 14)
	if math.Abs((b-a)-2000*step) > 1e-9 {
		t.Errorf("difference %v not proportional to 2000 steps", b-a)
	}
}

func TestConvertIdempotent(t *testing.T) {
	for _, code := range []RawSample{0, 1, 0x1000, 0x3FFF} {
		if Convert(code, 1.5, 14) != Convert(code, 1.5, 14) {
			t.Errorf("Convert(%d) not repeatable", code)
		}
	}
}

func TestConverterConfigValidation(t *testing.T) {
	testCases := []struct {
		name string
		bits int
		ref  float64
		ok   bool
	}{
		{"reference board", 14, 1.5, true},
		{"rp2040", 12, 3.3, true},
		{"32 bits", 32, 1.0, true},
		{"zero reference", 14, 0, false},
		{"negative reference", 14, -1.5, false},
		{"NaN reference", 14, math.NaN(), false},
		{"infinite reference", 14, math.Inf(1), false},
		{"zero bits", 0, 1.5, false},
		{"negative bits", -3, 1.5, false},
		{"too many bits", 33, 1.5, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConverterConfig(tc.bits, tc.ref)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrConfig) {
				t.Errorf("Expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestConverterConfigHelpers(t *testing.T) {
	conv, err := NewConverterConfig(14, 1.5)
	if err != nil {
		t.Fatalf("NewConverterConfig failed: %v", err)
	}
	if conv.MaxCode() != 0x3FFF {
		t.Errorf("MaxCode = 0x%X, want 0x3FFF", conv.MaxCode())
	}
	if math.Abs(conv.Step()-1.5/16383) > epsilon {
		t.Errorf("Step = %v", conv.Step())
	}
	if uv := conv.Microvolts(0x3FFF); uv != 1500000 {
		t.Errorf("Microvolts(full scale) = %d, want 1500000", uv)
	}
	if uv := conv.Microvolts(4096); uv != 375023 {
		t.Errorf("Microvolts(4096) = %d, want 375023", uv)
	}

	wide, _ := NewConverterConfig(32, 1.0)
	if wide.MaxCode() != 0xFFFFFFFF {
		t.Errorf("32-bit MaxCode = 0x%X", wide.MaxCode())
	}
}
