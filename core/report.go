package core

import (
	"errors"
	"strconv"
	"strings"
)

// Reading is one completed acquisition cycle.
type Reading struct {
	Raw   RawSample
	Volts float64
}

const (
	reportPrefix = "voltage = <"
	reportMiddle = "> (0x"
	reportSuffix = ") \r\n"
)

// ErrMalformedReport is returned by ParseReport for lines that are not reports.
var ErrMalformedReport = errors.New("malformed voltage report")

// AppendReport appends the report line for r to dst:
//
//	voltage = <0.375> (0x1000) \r\n
//
// Volts are printed with three decimals, the code as at least four upper
// case hex digits. Avoids fmt to keep firmware images small.
func AppendReport(dst []byte, r Reading) []byte {
	dst = append(dst, reportPrefix...)
	dst = appendMilli(dst, r.Volts)
	dst = append(dst, reportMiddle...)
	dst = appendHex4(dst, uint32(r.Raw))
	return append(dst, reportSuffix...)
}

// FormatReport returns the report line for r.
func FormatReport(r Reading) string {
	return string(AppendReport(make([]byte, 0, 32), r))
}

// appendMilli writes v with three decimals, rounding the exact binary
// value the way %.3f does.
func appendMilli(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', 3, 64)
}

const hexDigits = "0123456789ABCDEF"

func appendHex4(dst []byte, v uint32) []byte {
	var buf [8]byte
	pos := len(buf)
	for v > 0 || pos > len(buf)-4 {
		pos--
		buf[pos] = hexDigits[v&0xF]
		v >>= 4
	}
	return append(dst, buf[pos:]...)
}

// ParseReport parses a line produced by AppendReport. Surrounding
// whitespace (including the CRLF) is ignored.
func ParseReport(line string) (Reading, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, reportPrefix) || !strings.HasSuffix(s, ")") {
		return Reading{}, ErrMalformedReport
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, reportPrefix), ")")
	volts, hex, ok := strings.Cut(s, reportMiddle)
	if !ok {
		return Reading{}, ErrMalformedReport
	}
	v, err := strconv.ParseFloat(volts, 64)
	if err != nil {
		return Reading{}, errors.Join(ErrMalformedReport, err)
	}
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Reading{}, errors.Join(ErrMalformedReport, err)
	}
	return Reading{Raw: RawSample(code), Volts: v}, nil
}
