// Package monitor reads the voltage report stream a board prints over serial.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"adcvolt/core"
)

// Monitor parses report lines from r and keeps statistics over them.
type Monitor struct {
	r *bufio.Reader

	// Follow keeps reading after io.EOF, for serial ports whose read
	// timeout surfaces as EOF. Empty (0, nil) reads, which bufio reports as
	// io.ErrNoProgress, are treated the same way.
	Follow bool
	// PollInterval is slept after an empty read in Follow mode.
	PollInterval time.Duration

	// OnReading is called for every parsed report.
	OnReading func(core.Reading)
	// OnLine is called for every other non-empty line (banner, device info).
	OnLine func(string)

	stats   Stats
	skipped int
	partial strings.Builder
}

// New returns a monitor reading from r.
func New(r io.Reader) *Monitor {
	return &Monitor{
		r:            bufio.NewReader(r),
		PollInterval: 10 * time.Millisecond,
	}
}

// Stats returns the statistics gathered so far.
func (m *Monitor) Stats() Stats { return m.stats }

// Skipped returns how many non-report lines were seen.
func (m *Monitor) Skipped() int { return m.skipped }

// Run consumes lines until the reader is exhausted (nil is returned) or ctx
// is done.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := m.r.ReadString('\n')
		m.partial.WriteString(chunk)
		if err == nil {
			m.handle(m.partial.String())
			m.partial.Reset()
			continue
		}
		if !errors.Is(err, io.EOF) && !(m.Follow && errors.Is(err, io.ErrNoProgress)) {
			return err
		}
		if !m.Follow {
			if m.partial.Len() > 0 {
				m.handle(m.partial.String())
				m.partial.Reset()
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.PollInterval):
		}
	}
}

func (m *Monitor) handle(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	r, err := core.ParseReport(line)
	if err != nil {
		m.skipped++
		if m.OnLine != nil {
			m.OnLine(line)
		}
		return
	}
	m.stats.Update(r.Volts)
	if m.OnReading != nil {
		m.OnReading(r)
	}
}
