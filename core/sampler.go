package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"tinygo.org/x/drivers"
)

// PollPolicy bounds how long Acquire waits for a conversion.
type PollPolicy struct {
	// MaxPolls caps PollSample calls per cycle. Zero leaves only the context deadline.
	MaxPolls int
	// Backoff is slept between polls. Zero yields to other goroutines instead.
	Backoff time.Duration
}

// Reporter receives the results of a sampling loop.
type Reporter interface {
	Report(r Reading) error
	// Fault is told about recoverable failures such as timeouts.
	Fault(err error)
}

// Sampler runs trigger/poll/convert cycles against one controller.
type Sampler struct {
	ctrl   *Controller
	conv   ConverterConfig
	policy PollPolicy

	// CycleTimeout bounds each cycle started by Run or Update. Zero means
	// only the poll budget and the caller's context apply.
	CycleTimeout time.Duration

	last Reading
}

var _ drivers.Sensor = (*Sampler)(nil)

// NewSampler validates its inputs and returns a sampler.
func NewSampler(ctrl *Controller, conv ConverterConfig, policy PollPolicy) (*Sampler, error) {
	if ctrl == nil {
		return nil, configErr("no controller", nil)
	}
	if _, err := NewConverterConfig(conv.ResolutionBits, conv.ReferenceVolts); err != nil {
		return nil, err
	}
	if policy.MaxPolls < 0 || policy.Backoff < 0 {
		return nil, configErr("negative poll policy", nil)
	}
	return &Sampler{
		ctrl:         ctrl,
		conv:         conv,
		policy:       policy,
		CycleTimeout: time.Second,
	}, nil
}

// Converter returns the converter parameters.
func (s *Sampler) Converter() ConverterConfig { return s.conv }

// Acquire triggers one conversion and polls until it completes, the poll
// budget runs out, or ctx is done. A conversion left pending by an earlier
// timeout is abandoned first.
func (s *Sampler) Acquire(ctx context.Context) (Reading, error) {
	if s.ctrl.State() == StatePending {
		if err := s.ctrl.Abort(); err != nil {
			return Reading{}, err
		}
		DebugPrintln("[ADC] abandoned pending conversion")
	}
	if err := s.ctrl.Trigger(); err != nil {
		return Reading{}, err
	}

	chs := s.ctrl.Channels()
	for polls := 1; ; polls++ {
		code, ok, err := s.ctrl.PollSample(chs)
		if err != nil {
			return Reading{}, err
		}
		if ok {
			if code > s.conv.MaxCode() {
				return Reading{}, fmt.Errorf("%w: code 0x%X exceeds %d bits", ErrRange, code, s.conv.ResolutionBits)
			}
			r := Reading{Raw: code, Volts: s.conv.Volts(code)}
			s.last = r
			return r, nil
		}
		if s.policy.MaxPolls > 0 && polls >= s.policy.MaxPolls {
			RecordEvent(EvtTimeout, uint32(polls), 0)
			debugTimeout(polls, "poll budget spent")
			return Reading{}, fmt.Errorf("%w: not ready after %d polls", ErrTimeout, polls)
		}
		if err := ctx.Err(); err != nil {
			RecordEvent(EvtTimeout, uint32(polls), 1)
			debugTimeout(polls, err.Error())
			return Reading{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		if err := s.wait(ctx); err != nil {
			RecordEvent(EvtTimeout, uint32(polls), 1)
			debugTimeout(polls, err.Error())
			return Reading{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
	}
}

func debugTimeout(polls int, cause string) {
	if !IsDebugEnabled() {
		return
	}
	DebugPrintln("[ADC] timeout after " + utoa(uint32(polls)) + " polls: " + cause)
}

func (s *Sampler) wait(ctx context.Context) error {
	if s.policy.Backoff == 0 {
		runtime.Gosched()
		return nil
	}
	t := time.NewTimer(s.policy.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run samples every interval until ctx is done. Timeouts and range errors
// go to rep.Fault and the loop carries on; state and configuration errors
// and reporter failures stop it.
func (s *Sampler) Run(ctx context.Context, interval time.Duration, rep Reporter) error {
	if interval <= 0 {
		return configErr("sample interval must be positive", nil)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := s.acquireCycle(ctx)
		switch {
		case err == nil:
			if err := rep.Report(r); err != nil {
				return err
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrTimeout), errors.Is(err, ErrRange):
			rep.Fault(err)
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Update implements drivers.Sensor. Only drivers.Voltage starts a cycle.
func (s *Sampler) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	_, err := s.acquireCycle(context.Background())
	return err
}

func (s *Sampler) acquireCycle(ctx context.Context) (Reading, error) {
	if s.CycleTimeout <= 0 {
		return s.Acquire(ctx)
	}
	cctx, cancel := context.WithTimeout(ctx, s.CycleTimeout)
	defer cancel()
	return s.Acquire(cctx)
}

// Voltage returns the last reading in microvolts.
func (s *Sampler) Voltage() int32 { return s.conv.Microvolts(s.last.Raw) }

// Raw returns the last raw code.
func (s *Sampler) Raw() RawSample { return s.last.Raw }

// Last returns the last successful reading.
func (s *Sampler) Last() Reading { return s.last }

// WriterReporter writes report lines to W. Faults are passed to OnFault
// when set.
type WriterReporter struct {
	W       io.Writer
	OnFault func(error)

	buf []byte
}

func (w *WriterReporter) Report(r Reading) error {
	w.buf = AppendReport(w.buf[:0], r)
	_, err := w.W.Write(w.buf)
	return err
}

func (w *WriterReporter) Fault(err error) {
	if w.OnFault != nil {
		w.OnFault(err)
	}
}
