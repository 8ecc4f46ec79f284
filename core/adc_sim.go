package core

import (
	"sync"
	"time"
)

// SimADC is a software converter for host builds and tests. Completion is
// raised either after a number of polls or, when Delay is set, by a
// goroutine standing in for the conversion-complete interrupt.
type SimADC struct {
	mu sync.Mutex

	// Supported limits the channels Configure accepts. Zero accepts any.
	Supported ChannelSet
	// Latency is the number of polls that report not ready before completion.
	Latency int
	// Delay, when non-zero, completes the conversion asynchronously.
	Delay time.Duration

	source     func() RawSample
	completeOn ChannelSet
	configured ChannelSet
	startErr   error
	stuck      bool

	armed     bool
	countdown int
	gen       uint64
	starts    int
	latch     IRQLatch
}

// NewSimADC returns a simulated converter that always converts to code.
func NewSimADC(code RawSample) *SimADC {
	s := &SimADC{}
	s.SimulateValue(code)
	return s
}

// SimulateValue fixes the code returned by subsequent conversions.
func (s *SimADC) SimulateValue(code RawSample) {
	s.SetSource(func() RawSample { return code })
}

// SetSource makes each conversion call fn for its code.
func (s *SimADC) SetSource(fn func() RawSample) {
	s.mu.Lock()
	s.source = fn
	s.mu.Unlock()
}

// SimulateChannels makes completions report chs instead of the configured set.
func (s *SimADC) SimulateChannels(chs ChannelSet) {
	s.mu.Lock()
	s.completeOn = chs
	s.mu.Unlock()
}

// SimulateStartError makes Start fail with err until cleared with nil.
func (s *SimADC) SimulateStartError(err error) {
	s.mu.Lock()
	s.startErr = err
	s.mu.Unlock()
}

// SimulateStuck stops conversions from ever completing, like a converter
// whose interrupt never fires.
func (s *SimADC) SimulateStuck(stuck bool) {
	s.mu.Lock()
	s.stuck = stuck
	s.mu.Unlock()
}

// Starts returns how many conversions were armed.
func (s *SimADC) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *SimADC) Configure(chs ChannelSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Supported != 0 && chs&^s.Supported != 0 {
		return configErr("unsupported channels "+(chs&^s.Supported).String(), nil)
	}
	s.configured = chs
	return nil
}

func (s *SimADC) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	s.armed = true
	s.countdown = s.Latency
	s.gen++
	if s.Delay > 0 && !s.stuck {
		go s.fire(s.gen, s.Delay)
	}
	return nil
}

// fire plays the part of the end-of-conversion interrupt.
func (s *SimADC) fire(gen uint64, d time.Duration) {
	time.Sleep(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.armed {
		return
	}
	s.armed = false
	s.latch.Signal(s.completionLocked())
}

func (s *SimADC) Poll() (Completion, bool) {
	if c, ok := s.latch.Take(); ok {
		return c, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed || s.stuck || s.Delay > 0 {
		return Completion{}, false
	}
	if s.countdown > 0 {
		s.countdown--
		return Completion{}, false
	}
	s.armed = false
	return s.completionLocked(), true
}

// Cancel drops the conversion in flight.
func (s *SimADC) Cancel() {
	s.mu.Lock()
	s.armed = false
	s.gen++
	s.mu.Unlock()
	s.latch.Clear()
}

func (s *SimADC) completionLocked() Completion {
	chs := s.configured
	if s.completeOn != 0 {
		chs = s.completeOn
	}
	var code RawSample
	if s.source != nil {
		code = s.source()
	}
	return Completion{Channels: chs, Code: code}
}
