package core

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func newTestController(t *testing.T, sim *SimADC, ids ...ADCChannelID) *Controller {
	t.Helper()
	ctrl, err := Initialize(sim, NewChannelSet(ids...))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return ctrl
}

func TestInitializeConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		drv  ADCDriver
		chs  ChannelSet
	}{
		{"nil driver", nil, NewChannelSet(16)},
		{"empty channel set", NewSimADC(0), 0},
		{"unsupported channel", &SimADC{Supported: NewChannelSet(0, 1, 2, 3)}, NewChannelSet(16)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, err := Initialize(tc.drv, tc.chs)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("Expected ErrConfig, got %v", err)
			}
			if ctrl != nil {
				t.Errorf("Expected nil controller on error")
			}
		})
	}
}

func TestInitializeStateIdle(t *testing.T) {
	ctrl := newTestController(t, NewSimADC(0), 16)
	if ctrl.State() != StateIdle {
		t.Errorf("Expected state idle, got %s", ctrl.State())
	}
	if ctrl.Channels() != NewChannelSet(16) {
		t.Errorf("Expected channels {16}, got %s", ctrl.Channels())
	}
}

func TestTriggerWhilePending(t *testing.T) {
	sim := NewSimADC(100)
	sim.Latency = 3
	ctrl := newTestController(t, sim, 16)

	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("first Trigger failed: %v", err)
	}
	if ctrl.State() != StatePending {
		t.Fatalf("Expected state pending, got %s", ctrl.State())
	}
	if err := ctrl.Trigger(); !errors.Is(err, ErrState) {
		t.Errorf("Expected ErrState for second trigger, got %v", err)
	}
	if sim.Starts() != 1 {
		t.Errorf("Expected one conversion armed, got %d", sim.Starts())
	}
}

func TestPollSampleNotReadyThenReady(t *testing.T) {
	sim := NewSimADC(0x1000)
	sim.Latency = 2
	ctrl := newTestController(t, sim, 16)
	chs := NewChannelSet(16)

	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		_, ok, err := ctrl.PollSample(chs)
		if err != nil || ok {
			t.Fatalf("poll %d: expected not ready, got ok=%v err=%v", i, ok, err)
		}
		if ctrl.State() != StatePending {
			t.Fatalf("poll %d: expected pending, got %s", i, ctrl.State())
		}
	}

	code, ok, err := ctrl.PollSample(chs)
	if err != nil || !ok {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	if code != 0x1000 {
		t.Errorf("Expected code 0x1000, got 0x%X", code)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("Expected idle after retrieval, got %s", ctrl.State())
	}
}

func TestPollSampleConsumeOnce(t *testing.T) {
	ctrl := newTestController(t, NewSimADC(7), 16)
	chs := NewChannelSet(16)

	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if _, ok, err := ctrl.PollSample(chs); !ok || err != nil {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := ctrl.PollSample(chs); ok || !errors.Is(err, ErrState) {
		t.Errorf("Expected ErrState on second poll, got ok=%v err=%v", ok, err)
	}
}

func TestPollSampleWhileIdle(t *testing.T) {
	ctrl := newTestController(t, NewSimADC(7), 16)
	if _, _, err := ctrl.PollSample(NewChannelSet(16)); !errors.Is(err, ErrState) {
		t.Errorf("Expected ErrState, got %v", err)
	}
}

func TestPollSampleWrongChannels(t *testing.T) {
	ctrl := newTestController(t, NewSimADC(7), 16)
	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if _, _, err := ctrl.PollSample(NewChannelSet(3)); !errors.Is(err, ErrState) {
		t.Errorf("Expected ErrState for unrequested channels, got %v", err)
	}
	if ctrl.State() != StatePending {
		t.Errorf("Expected conversion still pending, got %s", ctrl.State())
	}
}

func TestCompletionForOtherChannels(t *testing.T) {
	sim := NewSimADC(7)
	sim.SimulateChannels(NewChannelSet(4))
	ctrl := newTestController(t, sim, 16)

	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if _, ok, err := ctrl.PollSample(NewChannelSet(16)); ok || !errors.Is(err, ErrState) {
		t.Fatalf("Expected ErrState for foreign completion, got ok=%v err=%v", ok, err)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("Expected idle after discarded conversion, got %s", ctrl.State())
	}
	if err := ctrl.Trigger(); err != nil {
		t.Errorf("Expected re-trigger to succeed, got %v", err)
	}
}

func TestTriggerStartFailure(t *testing.T) {
	sim := NewSimADC(7)
	boom := errors.New("boom")
	sim.SimulateStartError(boom)
	ctrl := newTestController(t, sim, 16)

	if err := ctrl.Trigger(); !errors.Is(err, boom) {
		t.Fatalf("Expected driver error, got %v", err)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("Expected idle after failed start, got %s", ctrl.State())
	}
}

func TestAbort(t *testing.T) {
	sim := NewSimADC(7)
	sim.SimulateStuck(true)
	ctrl := newTestController(t, sim, 16)

	if err := ctrl.Abort(); !errors.Is(err, ErrState) {
		t.Errorf("Expected ErrState aborting while idle, got %v", err)
	}
	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if err := ctrl.Abort(); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("Expected idle after abort, got %s", ctrl.State())
	}
}

func TestAsyncCompletion(t *testing.T) {
	sim := NewSimADC(0x2A)
	sim.Delay = time.Millisecond
	ctrl := newTestController(t, sim, 16)
	chs := NewChannelSet(16)

	if err := ctrl.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for i := 0; time.Now().Before(deadline); i++ {
		code, ok, err := ctrl.PollSample(chs)
		if err != nil {
			t.Fatalf("PollSample failed: %v", err)
		}
		if ok {
			if code != 0x2A {
				t.Errorf("Expected 0x2A, got 0x%X", code)
			}
			t.Logf("completion after %d polls", i+1)
			return
		}
		runtime.Gosched()
	}
	t.Fatal("completion never observed")
}

func TestConcurrentTriggerSingleInFlight(t *testing.T) {
	sim := NewSimADC(1)
	sim.SimulateStuck(true)
	ctrl := newTestController(t, sim, 16)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ctrl.Trigger() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("Expected exactly one trigger to succeed, got %d", succeeded)
	}
}

func TestChannelSet(t *testing.T) {
	s := NewChannelSet(16, 3, 16, 200)
	if s.Len() != 2 {
		t.Errorf("Expected 2 channels, got %d", s.Len())
	}
	if !s.Has(3) || !s.Has(16) || s.Has(4) {
		t.Errorf("Unexpected membership in %s", s)
	}
	if got := s.String(); got != "{3,16}" {
		t.Errorf("Expected {3,16}, got %s", got)
	}
	if _, err := ParseChannels([]uint8{1, 64}); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected ErrConfig for channel 64, got %v", err)
	}
}

func TestAcquisitionStateString(t *testing.T) {
	states := map[AcquisitionState]string{
		StateUninitialized: "uninitialized",
		StateIdle:          "idle",
		StatePending:       "pending",
		StateReady:         "ready",
	}
	for st, want := range states {
		if st.String() != want {
			t.Errorf("Expected %q, got %q", want, st.String())
		}
	}
	if got := AcquisitionState(9).String(); got != "unknown" {
		t.Errorf("Expected unknown, got %q", got)
	}
}
