// ADC acquisition controller
// Owns one converter and walks it through Idle -> Pending -> Ready -> Idle.
package core

import (
	"errors"
	"sync"
)

// AcquisitionState is the controller's view of the converter.
type AcquisitionState uint8

const (
	StateUninitialized AcquisitionState = iota
	StateIdle                           // ready to trigger
	StatePending                        // conversion armed, no result yet
	StateReady                          // result latched, not yet handed out
)

func (s AcquisitionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Controller arms conversions and hands out their results. At most one
// conversion is in flight; each result is delivered at most once.
type Controller struct {
	mu       sync.Mutex
	drv      ADCDriver
	channels ChannelSet
	state    AcquisitionState
}

// Initialize configures drv for chs and returns an idle controller.
// The platform must have the ADC clock running before this is called.
func Initialize(drv ADCDriver, chs ChannelSet) (*Controller, error) {
	if drv == nil {
		return nil, configErr("no ADC driver", nil)
	}
	if chs.Empty() {
		return nil, configErr("empty channel set", nil)
	}
	if err := drv.Configure(chs); err != nil {
		if errors.Is(err, ErrConfig) {
			return nil, err
		}
		return nil, configErr("configure "+chs.String(), err)
	}
	c := &Controller{drv: drv, channels: chs, state: StateIdle}
	RecordEvent(EvtInit, uint32(chs.Len()), 0)
	return c, nil
}

// State returns the current acquisition state.
func (c *Controller) State() AcquisitionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Channels returns the configured channel set.
func (c *Controller) Channels() ChannelSet { return c.channels }

// Trigger arms a single conversion. Only valid while idle.
func (c *Controller) Trigger() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		RecordEvent(EvtStateError, uint32(c.state), 0)
		return stateErr("trigger", c.state)
	}
	if err := c.drv.Start(); err != nil {
		return err
	}
	c.state = StatePending
	RecordEvent(EvtTrigger, 0, 0)
	return nil
}

// PollSample checks once whether the armed conversion for chs finished.
// It never blocks: ok is false while the hardware is still converting.
// A returned sample is consumed and the controller is idle again.
func (c *Controller) PollSample(chs ChannelSet) (code RawSample, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePending {
		RecordEvent(EvtStateError, uint32(c.state), 1)
		return 0, false, stateErr("poll", c.state)
	}
	if chs != c.channels {
		return 0, false, stateErr("poll "+chs.String()+" configured "+c.channels.String(), c.state)
	}

	done, ready := c.drv.Poll()
	if !ready {
		RecordEvent(EvtNotReady, 0, 0)
		return 0, false, nil
	}
	if done.Channels != chs {
		// The hardware finished a conversion nobody asked for; the armed
		// one is lost, so return to idle and let the caller re-trigger.
		c.state = StateIdle
		RecordEvent(EvtStateError, uint32(done.Channels.Len()), 2)
		return 0, false, stateErr("completion for "+done.Channels.String(), StatePending)
	}

	c.state = StateReady
	code = done.Code
	c.state = StateIdle
	RecordEvent(EvtSample, uint32(code), 0)
	return code, true, nil
}

// Abort abandons a pending conversion and returns the controller to idle.
// Any completion that was already latched is discarded.
func (c *Controller) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePending {
		return stateErr("abort", c.state)
	}
	if cn, ok := c.drv.(ADCCanceler); ok {
		cn.Cancel()
	}
	c.drv.Poll()
	c.state = StateIdle
	RecordEvent(EvtAbort, 0, 0)
	return nil
}
