package core

import "errors"

// ADCChannelID identifies a logical ADC input. Its meaning (pin number or
// mux input) is defined by the target driver.
type ADCChannelID uint8

// MaxADCChannels bounds the channel ids a ChannelSet can hold.
const MaxADCChannels = 64

// RawSample is the unsigned code produced by one conversion.
type RawSample uint32

// ChannelSet is a set of ADC channel ids.
type ChannelSet uint64

// NewChannelSet builds a set from ids. Ids >= MaxADCChannels are dropped;
// use ParseChannels when the caller needs to know about them.
func NewChannelSet(ids ...ADCChannelID) ChannelSet {
	var s ChannelSet
	for _, id := range ids {
		if id < MaxADCChannels {
			s |= 1 << id
		}
	}
	return s
}

var errChannelRange = errors.New("channel id out of range")

// ParseChannels is NewChannelSet with range checking.
func ParseChannels(ids []uint8) (ChannelSet, error) {
	var s ChannelSet
	for _, id := range ids {
		if id >= MaxADCChannels {
			return 0, configErr("channel "+utoa(uint32(id)), errChannelRange)
		}
		s |= 1 << id
	}
	return s, nil
}

// Has reports whether id is in the set.
func (s ChannelSet) Has(id ADCChannelID) bool {
	return id < MaxADCChannels && s&(1<<id) != 0
}

// Len returns the number of channels in the set.
func (s ChannelSet) Len() int {
	n := 0
	for v := uint64(s); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Empty reports whether the set has no channels.
func (s ChannelSet) Empty() bool { return s == 0 }

// IDs returns the channel ids in ascending order.
func (s ChannelSet) IDs() []ADCChannelID {
	ids := make([]ADCChannelID, 0, s.Len())
	for id := ADCChannelID(0); id < MaxADCChannels; id++ {
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s ChannelSet) String() string {
	buf := []byte{'{'}
	for i, id := range s.IDs() {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, utoa(uint32(id))...)
	}
	return string(append(buf, '}'))
}

// Completion is what the converter's readiness flag carries once a
// conversion has finished.
type Completion struct {
	Channels ChannelSet
	Code     RawSample
}

// ADCDriver is the hardware converter as seen by the Controller.
// A driver instance belongs to exactly one Controller.
type ADCDriver interface {
	// Configure prepares the converter for the given channels.
	// Unsupported ids must be reported as an error.
	Configure(chs ChannelSet) error

	// Start arms a single conversion and returns immediately.
	Start() error

	// Poll reads the readiness flag without blocking. When it returns true
	// the completion has been consumed and will not be returned again.
	Poll() (Completion, bool)
}

// ADCCanceler is implemented by drivers that can abandon a conversion in flight.
type ADCCanceler interface {
	Cancel()
}
