package servo

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{
	"pkg": "fake/servo",
})

// Write is one angle sent to a channel.
type Write struct {
	Channel int
	Angle   float64
}

// FakeServo stands in for a PWM board. It records every write, and can be
// told to fail writes to particular channels.
type FakeServo struct {
	Name string

	mu sync.Mutex

	// Errors returned by writes to each channel.
	fail     map[int]error
	writes   []Write
	angles   map[int]float64
	released map[int]bool
}

func New(name string) *FakeServo {
	return &FakeServo{
		Name:     name,
		fail:     map[int]error{},
		angles:   map[int]float64{},
		released: map[int]bool{},
	}
}

func (s *FakeServo) SetAngle(channel int, degrees float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.fail[channel]; ok {
		return err
	}

	logger.Debugf("%s: channel %d to %0.1f", s.Name, channel, degrees)
	s.writes = append(s.writes, Write{Channel: channel, Angle: degrees})
	s.angles[channel] = degrees
	delete(s.released, channel)
	return nil
}

func (s *FakeServo) Off(channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.fail[channel]; ok {
		return err
	}

	logger.Debugf("%s: channel %d off", s.Name, channel)
	s.released[channel] = true
	return nil
}

// FailWith makes every later write to the channel return err. A nil err
// makes the channel work again.
func (s *FakeServo) FailWith(channel int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.fail, channel)
		return
	}
	s.fail[channel] = err
}

// Writes returns a copy of every write so far.
func (s *FakeServo) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// Angle returns the last angle written to the channel.
func (s *FakeServo) Angle(channel int) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.angles[channel]
	return a, ok
}

// Channels returns the channels which have been written to, in order.
func (s *FakeServo) Channels() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.angles))
	for ch := range s.angles {
		out = append(out, ch)
	}
	sort.Ints(out)
	return out
}

// Released returns true if the channel was turned off and not written since.
func (s *FakeServo) Released(channel int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.released[channel]
}
