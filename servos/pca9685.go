package servos

import (
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the address of a PCA9685 with no address jumpers
	// bridged. The second board has A0 bridged.
	DefaultAddress uint16 = 0x40
	SecondAddress  uint16 = 0x41

	regMode1    = 0x00
	regPrescale = 0xFE
	regLED0OnL  = 0x06

	mode1AutoIncrement = 0x20
	mode1Sleep         = 0x10

	numChannels = 16
	maxCount    = 4095

	oscillator = 25 * physic.MegaHertz
	wakeDelay  = 5 * time.Millisecond
)

// Sleeper waits while the oscillator restarts. It is satisfied by
// clock.Clock.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Opts configures the PWM frequency, and the pulse counts (out of 4096) at
// each end of the servos' travel.
type Opts struct {
	Frequency physic.Frequency
	MinPulse  uint16
	MaxPulse  uint16

	// Defaults to the wall clock.
	Clock Sleeper
}

var DefaultOpts = Opts{
	Frequency: 50 * physic.Hertz,
	MinPulse:  110,
	MaxPulse:  500,
}

// PCA9685 is a 16 channel, 12 bit PWM board driving hobby servos.
type PCA9685 struct {
	c    i2c.Dev
	opts Opts
}

// NewPCA9685 initializes the board at the given address, and returns it.
func NewPCA9685(bus i2c.Bus, addr uint16, opts *Opts) (*PCA9685, error) {
	if opts == nil {
		opts = &DefaultOpts
	}

	d := &PCA9685{
		c:    i2c.Dev{Bus: bus, Addr: addr},
		opts: *opts,
	}
	if d.opts.Clock == nil {
		d.opts.Clock = clock.New()
	}

	if err := d.init(); err != nil {
		return nil, errors.Wrapf(err, "pca9685 at 0x%02x", addr)
	}

	return d, nil
}

func (d *PCA9685) String() string {
	return fmt.Sprintf("PCA9685{%s}", &d.c)
}

// init enables register auto-increment, then sets the PWM frequency. The
// prescaler can only be written while the oscillator is asleep.
func (d *PCA9685) init() error {
	steps := []struct {
		reg byte
		val byte
		op  string
	}{
		{regMode1, mode1AutoIncrement, "enabling auto-increment"},
		{regMode1, mode1Sleep, "sleeping"},
		{regPrescale, prescale(d.opts.Frequency), "setting prescale"},
		{regMode1, mode1AutoIncrement, "waking"},
	}

	for _, s := range steps {
		if err := d.c.Tx([]byte{s.reg, s.val}, nil); err != nil {
			return errors.Wrap(err, s.op)
		}
	}

	// The oscillator takes up to 500us to restart.
	d.opts.Clock.Sleep(wakeDelay)
	return nil
}

// prescale returns the prescaler value for the given PWM frequency.
func prescale(f physic.Frequency) byte {
	p := math.Round(float64(oscillator)/(4096*float64(f))) - 1
	return byte(math.Max(3, math.Min(255, p)))
}

// SetPulse sets the channel to go high at the start of each period and low
// after count ticks (of 4096).
func (d *PCA9685) SetPulse(channel int, count uint16) error {
	if channel < 0 || channel >= numChannels {
		return errors.Wrapf(ErrInvalidChannel, "%d", channel)
	}
	if count > maxCount {
		count = maxCount
	}

	reg := byte(regLED0OnL + 4*channel)
	w := []byte{reg, 0, 0, byte(count & 0xFF), byte(count >> 8)}
	if err := d.c.Tx(w, nil); err != nil {
		return errors.Wrapf(err, "writing channel %d", channel)
	}

	return nil
}

// Pulse returns the pulse count which positions a servo at the given angle.
func (d *PCA9685) Pulse(degrees float64) uint16 {
	degrees = math.Max(MinAngle, math.Min(MaxAngle, degrees))
	span := float64(d.opts.MaxPulse - d.opts.MinPulse)
	return d.opts.MinPulse + uint16(degrees/MaxAngle*span)
}

// SetAngle positions the servo on the channel. Angles outside 0..180 are
// clamped.
func (d *PCA9685) SetAngle(channel int, degrees float64) error {
	return d.SetPulse(channel, d.Pulse(degrees))
}

// Off stops the pulses on the channel.
func (d *PCA9685) Off(channel int) error {
	return d.SetPulse(channel, 0)
}
