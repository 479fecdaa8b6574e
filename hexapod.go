package hexapod

import (
	"fmt"
	"time"

	"github.com/hexctl/hexapod/components/legs/gait"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Move is a request to walk a number of gait cycles in one direction.
type Move struct {
	Gait      gait.Kind
	Direction gait.Direction

	// Cycles remaining. Decremented by the legs as each one completes.
	Cycles int
}

func (m Move) String() string {
	return fmt.Sprintf("%s %s x%d", m.Gait, m.Direction, m.Cycles)
}

type Hexapod struct {
	Components []Component

	// The move being walked, or nil while standing still. Components set this
	// to make the hex walk; the legs clear it when the move is done.
	Move *Move

	// Components can set this to true to indicate that the hex should shut down.
	Shutdown bool

	// Set once the legs have sat down and released the servos.
	Halted bool
}

type Component interface {
	Boot() error
	Tick(time.Time) error
}

func NewHexapod() *Hexapod {
	return &Hexapod{
		Components: []Component{},
	}
}

// Add registers a component to receive ticks every frame.
func (h *Hexapod) Add(c Component) {
	h.Components = append(h.Components, c)
}

// Boot calls Boot on each component, and stops at the first error.
func (h *Hexapod) Boot() error {
	for _, c := range h.Components {
		err := c.Boot()
		if err != nil {
			return errors.Wrapf(err, "booting %T", c)
		}
	}

	return nil
}

// Tick calls Tick on each component. Every component is ticked even if an
// earlier one fails; the errors are combined.
func (h *Hexapod) Tick(now time.Time) error {
	var errs error
	for _, c := range h.Components {
		if err := c.Tick(now); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "ticking %T", c))
		}
	}

	return errs
}
