package legs

import (
	"time"

	"github.com/hexctl/hexapod"
	"github.com/hexctl/hexapod/components/legs/gait"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type State string

const (
	sDefault  State = ""
	sHalt     State = "sHalt"
	sStandUp  State = "sStandUp"
	sSitDown  State = "sSitDown"
	sStanding State = "sStanding"
	sStepping State = "sStepping"

	// Height of the feet (relative to the body) when sitting. The body rests
	// on the ground well before the legs are fully tucked.
	DefaultSitHeight = -12.0

	// Number of samples, and time taken, to stand up or sit down, or to settle
	// the feet back to their bases after a walk.
	postureSteps    = 40
	postureDuration = 800 * time.Millisecond
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "legs",
})

// Servos are the servos of all six legs.
type Servos interface {
	gait.Actuator
	Center() error
	Shutdown() error
}

type Legs struct {
	hex    *hexapod.Hexapod
	rig    *gait.Rig
	servos Servos

	// The state that the legs are currently in.
	State        State
	stateCounter int

	engines map[gait.Kind]gait.Engine

	// The engine which last moved the feet. Its tracked feet are the posture
	// the legs are in.
	active gait.Kind

	SitHeight float64
}

// New returns the legs component. The first engine is used to stand up.
func New(hex *hexapod.Hexapod, rig *gait.Rig, s Servos, engines ...gait.Engine) *Legs {
	l := &Legs{
		hex:       hex,
		rig:       rig,
		servos:    s,
		State:     sDefault,
		engines:   map[gait.Kind]gait.Engine{},
		SitHeight: DefaultSitHeight,
	}

	for i, e := range engines {
		l.engines[e.Kind()] = e
		if i == 0 {
			l.active = e.Kind()
		}
	}

	return l
}

// Boot centers every servo, and returns an error if there are none.
func (l *Legs) Boot() error {
	if !l.servos.Available() {
		return gait.ErrNoActuator
	}
	if len(l.engines) == 0 {
		return errors.New("no gaits")
	}

	if err := l.servos.Center(); err != nil {
		return errors.Wrap(err, "centering servos")
	}

	log.Infof("booted with %d gaits, standing with %s", len(l.engines), l.active)
	return nil
}

func (l *Legs) SetState(s State) {
	log.Infof("state=%v", s)
	l.stateCounter = 0
	l.State = s
}

func (l *Legs) engine(k gait.Kind) (gait.Engine, error) {
	e, ok := l.engines[k]
	if !ok {
		return nil, errors.Errorf("no %s gait", k)
	}
	return e, nil
}

func (l *Legs) standHeight() float64 {
	return l.engines[l.active].Config().StanceHeight
}

// settle glides the feet from wherever the active engine left them back to
// their bases, and resets its tracked state.
func (l *Legs) settle() error {
	e := l.engines[l.active]
	if err := l.rig.Glide(e.Kind(), e.Feet(), l.rig.Posture(e.Config().StanceHeight), postureSteps, postureDuration); err != nil {
		return err
	}
	return e.Stand()
}

func (l *Legs) Tick(now time.Time) error {
	l.stateCounter += 1

	switch l.State {
	case sDefault:
		l.SetState(sStandUp)

	case sHalt:
		if l.stateCounter == 1 {
			l.hex.Halted = true
			if err := l.servos.Shutdown(); err != nil {
				return errors.Wrap(err, "releasing servos")
			}
		}

	// Lower the feet from the sitting height until the body is raised off
	// the ground.
	case sStandUp:
		if l.hex.Shutdown {
			l.SetState(sHalt)
			break
		}

		err := l.rig.Glide(l.active, l.rig.Posture(l.SitHeight), l.rig.Posture(l.standHeight()), postureSteps, postureDuration)
		if err != nil {
			return errors.Wrap(err, "standing up")
		}
		if err := l.engines[l.active].Stand(); err != nil {
			return err
		}
		l.SetState(sStanding)

	// Raise the feet until the body is sitting on the ground.
	case sSitDown:
		if err := l.settle(); err != nil {
			return errors.Wrap(err, "settling")
		}

		err := l.rig.Glide(l.active, l.rig.Posture(l.standHeight()), l.rig.Posture(l.SitHeight), postureSteps, postureDuration)
		if err != nil {
			return errors.Wrap(err, "sitting down")
		}
		l.SetState(sHalt)

	case sStanding:
		if l.hex.Shutdown {
			l.SetState(sSitDown)
		} else if l.hex.Move != nil {
			l.SetState(sStepping)
		}

	// Walk one cycle of the move per tick.
	case sStepping:
		m := l.hex.Move
		if m == nil || m.Cycles <= 0 || l.hex.Shutdown {
			l.hex.Move = nil
			l.SetState(sStanding)
			break
		}

		e, err := l.engine(m.Gait)
		if err != nil {
			l.hex.Move = nil
			l.SetState(sStanding)
			return err
		}

		// Never carry one gait's foot positions into another.
		if m.Gait != l.active {
			log.Infof("switching gait from %s to %s", l.active, m.Gait)
			if err := l.settle(); err != nil {
				return errors.Wrap(err, "switching gait")
			}
			l.active = m.Gait
			if err := e.Stand(); err != nil {
				return errors.Wrap(err, "switching gait")
			}
		}

		if err := e.RunCycle(m.Direction); err != nil {
			l.hex.Move = nil
			l.SetState(sStanding)
			return errors.Wrapf(err, "walking %v", m)
		}

		m.Cycles -= 1
		log.Infof("move %v: cycle done", m)

		if m.Cycles == 0 {
			l.hex.Move = nil
			if err := l.settle(); err != nil {
				return errors.Wrap(err, "settling")
			}
			l.SetState(sStanding)
		}

	default:
		return errors.Errorf("unknown state: %#v", l.State)
	}

	return nil
}
