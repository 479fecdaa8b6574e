package kinematics

import (
	"fmt"
	"strings"

	"github.com/hexctl/hexapod/math3d"
	"github.com/sirupsen/logrus"
)

// Report is the intermediate reach computation for one IK request.
type Report struct {
	Leg    LegID
	Target math3d.Vector3

	// Target relative to the hip axis.
	Local math3d.Vector3

	R float64
	H float64
	D float64

	MinReach float64
	MaxReach float64

	Angles JointAngles
	Err    error
}

func (r Report) Reachable() bool {
	return r.Err == nil
}

func (r Report) String() string {
	s := fmt.Sprintf("%s target=%v local=(%0.2f, %0.2f) r=%0.2f h=%0.2f D=%0.2f reach=[%0.1f, %0.1f]",
		r.Leg, r.Target, r.Local.X, r.Local.Y, r.R, r.H, r.D, r.MinReach, r.MaxReach)

	if r.Err != nil {
		return s + " error: " + r.Err.Error()
	}

	hip, knee, ankle := r.Angles.Degrees()
	return s + fmt.Sprintf(" hip=%0.1f knee=%0.1f ankle=%0.1f", hip, knee, ankle)
}

// Diagnose solves like Solve, but also reports the intermediate values, and
// logs them.
func (s *Solver) Diagnose(id LegID, p math3d.Vector3) Report {
	rep := Report{
		Leg:      id,
		Target:   p,
		MinReach: s.Geometry.MinReach(),
		MaxReach: s.Geometry.MaxReach(),
	}

	leg, err := s.Legs.Leg(id)
	if err != nil {
		rep.Err = err
		return rep
	}

	pl := s.reduce(leg, p)
	rep.Local = pl.local
	rep.R = pl.r
	rep.H = pl.h
	rep.D = pl.d
	rep.Angles, rep.Err = s.Solve(id, p)

	e := log.WithFields(logrus.Fields{
		"leg": id,
		"r":   pl.r,
		"h":   pl.h,
		"d":   pl.d,
	})
	if rep.Err != nil {
		e.Warnf("unreachable: %v", p)
	} else {
		e.Debugf("reachable: %v", p)
	}

	return rep
}

// CheckBasePositions diagnoses every leg at its base position, and with the
// foot moved one step forwards and backwards. It returns the reports which
// failed.
func (s *Solver) CheckBasePositions(step float64) []Report {
	var failed []Report

	for _, id := range AllLegs {
		base := s.Base(id)
		for _, dy := range []float64{0, -step, step} {
			p := base.Add(math3d.Vector3{Y: dy})
			if rep := s.Diagnose(id, p); !rep.Reachable() {
				failed = append(failed, rep)
			}
		}
	}

	if len(failed) == 0 {
		log.Infof("all base positions reachable (step=%0.1f)", step)
	}

	return failed
}

// Summary renders reports one per line.
func Summary(reps []Report) string {
	lines := make([]string, len(reps))
	for i, r := range reps {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
