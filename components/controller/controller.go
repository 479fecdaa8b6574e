package controller

import (
	"time"

	"github.com/hexctl/hexapod"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "controller",
})

// Controller plays a script of moves. Each move is handed to the legs once
// they have finished the previous one.
type Controller struct {
	hex   *hexapod.Hexapod
	moves []hexapod.Move
	next  int

	// Shut the hex down once the script is done.
	ExitWhenDone bool
}

func New(hex *hexapod.Hexapod, moves []hexapod.Move, exitWhenDone bool) *Controller {
	return &Controller{
		hex:          hex,
		moves:        moves,
		ExitWhenDone: exitWhenDone,
	}
}

func (c *Controller) Boot() error {
	log.Infof("loaded %d moves", len(c.moves))
	return nil
}

// Done returns true once every move has been handed over and finished.
func (c *Controller) Done() bool {
	return c.next >= len(c.moves) && c.hex.Move == nil
}

func (c *Controller) Tick(now time.Time) error {
	if c.hex.Shutdown || c.hex.Move != nil {
		return nil
	}

	if c.next < len(c.moves) {
		m := c.moves[c.next]
		c.next++

		log.Infof("move %d/%d: %v", c.next, len(c.moves), m)
		c.hex.Move = &m
		return nil
	}

	if c.ExitWhenDone {
		log.Infof("script done, shutting down")
		c.hex.Shutdown = true
	}

	return nil
}
