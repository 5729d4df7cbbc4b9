package physics

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/pkg/math"
)

// BodyState is the saved motion of one body.
type BodyState struct {
	Position    math.Vec3
	Orientation math.Quat
	Linear      math.Vec3
	Angular     math.Vec3
}

// State is a snapshot of every owned body. Contacts and forces are not part
// of it.
type State struct {
	ID     uuid.UUID
	Time   time.Duration
	Bodies map[Handle]BodyState
}

// Save captures the transform and velocities of every body and character.
func (s *System) Save() State {
	st := State{
		ID:     uuid.New(),
		Time:   s.time,
		Bodies: make(map[Handle]BodyState, len(s.bodies)+len(s.characters)),
	}
	capture := func(b *RigidBody) {
		p, q := s.backend.Transform(b.handle)
		lin, ang := s.backend.Velocity(b.handle)
		st.Bodies[b.handle] = BodyState{Position: p, Orientation: q, Linear: lin, Angular: ang}
	}
	for _, b := range s.bodies {
		capture(b)
	}
	for _, c := range s.characters {
		capture(c.body)
	}
	return st
}

// Load restores a snapshot taken by Save after clearing accumulated forces.
// Bodies removed since the snapshot are skipped and bodies added since are
// left alone.
func (s *System) Load(st State) {
	s.backend.ClearForces()

	skipped := 0
	for h, bs := range st.Bodies {
		if s.owners[h] == nil || !s.backend.Valid(h) {
			skipped++
			continue
		}
		s.backend.SetTransform(h, bs.Position, bs.Orientation)
		s.backend.SetVelocity(h, bs.Linear, bs.Angular)
	}
	s.time = st.Time

	s.log.Debug("state loaded",
		zap.Stringer("id", st.ID),
		zap.Int("bodies", len(st.Bodies)-skipped),
		zap.Int("skipped", skipped),
	)
}
