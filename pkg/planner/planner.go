package planner

import (
	"context"
	"sync"

	"github.com/go-go-golems/spelunker/pkg/world"
)

// Planner decides the next action from the latest percept. It returns false
// when it has nothing left to do.
type Planner interface {
	Decide(ctx context.Context, percept world.Percept) (world.Action, bool)
}

// Scripted replays a fixed list of actions and then runs out.
type Scripted struct {
	mu      sync.Mutex
	actions []world.Action
	next    int
	seen    []world.Percept
}

var _ Planner = (*Scripted)(nil)

func NewScripted(actions ...world.Action) *Scripted {
	return &Scripted{actions: actions}
}

func (s *Scripted) Decide(_ context.Context, percept world.Percept) (world.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, percept)
	if s.next >= len(s.actions) {
		return 0, false
	}
	a := s.actions[s.next]
	s.next++
	return a, true
}

// Percepts returns every percept Decide was called with.
func (s *Scripted) Percepts() []world.Percept {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]world.Percept, len(s.seen))
	copy(ret, s.seen)
	return ret
}
