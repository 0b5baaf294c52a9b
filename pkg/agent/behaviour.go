package agent

import (
	"context"
	"time"
)

// Status is what a behaviour reports after one step.
type Status int

const (
	// Running asks to be stepped again on the next pass of the loop.
	Running Status = iota
	// Blocked suspends the behaviour until a new message arrives or its
	// WakeAt deadline passes.
	Blocked
	// Done removes the behaviour from the agent.
	Done
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Behaviour is one cooperative task of an agent. All behaviours of an agent
// are stepped from the same goroutine, one after the other.
type Behaviour interface {
	Step(ctx context.Context, a *Agent) (Status, error)
}

// Waker is implemented by behaviours that need to run again at a given time
// even if no message arrives.
type Waker interface {
	WakeAt() time.Time
}

type BehaviourFunc func(ctx context.Context, a *Agent) (Status, error)

func (f BehaviourFunc) Step(ctx context.Context, a *Agent) (Status, error) {
	return f(ctx, a)
}

// OneShot runs f once.
func OneShot(f func(ctx context.Context, a *Agent) error) Behaviour {
	return BehaviourFunc(func(ctx context.Context, a *Agent) (Status, error) {
		return Done, f(ctx, a)
	})
}

// Listener consumes every message matching the handler's interest. handle
// returns false when it found nothing to do, which blocks the behaviour until
// the next message.
func Listener(handle func(ctx context.Context, a *Agent) (bool, error)) Behaviour {
	return BehaviourFunc(func(ctx context.Context, a *Agent) (Status, error) {
		handled, err := handle(ctx, a)
		if err != nil || !handled {
			return Blocked, err
		}
		return Running, nil
	})
}

// Ticker calls onTick every period, starting right away, until onTick
// reports it is finished.
type Ticker struct {
	period time.Duration
	next   time.Time
	onTick func(ctx context.Context, a *Agent) (bool, error)
}

var _ Waker = &Ticker{}

func NewTicker(period time.Duration, onTick func(ctx context.Context, a *Agent) (finished bool, err error)) *Ticker {
	return &Ticker{
		period: period,
		onTick: onTick,
	}
}

func (t *Ticker) Step(ctx context.Context, a *Agent) (Status, error) {
	now := time.Now()
	if !t.next.IsZero() && now.Before(t.next) {
		return Blocked, nil
	}
	t.next = now.Add(t.period)

	finished, err := t.onTick(ctx, a)
	if finished {
		return Done, err
	}
	return Blocked, err
}

func (t *Ticker) WakeAt() time.Time {
	return t.next
}
