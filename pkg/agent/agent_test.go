package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-go-golems/spelunker/pkg/directory"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleFunc struct {
	name  string
	setup func(ctx context.Context, a *Agent) error
}

func (r roleFunc) Name() string {
	return r.name
}

func (r roleFunc) Setup(ctx context.Context, a *Agent) error {
	return r.setup(ctx, a)
}

func newTestPlatform(t *testing.T) (*Platform, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	bus := messaging.NewBus()
	t.Cleanup(func() {
		_ = bus.Close()
	})
	return NewPlatform(ctx, bus, directory.NewMemory()), cancel
}

func TestPingPong(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	var pongs int32
	_, err := p.Spawn("ponger", roleFunc{name: "ponger", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(Listener(func(ctx context.Context, a *Agent) (bool, error) {
			if _, ok := a.Receive(messaging.MatchPerformative(messaging.Cancel)); ok {
				a.Stop()
				return true, nil
			}
			m, ok := a.Receive(messaging.MatchPerformative(messaging.Request))
			if !ok {
				return false, nil
			}
			return true, a.Send(ctx, m.Reply(messaging.Inform, a.ID(), "pong"))
		}))
		return nil
	}})
	require.NoError(t, err)

	_, err = p.Spawn("pinger", roleFunc{name: "pinger", setup: func(ctx context.Context, a *Agent) error {
		var pending string
		a.AddBehaviour(BehaviourFunc(func(ctx context.Context, a *Agent) (Status, error) {
			if pending == "" {
				req := messaging.NewMessage(messaging.Request, a.ID(), "ping", "ponger")
				pending = req.ID
				return Running, a.Send(ctx, req)
			}
			if _, ok := a.Receive(messaging.MatchReplyTo(pending)); !ok {
				return Blocked, nil
			}
			pending = ""
			if atomic.AddInt32(&pongs, 1) == 3 {
				a.Stop()
				return Done, a.Send(ctx, messaging.NewMessage(messaging.Cancel, a.ID(), "", "ponger"))
			}
			return Running, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	require.NoError(t, p.Wait())
	assert.Equal(t, int32(3), atomic.LoadInt32(&pongs))
	assert.Empty(t, p.Running())
}

func TestTickerStopsWhenFinished(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	var ticks int32
	_, err := p.Spawn("", roleFunc{name: "ticker", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(NewTicker(5*time.Millisecond, func(ctx context.Context, a *Agent) (bool, error) {
			if atomic.AddInt32(&ticks, 1) == 3 {
				a.Stop()
				return true, nil
			}
			return false, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	require.NoError(t, p.Wait())
	assert.Equal(t, int32(3), atomic.LoadInt32(&ticks))
}

func TestRecoverableErrorsKeepTheBehaviour(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	var attempts int32
	_, err := p.Spawn("", roleFunc{name: "retry", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(NewTicker(time.Millisecond, func(ctx context.Context, a *Agent) (bool, error) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return false, errors.New("not yet")
			}
			a.Stop()
			return true, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	require.NoError(t, p.Wait())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestFatalErrorStopsThePlatform(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	boom := errors.New("boom")
	_, err := p.Spawn("idle", roleFunc{name: "idle", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(Listener(func(ctx context.Context, a *Agent) (bool, error) {
			return false, nil
		}))
		return nil
	}})
	require.NoError(t, err)
	_, err = p.Spawn("failing", roleFunc{name: "failing", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(OneShot(func(ctx context.Context, a *Agent) error {
			return Fatal(boom)
		}))
		return nil
	}})
	require.NoError(t, err)

	err = p.Wait()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, boom)
}

func TestSpawnRegistersAndDeregisters(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	started := make(chan struct{})
	_, err := p.Spawn("env-1", roleFunc{name: "environment", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(OneShot(func(ctx context.Context, a *Agent) error {
			close(started)
			return nil
		}))
		return nil
	}})
	require.NoError(t, err)

	ids, err := p.Directory().Search(context.Background(), "environment")
	require.NoError(t, err)
	assert.Equal(t, []string{"env-1"}, ids)

	_, err = p.Spawn("env-1", roleFunc{name: "environment", setup: func(ctx context.Context, a *Agent) error {
		return nil
	}})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	<-started
	assert.True(t, p.Kill("env-1"))
	require.NoError(t, p.Wait())

	ids, err = p.Directory().Search(context.Background(), "environment")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSetupErrorIsReturnedFromSpawn(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	_, err := p.Spawn("broken", roleFunc{name: "broken", setup: func(ctx context.Context, a *Agent) error {
		return errors.New("no world")
	}})
	require.Error(t, err)

	ids, err := p.Directory().Search(context.Background(), "broken")
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, p.Wait())
}

func TestFatalMarking(t *testing.T) {
	assert.Nil(t, Fatal(nil))
	base := errors.New("x")
	assert.False(t, IsFatal(base))
	wrapped := errors.Wrap(Fatal(base), "context")
	assert.True(t, IsFatal(wrapped))
	assert.ErrorIs(t, wrapped, base)
}

func TestBehaviourAddedByATickRunsWithoutNewMessages(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	received := make(chan string, 1)
	_, err := p.Spawn("sink", roleFunc{name: "sink", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(Listener(func(ctx context.Context, a *Agent) (bool, error) {
			m, ok := a.Receive(messaging.MatchPerformative(messaging.Inform))
			if !ok {
				return false, nil
			}
			received <- m.Content
			a.Stop()
			return true, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	_, err = p.Spawn("binder", roleFunc{name: "binder", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(NewTicker(time.Hour, func(ctx context.Context, a *Agent) (bool, error) {
			a.AddBehaviour(OneShot(func(ctx context.Context, a *Agent) error {
				a.Stop()
				return a.Send(ctx, messaging.NewMessage(messaging.Inform, a.ID(), "bound", "sink"))
			}))
			return true, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	select {
	case content := <-received:
		assert.Equal(t, "bound", content)
	case <-time.After(time.Second):
		t.Fatal("behaviour added during a tick never ran")
	}
	require.NoError(t, p.Wait())
}

func TestBehaviourAddedLaterHandlesQueuedMessage(t *testing.T) {
	p, cancel := newTestPlatform(t)
	defer cancel()

	_, err := p.Spawn("late", roleFunc{name: "late", setup: func(ctx context.Context, a *Agent) error {
		a.AddBehaviour(NewTicker(time.Millisecond, func(ctx context.Context, a *Agent) (bool, error) {
			if len(a.Pending()) == 0 {
				return false, nil
			}
			a.AddBehaviour(Listener(func(ctx context.Context, a *Agent) (bool, error) {
				m, ok := a.Receive(messaging.MatchPerformative(messaging.Request))
				if !ok {
					return false, nil
				}
				a.Stop()
				return true, a.Send(ctx, m.Reply(messaging.Inform, a.ID(), "late answer"))
			}))
			return true, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	answers := make(chan string, 1)
	_, err = p.Spawn("asker", roleFunc{name: "asker", setup: func(ctx context.Context, a *Agent) error {
		var pending string
		a.AddBehaviour(BehaviourFunc(func(ctx context.Context, a *Agent) (Status, error) {
			if pending == "" {
				req := messaging.NewMessage(messaging.Request, a.ID(), "question", "late")
				pending = req.ID
				return Blocked, a.Send(ctx, req)
			}
			m, ok := a.Receive(messaging.MatchReplyTo(pending))
			if !ok {
				return Blocked, nil
			}
			answers <- m.Content
			a.Stop()
			return Done, nil
		}))
		return nil
	}})
	require.NoError(t, err)

	select {
	case content := <-answers:
		assert.Equal(t, "late answer", content)
	case <-time.After(time.Second):
		t.Fatal("queued request was never answered")
	}
	require.NoError(t, p.Wait())
}
