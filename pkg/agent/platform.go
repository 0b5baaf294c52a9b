package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-go-golems/spelunker/pkg/directory"
	"github.com/lithammer/shortuuid/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrDuplicateIdentity = errors.New("identity already spawned")

// Platform hosts agents sharing a transport and a directory. Each agent runs
// in its own goroutine of an errgroup, so the first fatal error cancels the
// others and is returned by Wait.
type Platform struct {
	transport Transport
	directory directory.Directory
	logger    zerolog.Logger

	ctx   context.Context
	group *errgroup.Group

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

type PlatformOption func(*Platform)

func WithPlatformLogger(logger zerolog.Logger) PlatformOption {
	return func(p *Platform) {
		p.logger = logger
	}
}

func NewPlatform(ctx context.Context, transport Transport, dir directory.Directory, options ...PlatformOption) *Platform {
	group, groupCtx := errgroup.WithContext(ctx)
	p := &Platform{
		transport: transport,
		directory: dir,
		logger:    log.Logger,
		ctx:       groupCtx,
		group:     group,
		cancels:   map[string]context.CancelFunc{},
	}
	for _, o := range options {
		o(p)
	}
	return p
}

func (p *Platform) Directory() directory.Directory {
	return p.directory
}

// NewIdentity returns a fresh identity for an agent playing role.
func NewIdentity(role string) string {
	return fmt.Sprintf("%s-%s", role, shortuuid.New()[:8])
}

// Spawn subscribes the agent's inbox, registers it under its role name, runs
// the role's Setup and starts the behaviour loop.
func (p *Platform) Spawn(identity string, role Role) (*Agent, error) {
	if identity == "" {
		identity = NewIdentity(role.Name())
	}

	p.mu.Lock()
	if _, ok := p.cancels[identity]; ok {
		p.mu.Unlock()
		return nil, errors.Wrap(ErrDuplicateIdentity, identity)
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancels[identity] = cancel
	p.mu.Unlock()

	fail := func(err error) (*Agent, error) {
		cancel()
		p.forget(identity)
		return nil, err
	}

	inbox, err := p.transport.Subscribe(ctx, identity)
	if err != nil {
		return fail(err)
	}
	a := newAgent(identity, role.Name(), p.logger, p.transport, p.directory, inbox)

	if err := p.directory.Register(ctx, identity, role.Name()); err != nil {
		return fail(errors.Wrapf(err, "could not register %s as %s", identity, role.Name()))
	}
	if err := role.Setup(ctx, a); err != nil {
		_ = p.directory.Deregister(context.Background(), identity)
		return fail(errors.Wrapf(err, "could not set up %s", identity))
	}

	p.group.Go(func() error {
		defer p.forget(identity)
		defer cancel()
		defer func() {
			if err := p.directory.Deregister(context.Background(), identity); err != nil {
				a.logger.Warn().Err(err).Msg("could not deregister")
			}
		}()
		if td, ok := role.(TakeDowner); ok {
			defer td.TakeDown(a)
		}

		return a.Run(ctx)
	})

	return a, nil
}

// Kill stops an agent from the outside.
func (p *Platform) Kill(identity string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.cancels[identity]
	if ok {
		cancel()
	}
	return ok
}

// Running lists the identities whose loop has not ended yet.
func (p *Platform) Running() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ret := make([]string, 0, len(p.cancels))
	for id := range p.cancels {
		ret = append(ret, id)
	}
	return ret
}

// Wait blocks until every agent has ended and returns the first fatal error.
func (p *Platform) Wait() error {
	return p.group.Wait()
}

func (p *Platform) forget(identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cancels, identity)
}
