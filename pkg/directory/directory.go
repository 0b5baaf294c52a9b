package directory

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrRoleTaken     = errors.New("role already registered by another identity")
	ErrEmptyRole     = errors.New("role must not be empty")
	ErrUnknownPolicy = errors.New("unknown directory policy")
	ErrNotRegistered = errors.New("identity not registered")
)

// Policy decides what happens when a second identity registers a role.
type Policy string

const (
	// FirstWins keeps every registration; Search lists them in registration
	// order, so dependents binding the first result get the earliest one.
	FirstWins Policy = "first-wins"
	// RejectDuplicates fails the second registration with ErrRoleTaken.
	RejectDuplicates Policy = "reject-duplicates"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case FirstWins, "":
		return FirstWins, nil
	case RejectDuplicates:
		return RejectDuplicates, nil
	default:
		return "", errors.Wrapf(ErrUnknownPolicy, "%q", s)
	}
}

// Directory maps role names to the agent identities that provide them.
type Directory interface {
	Register(ctx context.Context, identity string, role string) error
	Search(ctx context.Context, role string) ([]string, error)
	Deregister(ctx context.Context, identity string) error
}

type registration struct {
	identity string
	role     string
}

// Memory is an in-process Directory shared by all agents of a platform.
type Memory struct {
	mu            sync.RWMutex
	policy        Policy
	registrations []registration
}

var _ Directory = &Memory{}

type Option func(*Memory)

func WithPolicy(p Policy) Option {
	return func(m *Memory) {
		m.policy = p
	}
}

func NewMemory(options ...Option) *Memory {
	m := &Memory{policy: FirstWins}
	for _, o := range options {
		o(m)
	}
	return m
}

// Register is idempotent for the same identity and role.
func (m *Memory) Register(ctx context.Context, identity string, role string) error {
	if role == "" {
		return ErrEmptyRole
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.registrations {
		if r.role != role {
			continue
		}
		if r.identity == identity {
			return nil
		}
		if m.policy == RejectDuplicates {
			return errors.Wrapf(ErrRoleTaken, "%s is provided by %s", role, r.identity)
		}
	}
	m.registrations = append(m.registrations, registration{identity: identity, role: role})
	return nil
}

func (m *Memory) Search(ctx context.Context, role string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := []string{}
	for _, r := range m.registrations {
		if r.role == role {
			ret = append(ret, r.identity)
		}
	}
	return ret, nil
}

// Deregister drops every role registered by identity.
func (m *Memory) Deregister(ctx context.Context, identity string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.registrations[:0]
	found := false
	for _, r := range m.registrations {
		if r.identity == identity {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	m.registrations = kept
	if !found {
		return errors.Wrap(ErrNotRegistered, identity)
	}
	return nil
}
