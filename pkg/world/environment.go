package world

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrUnknownAgent = errors.New("agent is not in the cave")

// Status summarizes how an agent's expedition is going.
type Status struct {
	Alive   bool `json:"alive"`
	Climbed bool `json:"climbed"`
	HasGold bool `json:"hasGold"`
	Arrow   bool `json:"arrow"`
	Moves   int  `json:"moves"`
}

type agentState struct {
	pos     Position
	alive   bool
	climbed bool
	hasGold bool
	arrow   bool
	moves   int
	bumped  bool
	scream  bool
}

// Environment is the mutable world: the cave plus the agents in it.
// Gold and wumpus state are shared by every agent.
type Environment struct {
	cave *Cave

	mu          sync.Mutex
	agents      map[string]*agentState
	wumpusAlive bool
	goldTaken   bool
}

func NewEnvironment(cave *Cave) *Environment {
	return &Environment{
		cave:        cave,
		agents:      map[string]*agentState{},
		wumpusAlive: true,
	}
}

func (e *Environment) Cave() *Cave {
	return e.cave
}

// AddAgent places an agent on the start cell facing north. Adding an agent
// twice resets it.
func (e *Environment) AddAgent(handle string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[handle] = &agentState{
		pos:   Position{Cell: e.cave.Start, Orientation: FacingNorth},
		alive: true,
		arrow: true,
	}
}

func (e *Environment) agent(handle string) (*agentState, error) {
	a, ok := e.agents[handle]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAgent, "%q", handle)
	}
	return a, nil
}

// Observe computes what the agent perceives in its current cell.
func (e *Environment) Observe(handle string) (Percept, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.agent(handle)
	if err != nil {
		return Percept{}, err
	}

	cell := a.pos.Cell
	p := Percept{
		Bump:   a.bumped,
		Scream: a.scream,
	}
	if e.wumpusAlive && (e.cave.Wumpus == cell || e.isAdjacent(cell, e.cave.Wumpus)) {
		p.Stench = true
	}
	for _, n := range e.cave.Neighbours(cell) {
		if e.cave.Pits[n] {
			p.Breeze = true
			break
		}
	}
	if !e.goldTaken && e.cave.Gold == cell {
		p.Glitter = true
	}
	return p, nil
}

// Position returns the agent's cell and facing.
func (e *Environment) Position(handle string) (Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.agent(handle)
	if err != nil {
		return Position{}, err
	}
	return a.pos, nil
}

func (e *Environment) Status(handle string) (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.agent(handle)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Alive:   a.alive,
		Climbed: a.climbed,
		HasGold: a.hasGold,
		Arrow:   a.arrow,
		Moves:   a.moves,
	}, nil
}

// Execute applies an action. Actions of dead or departed agents are ignored.
func (e *Environment) Execute(handle string, action Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.agent(handle)
	if err != nil {
		return err
	}
	if !a.alive || a.climbed {
		return nil
	}

	a.bumped = false
	a.scream = false
	a.moves++

	switch action {
	case TurnLeft:
		a.pos.Orientation = a.pos.Orientation.Left()
	case TurnRight:
		a.pos.Orientation = a.pos.Orientation.Right()
	case Forward:
		next := a.pos.Cell.Step(a.pos.Orientation)
		if !e.cave.Contains(next) {
			a.bumped = true
			return nil
		}
		a.pos.Cell = next
		if e.cave.Pits[next] || (e.wumpusAlive && e.cave.Wumpus == next) {
			a.alive = false
		}
	case Grab:
		if !e.goldTaken && e.cave.Gold == a.pos.Cell {
			e.goldTaken = true
			a.hasGold = true
		}
	case Shoot:
		if !a.arrow {
			return nil
		}
		a.arrow = false
		if e.wumpusAlive && e.inLineOfFire(a.pos, e.cave.Wumpus) {
			e.wumpusAlive = false
			a.scream = true
		}
	case Climb:
		if a.pos.Cell == e.cave.Start {
			a.climbed = true
		}
	default:
		return errors.Wrapf(ErrUnknownAction, "%d", int(action))
	}
	return nil
}

func (e *Environment) isAdjacent(a, b Cell) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy == 1
}

func (e *Environment) inLineOfFire(from Position, target Cell) bool {
	for cell := from.Cell.Step(from.Orientation); e.cave.Contains(cell); cell = cell.Step(from.Orientation) {
		if cell == target {
			return true
		}
	}
	return false
}
