package planner

import (
	"context"
	"sync"

	"github.com/go-go-golems/spelunker/pkg/world"
)

// Explorer walks only into cells it has proven safe. A cell is pit-free when a
// visited neighbour had no breeze, and wumpus-free when a visited neighbour had
// no stench (or the wumpus screamed). It heads for the nearest unvisited safe
// cell, grabs the gold when it glitters, and climbs out at the start once it
// has the gold or nothing safe is left to explore.
type Explorer struct {
	mu sync.Mutex

	width  int
	height int
	home   world.Cell
	pose   world.Position

	visited    map[world.Cell]bool
	noPit      map[world.Cell]bool
	noWumpus   map[world.Cell]bool
	wumpusDead bool
	hasGold    bool

	movedFrom *world.Cell
	plan      []world.Action
	finished  bool
}

var _ Planner = (*Explorer)(nil)

func NewExplorer(width, height int, start world.Position) *Explorer {
	return &Explorer{
		width:    width,
		height:   height,
		home:     start.Cell,
		pose:     start,
		visited:  map[world.Cell]bool{},
		noPit:    map[world.Cell]bool{},
		noWumpus: map[world.Cell]bool{},
	}
}

// Pose is where the explorer believes it is.
func (e *Explorer) Pose() world.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pose
}

func (e *Explorer) Decide(_ context.Context, percept world.Percept) (world.Action, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return 0, false
	}

	if percept.Bump && e.movedFrom != nil {
		e.pose.Cell = *e.movedFrom
		e.plan = nil
	}
	e.movedFrom = nil
	if percept.Scream {
		e.wumpusDead = true
	}

	e.learn(percept)

	if percept.Glitter && !e.hasGold {
		e.hasGold = true
		e.plan = nil
		return world.Grab, true
	}

	if len(e.plan) == 0 {
		var path []world.Cell
		if !e.hasGold {
			path = e.route(func(c world.Cell) bool { return !e.visited[c] })
		}
		if path == nil {
			if e.pose.Cell == e.home {
				e.finished = true
				return world.Climb, true
			}
			path = e.route(func(c world.Cell) bool { return c == e.home })
			if path == nil {
				// boxed in with no known way home
				e.finished = true
				return world.Climb, true
			}
		}
		e.plan = e.actionsAlong(path)
	}

	next := e.plan[0]
	e.plan = e.plan[1:]
	e.apply(next)
	return next, true
}

func (e *Explorer) learn(percept world.Percept) {
	here := e.pose.Cell
	e.visited[here] = true
	e.noPit[here] = true
	e.noWumpus[here] = true
	for _, n := range e.neighbours(here) {
		if !percept.Breeze {
			e.noPit[n] = true
		}
		if !percept.Stench {
			e.noWumpus[n] = true
		}
	}
}

func (e *Explorer) safe(c world.Cell) bool {
	return e.noPit[c] && (e.noWumpus[c] || e.wumpusDead)
}

func (e *Explorer) inside(c world.Cell) bool {
	return c.X >= 1 && c.X <= e.width && c.Y >= 1 && c.Y <= e.height
}

func (e *Explorer) neighbours(c world.Cell) []world.Cell {
	ret := make([]world.Cell, 0, 4)
	for _, o := range []world.Orientation{world.FacingNorth, world.FacingEast, world.FacingSouth, world.FacingWest} {
		if n := c.Step(o); e.inside(n) {
			ret = append(ret, n)
		}
	}
	return ret
}

// route runs a breadth-first search over safe cells from the current cell
// and returns the path to the nearest cell matching goal, excluding the
// starting cell. It returns nil when no such cell is reachable.
func (e *Explorer) route(goal func(world.Cell) bool) []world.Cell {
	start := e.pose.Cell
	cameFrom := map[world.Cell]world.Cell{start: start}
	queue := []world.Cell{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range e.neighbours(cur) {
			if _, seen := cameFrom[n]; seen || !e.safe(n) {
				continue
			}
			cameFrom[n] = cur
			if goal(n) {
				path := []world.Cell{n}
				for c := cur; c != start; c = cameFrom[c] {
					path = append([]world.Cell{c}, path...)
				}
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func (e *Explorer) actionsAlong(path []world.Cell) []world.Action {
	var actions []world.Action
	facing := e.pose.Orientation
	at := e.pose.Cell
	for _, next := range path {
		want := orientationTowards(at, next)
		switch (want - facing + 4) % 4 {
		case 1:
			actions = append(actions, world.TurnRight)
		case 2:
			actions = append(actions, world.TurnRight, world.TurnRight)
		case 3:
			actions = append(actions, world.TurnLeft)
		}
		actions = append(actions, world.Forward)
		facing, at = want, next
	}
	return actions
}

func (e *Explorer) apply(a world.Action) {
	switch a {
	case world.TurnLeft:
		e.pose.Orientation = e.pose.Orientation.Left()
	case world.TurnRight:
		e.pose.Orientation = e.pose.Orientation.Right()
	case world.Forward:
		from := e.pose.Cell
		next := from.Step(e.pose.Orientation)
		if e.inside(next) {
			e.movedFrom = &from
			e.pose.Cell = next
		}
	}
}

func orientationTowards(from, to world.Cell) world.Orientation {
	switch {
	case to.Y > from.Y:
		return world.FacingNorth
	case to.X > from.X:
		return world.FacingEast
	case to.Y < from.Y:
		return world.FacingSouth
	default:
		return world.FacingWest
	}
}
