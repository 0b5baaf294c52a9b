package world

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
)

var (
	ErrUnknownAction  = errors.New("unknown action symbol")
	ErrUnknownPercept = errors.New("unknown percept token")
)

// Percept is what the agent senses in its current cell for one turn.
// The zero value senses nothing.
type Percept struct {
	Breeze  bool `json:"breeze,omitempty" yaml:"breeze,omitempty"`
	Stench  bool `json:"stench,omitempty" yaml:"stench,omitempty"`
	Glitter bool `json:"glitter,omitempty" yaml:"glitter,omitempty"`
	Bump    bool `json:"bump,omitempty" yaml:"bump,omitempty"`
	Scream  bool `json:"scream,omitempty" yaml:"scream,omitempty"`
}

const (
	perceptBreeze  = "Breeze"
	perceptStench  = "Stench"
	perceptGlitter = "Glitter"
	perceptBump    = "Bump"
	perceptScream  = "Scream"
)

// IsEmpty reports whether no flag is set.
func (p Percept) IsEmpty() bool {
	return p == Percept{}
}

// String renders the percept in set notation, e.g. "{Breeze, Glitter}".
func (p Percept) String() string {
	tokens := make([]string, 0, 5)
	if p.Breeze {
		tokens = append(tokens, perceptBreeze)
	}
	if p.Stench {
		tokens = append(tokens, perceptStench)
	}
	if p.Glitter {
		tokens = append(tokens, perceptGlitter)
	}
	if p.Bump {
		tokens = append(tokens, perceptBump)
	}
	if p.Scream {
		tokens = append(tokens, perceptScream)
	}
	return "{" + strings.Join(tokens, ", ") + "}"
}

// ParsePercept is the inverse of Percept.String. Braces are optional and
// tokens are matched exactly.
func ParsePercept(s string) (Percept, error) {
	var p Percept
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		switch token {
		case "":
		case perceptBreeze:
			p.Breeze = true
		case perceptStench:
			p.Stench = true
		case perceptGlitter:
			p.Glitter = true
		case perceptBump:
			p.Bump = true
		case perceptScream:
			p.Scream = true
		default:
			return Percept{}, errors.Wrapf(ErrUnknownPercept, "%q", token)
		}
	}
	return p, nil
}

// Action is the single decided response for a turn.
type Action int

const (
	TurnLeft Action = iota
	TurnRight
	Forward
	Grab
	Shoot
	Climb
)

// Actions lists every action in declaration order.
var Actions = []Action{TurnLeft, TurnRight, Forward, Grab, Shoot, Climb}

var actionSymbols = map[Action]string{
	TurnLeft:  "TurnLeft",
	TurnRight: "TurnRight",
	Forward:   "Forward",
	Grab:      "Grab",
	Shoot:     "Shoot",
	Climb:     "Climb",
}

// Symbol is the wire form of the action.
func (a Action) Symbol() string {
	if s, ok := actionSymbols[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) String() string {
	return a.Symbol()
}

// IsTerminal is true only for Climb.
func (a Action) IsTerminal() bool {
	return a == Climb
}

// ParseAction maps a wire symbol back to its action. It is strict: the symbol
// must match exactly.
func ParseAction(symbol string) (Action, error) {
	for _, a := range Actions {
		if actionSymbols[a] == symbol {
			return a, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", symbol)
}

// ParseActionName accepts human spellings such as "turn-left", "TURN_LEFT"
// or "forward".
func ParseActionName(name string) (Action, error) {
	name = strings.TrimSpace(name)
	if a, err := ParseAction(name); err == nil {
		return a, nil
	}
	return ParseAction(strcase.ToCamel(strings.ToLower(name)))
}

// Orientation is the direction the agent is facing.
type Orientation int

const (
	FacingNorth Orientation = iota
	FacingEast
	FacingSouth
	FacingWest
)

func (o Orientation) String() string {
	switch o {
	case FacingNorth:
		return "FacingNorth"
	case FacingEast:
		return "FacingEast"
	case FacingSouth:
		return "FacingSouth"
	case FacingWest:
		return "FacingWest"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Left returns the orientation after a TurnLeft.
func (o Orientation) Left() Orientation {
	return (o + 3) % 4
}

// Right returns the orientation after a TurnRight.
func (o Orientation) Right() Orientation {
	return (o + 1) % 4
}

// Delta is the unit step taken when moving forward.
func (o Orientation) Delta() (dx, dy int) {
	switch o {
	case FacingNorth:
		return 0, 1
	case FacingEast:
		return 1, 0
	case FacingSouth:
		return 0, -1
	default:
		return -1, 0
	}
}

// Cell is a 1-based grid coordinate; (1,1) is the bottom-left corner.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// Step returns the neighbouring cell in direction o.
func (c Cell) Step(o Orientation) Cell {
	dx, dy := o.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Position is a cell plus the facing direction.
type Position struct {
	Cell
	Orientation Orientation `json:"orientation" yaml:"orientation"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s->%s", p.Cell, p.Orientation)
}
