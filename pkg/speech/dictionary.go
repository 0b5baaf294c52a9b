package speech

import (
	"strings"

	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
)

var ErrUnknownFlag = errors.New("unknown percept flag")

// Flag names one percept sensor.
type Flag int

const (
	FlagBreeze Flag = iota
	FlagStench
	FlagGlitter
	FlagBump
	FlagScream
)

// Flags is the fixed order in which flags are spoken and recognized.
var Flags = []Flag{FlagBreeze, FlagStench, FlagGlitter, FlagBump, FlagScream}

func (f Flag) String() string {
	switch f {
	case FlagBreeze:
		return "breeze"
	case FlagStench:
		return "stench"
	case FlagGlitter:
		return "glitter"
	case FlagBump:
		return "bump"
	case FlagScream:
		return "scream"
	default:
		return "unknown"
	}
}

// ParseFlag accepts a flag name in any case.
func ParseFlag(name string) (Flag, error) {
	for _, f := range Flags {
		if strings.EqualFold(strings.TrimSpace(name), f.String()) {
			return f, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownFlag, "%q", name)
}

// IsSet reports whether the flag is raised in p.
func (f Flag) IsSet(p world.Percept) bool {
	switch f {
	case FlagBreeze:
		return p.Breeze
	case FlagStench:
		return p.Stench
	case FlagGlitter:
		return p.Glitter
	case FlagBump:
		return p.Bump
	case FlagScream:
		return p.Scream
	default:
		return false
	}
}

// Set raises the flag in p.
func (f Flag) Set(p *world.Percept) {
	switch f {
	case FlagBreeze:
		p.Breeze = true
	case FlagStench:
		p.Stench = true
	case FlagGlitter:
		p.Glitter = true
	case FlagBump:
		p.Bump = true
	case FlagScream:
		p.Scream = true
	}
}

// Dictionary holds both phrase tables and both keyword tables.
type Dictionary struct {
	// PerceptPhrases is what the relay says for each raised flag.
	PerceptPhrases map[Flag][]string
	// NothingPhrases is said when no flag is raised.
	NothingPhrases []string
	// PerceptKeywords recognizes flags in a clause. The first keyword of each
	// list is the canonical one.
	PerceptKeywords map[Flag][]string

	// ActionPhrases is what the decision-maker says for each action.
	ActionPhrases map[world.Action][]string
	// ActionKeywords recognizes actions, scanned in world.Actions order.
	ActionKeywords map[world.Action][]string
}

// DefaultDictionary returns the English tables.
//
// Every phrase of a flag is recognized as exactly that flag, every nothing
// phrase as no flag at all, and every action phrase as exactly its action.
func DefaultDictionary() *Dictionary {
	return &Dictionary{
		PerceptPhrases: map[Flag][]string{
			FlagBreeze: {
				"There is a breeze",
				"I feel breeze",
				"It's breezy here",
				"I feel something, like a breeze",
				"I feel something, like a wind",
			},
			FlagStench: {
				"There is a stench",
				"It's stinky here",
				"I smell something",
				"I smell something, like a stench",
				"I smell something, like a stink",
			},
			FlagGlitter: {
				"There is a glitter",
				"I see something shiny",
				"It's glittery here",
				"I see something, like a glitter",
				"I see something, like a shiny",
			},
			FlagBump: {
				"There is a bump",
				"It's bumping here",
				"I hit the wall",
				"I feel something, like a bump",
				"I feel something, like a hit",
			},
			FlagScream: {
				"There is a scream",
				"It's screaming here",
				"I hear something",
				"I hear something, like a scream",
				"I hear something, like a shout",
			},
		},
		NothingPhrases: []string{
			"There is nothing",
			"All clear",
			"I see nothing",
			"I feel nothing",
			"I hear nothing",
		},
		PerceptKeywords: map[Flag][]string{
			FlagBreeze:  {"breeze", "breezy", "wind"},
			FlagStench:  {"stench", "stink", "smell"},
			FlagGlitter: {"glitter", "shiny"},
			FlagBump:    {"bump", "hit"},
			FlagScream:  {"scream", "shout", "hear something"},
		},
		ActionPhrases: map[world.Action][]string{
			world.Forward: {
				"Go forward",
				"Go straight",
				"Go ahead",
				"Go straight ahead",
			},
			world.TurnLeft: {
				"Turn left",
				"Turn to the left",
				"Turn leftwards",
				"Turn to the leftwards",
				"You should turn left",
				"You should turn to the left",
			},
			world.TurnRight: {
				"Turn right",
				"Turn to the right",
				"Turn rightwards",
				"Turn to the rightwards",
				"You should turn right",
				"You should turn to the right",
			},
			world.Shoot: {
				"Shoot",
				"Shoot the Wumpus",
				"Shoot the monster",
			},
			world.Grab: {
				"Grab",
				"Grab the gold",
				"Grab the treasure",
				"Grab the coins",
				"Grab the money",
				"Grab the loot",
			},
			world.Climb: {
				"Climb",
				"Climb the ladder",
				"Climb the stairs",
			},
		},
		ActionKeywords: map[world.Action][]string{
			world.TurnLeft:  {"left"},
			world.TurnRight: {"right"},
			world.Forward:   {"forward", "ahead", "straight"},
			world.Grab:      {"grab"},
			world.Shoot:     {"shoot"},
			world.Climb:     {"climb"},
		},
	}
}
