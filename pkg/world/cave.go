package world

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultLayout is the 4x4 cave the game ships with. Rows are listed from the
// top (y=4) down to the bottom (y=1).
const DefaultLayout = `
. . . P
W G P .
. . . .
S . P .
`

var ErrInvalidLayout = errors.New("invalid cave layout")

// Cave is the static part of the world: its size and where the hazards are.
type Cave struct {
	Width  int
	Height int
	Start  Cell
	Wumpus Cell
	Gold   Cell
	Pits   map[Cell]bool
}

// LayoutFile is the YAML form of a cave layout.
//
//	width: 4
//	height: 4
//	rows:
//	  - ". . . P"
//	  - "W G P ."
//	  - ". . . ."
//	  - "S . P ."
type LayoutFile struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Rows   []string `yaml:"rows"`
}

// ParseLayout reads a whitespace separated grid of tokens, row-major from the
// top row. Tokens: "." empty, "P" pit, "W" wumpus, "G" gold, "S" start.
// Exactly one S, W and G are required.
func ParseLayout(width, height int, layout string) (*Cave, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidLayout, "size %dx%d", width, height)
	}
	tokens := strings.Fields(layout)
	if len(tokens) != width*height {
		return nil, errors.Wrapf(ErrInvalidLayout, "expected %d cells, got %d", width*height, len(tokens))
	}

	c := &Cave{
		Width:  width,
		Height: height,
		Pits:   map[Cell]bool{},
	}
	var seenStart, seenWumpus, seenGold bool
	for i, tok := range tokens {
		cell := Cell{X: i%width + 1, Y: height - i/width}
		switch strings.ToUpper(tok) {
		case ".":
		case "P":
			c.Pits[cell] = true
		case "W":
			if seenWumpus {
				return nil, errors.Wrapf(ErrInvalidLayout, "second wumpus at %s", cell)
			}
			c.Wumpus, seenWumpus = cell, true
		case "G":
			if seenGold {
				return nil, errors.Wrapf(ErrInvalidLayout, "second gold at %s", cell)
			}
			c.Gold, seenGold = cell, true
		case "S":
			if seenStart {
				return nil, errors.Wrapf(ErrInvalidLayout, "second start at %s", cell)
			}
			c.Start, seenStart = cell, true
		default:
			return nil, errors.Wrapf(ErrInvalidLayout, "unknown token %q at %s", tok, cell)
		}
	}
	if !seenStart || !seenWumpus || !seenGold {
		return nil, errors.Wrap(ErrInvalidLayout, "layout needs one S, one W and one G")
	}
	return c, nil
}

// ParseDefaultLayout returns the built-in 4x4 cave.
func ParseDefaultLayout() *Cave {
	c, err := ParseLayout(4, 4, DefaultLayout)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadLayoutFile reads a YAML layout file.
func LoadLayoutFile(path string) (*Cave, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read layout file %s", path)
	}
	var lf LayoutFile
	if err := yaml.Unmarshal(b, &lf); err != nil {
		return nil, errors.Wrapf(err, "could not parse layout file %s", path)
	}
	if lf.Height == 0 {
		lf.Height = len(lf.Rows)
	}
	if lf.Width == 0 && len(lf.Rows) > 0 {
		lf.Width = len(strings.Fields(lf.Rows[0]))
	}
	return ParseLayout(lf.Width, lf.Height, strings.Join(lf.Rows, "\n"))
}

// Contains reports whether the cell lies inside the cave.
func (c *Cave) Contains(cell Cell) bool {
	return cell.X >= 1 && cell.X <= c.Width && cell.Y >= 1 && cell.Y <= c.Height
}

// Neighbours returns the in-bounds cells sharing an edge with cell.
func (c *Cave) Neighbours(cell Cell) []Cell {
	ret := make([]Cell, 0, 4)
	for _, o := range []Orientation{FacingNorth, FacingEast, FacingSouth, FacingWest} {
		n := cell.Step(o)
		if c.Contains(n) {
			ret = append(ret, n)
		}
	}
	return ret
}
