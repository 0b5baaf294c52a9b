package speech

import (
	"strings"

	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

var ErrMalformedPerceptBlock = errors.New("malformed percept block")

const (
	KeyPercept  = "percept"
	KeyPosition = "position"
)

// Report is what the simulator tells the relay each turn.
type Report struct {
	Percept  world.Percept
	Position string
}

// EncodePerceptBlock writes the percept (and the position, if known) as a
// properties document: "percept = {Breeze, Stench}".
func EncodePerceptBlock(p world.Percept, pos *world.Position) (string, error) {
	props := properties.NewProperties()
	props.DisableExpansion = true
	if _, _, err := props.Set(KeyPercept, p.String()); err != nil {
		return "", errors.Wrap(err, "could not set percept")
	}
	if pos != nil {
		if _, _, err := props.Set(KeyPosition, pos.String()); err != nil {
			return "", errors.Wrap(err, "could not set position")
		}
	}

	var b strings.Builder
	if _, err := props.Write(&b, properties.UTF8); err != nil {
		return "", errors.Wrap(err, "could not write percept block")
	}
	return b.String(), nil
}

// DecodePerceptBlock parses a block written by EncodePerceptBlock. A block
// without a percept key is an error, never an empty percept.
func DecodePerceptBlock(block string) (Report, error) {
	props, err := properties.LoadString(block)
	if err != nil {
		return Report{}, errors.Wrapf(ErrMalformedPerceptBlock, "%v", err)
	}
	raw, ok := props.Get(KeyPercept)
	if !ok {
		return Report{}, errors.Wrapf(ErrMalformedPerceptBlock, "missing %q key", KeyPercept)
	}
	p, err := world.ParsePercept(raw)
	if err != nil {
		return Report{}, errors.Wrapf(ErrMalformedPerceptBlock, "%v", err)
	}
	pos, _ := props.Get(KeyPosition)
	return Report{Percept: p, Position: pos}, nil
}
