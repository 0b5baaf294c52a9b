package planner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tcnksm/go-input"
)

var ErrNotATerminal = errors.New("interactive planner needs a terminal on stdin")

// Interactive asks a human for every action. Answering "quit" gives up, which
// the decision-maker treats as having no action.
type Interactive struct {
	ui *input.UI
}

var _ Planner = (*Interactive)(nil)

const quitChoice = "quit"

// NewInteractive builds a planner reading from stdin and writing to stdout.
func NewInteractive() (*Interactive, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, ErrNotATerminal
	}
	return NewInteractiveWithIO(os.Stdin, os.Stdout), nil
}

func NewInteractiveWithIO(r io.Reader, w io.Writer) *Interactive {
	return &Interactive{
		ui: &input.UI{Reader: r, Writer: w},
	}
}

func (i *Interactive) Decide(_ context.Context, percept world.Percept) (world.Action, bool) {
	choices := make([]string, 0, len(world.Actions)+1)
	for _, a := range world.Actions {
		choices = append(choices, a.Symbol())
	}
	choices = append(choices, quitChoice)

	answer, err := i.ui.Select(
		fmt.Sprintf("You sense %s. What next?", percept),
		choices,
		&input.Options{Default: world.Forward.Symbol(), Loop: true},
	)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read action")
		return 0, false
	}
	if answer == quitChoice {
		return 0, false
	}
	a, err := world.ParseAction(answer)
	if err != nil {
		return 0, false
	}
	return a, true
}
