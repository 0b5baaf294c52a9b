package settings

import (
	"strings"
	"time"

	"github.com/go-go-golems/spelunker/pkg/directory"
	"github.com/go-go-golems/spelunker/pkg/planner"
	"github.com/go-go-golems/spelunker/pkg/roles"
	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	PlannerScripted    = "scripted"
	PlannerExplorer    = "explorer"
	PlannerInteractive = "interactive"
)

var ErrUnknownPlanner = errors.New("unknown planner kind")

type DirectorySettings struct {
	Policy string `mapstructure:"policy" yaml:"policy"`
}

type SpeechSettings struct {
	// FirstKeywordOnly only checks the canonical keyword of each flag.
	FirstKeywordOnly bool   `mapstructure:"first-keyword-only" yaml:"first-keyword-only"`
	Separator        string `mapstructure:"separator" yaml:"separator"`
}

type WorldSettings struct {
	Width      int    `mapstructure:"width" yaml:"width"`
	Height     int    `mapstructure:"height" yaml:"height"`
	Layout     string `mapstructure:"layout" yaml:"layout"`
	LayoutFile string `mapstructure:"layout-file" yaml:"layout-file"`
}

type PlannerSettings struct {
	Kind   string   `mapstructure:"kind" yaml:"kind"`
	Script []string `mapstructure:"script" yaml:"script"`
}

type SimulatorSettings struct {
	AwaitRole string `mapstructure:"await-role" yaml:"await-role"`
}

// Settings configure one run of the three roles.
type Settings struct {
	PollInterval time.Duration `mapstructure:"poll-interval" yaml:"poll-interval"`
	// Seed fixes phrase choice. Zero means a new seed per run.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	Directory DirectorySettings `mapstructure:"directory" yaml:"directory"`
	Speech    SpeechSettings    `mapstructure:"speech" yaml:"speech"`
	World     WorldSettings     `mapstructure:"world" yaml:"world"`
	Planner   PlannerSettings   `mapstructure:"planner" yaml:"planner"`
	Simulator SimulatorSettings `mapstructure:"simulator" yaml:"simulator"`
}

func NewSettings() *Settings {
	return &Settings{
		PollInterval: time.Second,
		Directory:    DirectorySettings{Policy: string(directory.FirstWins)},
		Speech:       SpeechSettings{Separator: speech.DefaultSeparator},
		World:        WorldSettings{Width: 4, Height: 4},
		Planner:      PlannerSettings{Kind: PlannerExplorer},
		Simulator:    SimulatorSettings{AwaitRole: roles.DecisionMakerRole},
	}
}

// Load decodes v on top of the defaults.
func Load(v *viper.Viper) (*Settings, error) {
	s := NewSettings()
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	if s.PollInterval <= 0 {
		return nil, errors.Errorf("poll-interval must be positive, got %s", s.PollInterval)
	}
	if _, err := directory.ParsePolicy(s.Directory.Policy); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) NewDirectory() (*directory.Memory, error) {
	policy, err := directory.ParsePolicy(s.Directory.Policy)
	if err != nil {
		return nil, err
	}
	return directory.NewMemory(directory.WithPolicy(policy)), nil
}

// NewCodec builds a codec. Each role needs its own; offset keeps seeded
// codecs of different roles from repeating each other.
func (s *Settings) NewCodec(offset int64) *speech.Codec {
	options := []speech.Option{
		speech.WithFirstKeywordOnly(s.Speech.FirstKeywordOnly),
	}
	if s.Speech.Separator != "" {
		options = append(options, speech.WithSeparator(s.Speech.Separator))
	}
	if s.Seed != 0 {
		options = append(options, speech.WithSeed(s.Seed+offset))
	}
	return speech.NewCodec(options...)
}

// Cave reads the layout file if one is set, then the inline layout, and
// falls back to the built-in cave.
func (s *Settings) Cave() (*world.Cave, error) {
	switch {
	case s.World.LayoutFile != "":
		return world.LoadLayoutFile(s.World.LayoutFile)
	case strings.TrimSpace(s.World.Layout) != "":
		return world.ParseLayout(s.World.Width, s.World.Height, s.World.Layout)
	default:
		return world.ParseDefaultLayout(), nil
	}
}

func (s *Settings) Script() ([]world.Action, error) {
	ret := []world.Action{}
	for _, name := range s.Planner.Script {
		for _, field := range strings.Fields(strings.ReplaceAll(name, ",", " ")) {
			a, err := world.ParseActionName(field)
			if err != nil {
				return nil, err
			}
			ret = append(ret, a)
		}
	}
	return ret, nil
}

func (s *Settings) NewPlanner(cave *world.Cave) (planner.Planner, error) {
	switch s.Planner.Kind {
	case PlannerScripted:
		script, err := s.Script()
		if err != nil {
			return nil, err
		}
		return planner.NewScripted(script...), nil
	case PlannerExplorer, "":
		start := world.Position{Cell: cave.Start, Orientation: world.FacingNorth}
		return planner.NewExplorer(cave.Width, cave.Height, start), nil
	case PlannerInteractive:
		return planner.NewInteractive()
	default:
		return nil, errors.Wrapf(ErrUnknownPlanner, "%q", s.Planner.Kind)
	}
}
