package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/go-go-golems/spelunker/pkg/roles"
	"github.com/go-go-golems/spelunker/pkg/settings"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flag name -> settings key
var runFlagKeys = map[string]string{
	"poll-interval":      "poll-interval",
	"seed":               "seed",
	"directory-policy":   "directory.policy",
	"first-keyword-only": "speech.first-keyword-only",
	"layout-file":        "world.layout-file",
	"planner":            "planner.kind",
	"script":             "planner.script",
	"await-role":         "simulator.await-role",
}

func NewRunCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session of all three roles until the speleologist climbs out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load(viper.GetViper())
			if err != nil {
				return err
			}
			transcript, _ := cmd.Flags().GetBool("transcript")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var out io.Writer
			if transcript {
				out = cmd.OutOrStdout()
			}
			summary, err := RunSession(ctx, s, out)
			if summary != nil {
				summary.Print(cmd.OutOrStdout())
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.Duration("poll-interval", time.Second, "How often roles poll the directory for their peers")
	flags.Int64("seed", 0, "Seed for phrase choice (0: random)")
	flags.String("directory-policy", "first-wins", "What to do when a role registers twice (first-wins, reject-duplicates)")
	flags.Bool("first-keyword-only", false, "Only recognize the canonical keyword of each percept")
	flags.String("layout-file", "", "YAML cave layout (default: built-in 4x4 cave)")
	flags.String("planner", settings.PlannerExplorer, "Planner for the navigator (explorer, scripted, interactive)")
	flags.StringSlice("script", nil, "Actions for the scripted planner, e.g. forward,forward,grab,climb")
	flags.String("await-role", roles.DecisionMakerRole, "Role the environment waits for before answering")
	flags.Bool("transcript", false, "Print every message exchanged")

	for name, key := range runFlagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}

	return cmd, nil
}

// Summary is what a finished session reports.
type Summary struct {
	Turns    int
	Position string
	Status   world.Status
}

func (s *Summary) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "turns: %d\nlast position: %s\nalive: %t\nhas gold: %t\nclimbed out: %t\n",
		s.Turns, s.Position, s.Status.Alive, s.Status.HasGold, s.Status.Climbed)
}

// RunSession spawns the three roles on one platform and waits until the
// relay ends the session or ctx is cancelled. When transcript is not nil,
// every message is written to it.
func RunSession(ctx context.Context, s *settings.Settings, transcript io.Writer) (*Summary, error) {
	cave, err := s.Cave()
	if err != nil {
		return nil, err
	}
	p, err := s.NewPlanner(cave)
	if err != nil {
		return nil, err
	}
	dir, err := s.NewDirectory()
	if err != nil {
		return nil, err
	}
	env := world.NewEnvironment(cave)

	options := []messaging.BusOption{messaging.WithVerbose(viper.GetBool("verbose"))}
	if transcript != nil {
		var mu sync.Mutex
		options = append(options, messaging.WithTap(func(m *messaging.Message) {
			mu.Lock()
			defer mu.Unlock()
			_, _ = fmt.Fprintln(transcript, m.String())
		}))
	}
	bus := messaging.NewBus(options...)
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close bus")
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	platform := agent.NewPlatform(ctx, bus, dir)
	registry := roles.DefaultRegistry()

	var relay *roles.Relay
	for i, name := range []string{roles.SimulatorRole, roles.DecisionMakerRole, roles.RelayRole} {
		role, err := registry.New(name, roles.Deps{
			World:        env,
			Planner:      p,
			Codec:        s.NewCodec(int64(i)),
			PollInterval: s.PollInterval,
			AwaitRole:    s.Simulator.AwaitRole,
			Observer: func(phase roles.Phase) {
				log.Trace().Stringer("phase", phase).Msg("relay phase")
			},
		})
		if err == nil {
			// identities are the role names, one agent per role
			_, err = platform.Spawn(name, role)
		}
		if err != nil {
			cancel()
			_ = platform.Wait()
			return nil, err
		}
		if r, ok := role.(*roles.Relay); ok {
			relay = r
		}
	}

	err = platform.Wait()
	if err == nil && ctx.Err() != nil && (relay == nil || relay.Phase() != roles.PhaseDone) {
		err = errors.Wrap(ctx.Err(), "session interrupted")
	}

	summary := &Summary{}
	if relay != nil {
		summary.Turns = relay.Turns()
		summary.Position = relay.Position()
	}
	if status, statusErr := env.Status(roles.RelayRole); statusErr == nil {
		summary.Status = status
	}
	return summary, err
}
