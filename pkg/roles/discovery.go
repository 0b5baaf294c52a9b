package roles

import (
	"context"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/pkg/errors"
)

// Discover polls the directory for role every interval. On the first
// non-empty answer it hands the first identity to bind and stops polling.
// Search errors are retried on the next tick.
func Discover(role string, interval time.Duration, bind func(ctx context.Context, a *agent.Agent, identity string) error) *agent.Ticker {
	return agent.NewTicker(interval, func(ctx context.Context, a *agent.Agent) (bool, error) {
		ids, err := a.Search(ctx, role)
		if err != nil {
			return false, errors.Wrapf(err, "could not search for %s", role)
		}
		if len(ids) == 0 {
			a.Logger().Trace().Str("peer_role", role).Msg("peer not found yet")
			return false, nil
		}

		a.Logger().Info().Str("peer_role", role).Str("peer", ids[0]).Msg("peer found")
		return true, bind(ctx, a, ids[0])
	})
}
