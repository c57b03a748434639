package ticketing

import (
	"context"
	"log/slog"
	"slices"

	"github.com/iliyamo/event-ticketing/internal/actor"
)

// catalogKey addresses the one and only catalog instance.
const catalogKey = "all"

type catalogState struct {
	seen map[string]struct{}
	keys []string
}

// Catalog is the singleton set of every initialized event.  Keys are
// never removed; canceled events stay listed.
type Catalog struct {
	reg *actor.Registry[catalogState]
}

func newCatalog(log *slog.Logger) *Catalog {
	return &Catalog{reg: actor.NewRegistry[catalogState]("catalog", func(context.Context, string) (*catalogState, error) {
		return &catalogState{seen: make(map[string]struct{})}, nil
	}, actor.WithLogger(log))}
}

// Register adds eventKey.  Registering a key twice is a no-op.
func (c *Catalog) Register(ctx context.Context, eventKey string) error {
	return c.reg.Invoke(ctx, catalogKey, func(_ context.Context, s *catalogState) error {
		if _, ok := s.seen[eventKey]; ok {
			return nil
		}
		s.seen[eventKey] = struct{}{}
		s.keys = append(s.keys, eventKey)
		return nil
	})
}

// List returns every registered event key in registration order.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	var out []string
	err := c.reg.Invoke(ctx, catalogKey, func(_ context.Context, s *catalogState) error {
		out = slices.Clone(s.keys)
		return nil
	})
	return out, err
}
