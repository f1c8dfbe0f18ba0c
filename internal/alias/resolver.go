package alias

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/textutil"
)

// DefaultDiscoveryLimit is the maximum number of discovered aliases appended.
const DefaultDiscoveryLimit = 5

// Discoverer looks up name variants for an entity from an external service.
// Implementations may fail; the Resolver treats any error as "no aliases".
type Discoverer interface {
	DiscoverAliases(ctx context.Context, name string, limit int) ([]string, error)
}

// Resolver produces alias lists. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	seeds          map[string][]string
	discoverer     Discoverer
	discoveryLimit int
	logger         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrides merges name-to-aliases overrides into the seed mapping.
// Keys are matched case-insensitively; an override replaces the built-in
// entry for the same name.
func WithOverrides(overrides map[string][]string) Option {
	return func(r *Resolver) {
		for name, aliases := range overrides {
			key := textutil.LowerKey(name)
			if key == "" {
				continue
			}
			r.seeds[key] = append([]string(nil), aliases...)
		}
	}
}

// WithoutBuiltinSeeds starts from an empty seed mapping.
// It must come before WithOverrides to keep the overrides.
func WithoutBuiltinSeeds() Option {
	return func(r *Resolver) {
		r.seeds = make(map[string][]string)
	}
}

// WithDiscoverer sets the external alias discovery service.
func WithDiscoverer(d Discoverer) Option {
	return func(r *Resolver) {
		r.discoverer = d
	}
}

// WithDiscoveryLimit changes how many discovered aliases may be appended.
func WithDiscoveryLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.discoveryLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver seeded with the built-in aliases.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		seeds:          BuiltinSeeds(),
		discoveryLimit: DefaultDiscoveryLimit,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seeds returns the seed aliases for name, or nil when none are known.
func (r *Resolver) Seeds(name string) []string {
	return r.seeds[textutil.LowerKey(name)]
}

// Resolve returns the alias list for name. The only error is
// model.ErrEmptyEntity; discovery failures are logged and ignored.
func (r *Resolver) Resolve(ctx context.Context, name string, discover bool) ([]string, error) {
	name, err := model.NormalizeEntity(name)
	if err != nil {
		return nil, err
	}

	set := newAliasSet(name)
	for _, a := range r.Seeds(name) {
		set.add(a)
	}

	if discover && r.discoverer != nil {
		for _, a := range r.discover(ctx, name) {
			set.add(a)
		}
	}

	return set.items, nil
}

// discover calls the Discoverer and caps its output. It never fails.
func (r *Resolver) discover(ctx context.Context, name string) []string {
	found, err := r.discoverer.DiscoverAliases(ctx, name, r.discoveryLimit)
	if err != nil {
		r.logger.Debug("alias discovery failed", "entity", name, "error", err)
		return nil
	}
	if len(found) > r.discoveryLimit {
		found = found[:r.discoveryLimit]
	}
	return found
}

// aliasSet keeps first-seen order with exact-match dedupe.
type aliasSet struct {
	seen  map[string]struct{}
	items []string
}

func newAliasSet(first string) *aliasSet {
	s := &aliasSet{seen: make(map[string]struct{})}
	s.add(first)
	return s
}

func (s *aliasSet) add(a string) {
	a = strings.TrimSpace(a)
	if a == "" {
		return
	}
	if _, ok := s.seen[a]; ok {
		return
	}
	s.seen[a] = struct{}{}
	s.items = append(s.items, a)
}
