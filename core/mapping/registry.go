package mapping

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry compiles descriptors into models and keeps one model per descriptor identity.
// It is safe for concurrent use: when several goroutines compile the same descriptor
// for the first time, exactly one compilation runs and all of them receive its model.
// Failed compilations are not cached.
type Registry struct {
	mu        sync.RWMutex
	models    map[uuid.UUID]*EntityModel
	sf        singleflight.Group
	resolvers []TypeResolver
	logger    *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report compilations.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithResolvers registers additional resolvers, consulted before the defaults.
func WithResolvers(rs ...TypeResolver) Option {
	return func(r *Registry) {
		r.resolvers = append(append([]TypeResolver(nil), rs...), r.resolvers...)
	}
}

// NewRegistry creates an empty registry with the default resolvers.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		models:    make(map[uuid.UUID]*EntityModel),
		resolvers: DefaultResolvers(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile returns the model for d, compiling it on first use.
func (r *Registry) Compile(d *Descriptor) (*EntityModel, error) {
	if m, ok := r.Lookup(d); ok {
		return m, nil
	}

	result, err, _ := r.sf.Do(d.id.String(), func() (interface{}, error) {
		// Double-check after winning the flight
		if m, ok := r.Lookup(d); ok {
			return m, nil
		}

		m, err := r.build(d)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.models[d.id] = m
		r.mu.Unlock()

		r.logger.Debug("Compiled entity model",
			zap.String("entity", m.name),
			zap.Stringer("kind", m.kind),
			zap.Int("properties", len(m.properties)),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*EntityModel), nil
}

// CompileAll compiles every descriptor, stopping at the first failure.
func (r *Registry) CompileAll(ds ...*Descriptor) ([]*EntityModel, error) {
	out := make([]*EntityModel, 0, len(ds))
	for _, d := range ds {
		m, err := r.Compile(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Lookup returns the already compiled model for d.
func (r *Registry) Lookup(d *Descriptor) (*EntityModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[d.id]
	return m, ok
}

// Models returns every compiled model ordered by name.
func (r *Registry) Models() []*EntityModel {
	r.mu.RLock()
	out := make([]*EntityModel, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].kind < out[j].kind
	})
	return out
}
