package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"entity-sync/core/history"
	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"
	"entity-sync/core/selector"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by operations whose backing store is disabled.
var ErrNotConfigured = errors.New("not configured")

// HistoryLister reads the schema change history.
type HistoryLister interface {
	List(ctx context.Context, entity string, limit int) ([]history.Change, error)
}

// Service initializes the schema for a set of entity descriptors.
type Service struct {
	registry  *mapping.Registry
	engine    *reconcile.Engine
	logger    *zap.Logger
	publisher *Publisher
	history   HistoryLister
	drops     *reconcile.DropSet
	selectors selector.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher publishes remediation scripts when validation finds drift.
func WithPublisher(p *Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithHistory exposes the schema change history.
func WithHistory(h HistoryLister) Option {
	return func(s *Service) { s.history = h }
}

// NewService creates a schema service.
func NewService(registry *mapping.Registry, engine *reconcile.Engine, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		registry: registry,
		engine:   engine,
		logger:   logger,
		drops:    reconcile.NewDropSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks every descriptor against the live schema without changing it.
func (s *Service) Validate(ctx context.Context, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	return s.Apply(ctx, reconcile.Validate, ds...)
}

// Update creates missing schema and adds new columns.
func (s *Service) Update(ctx context.Context, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	return s.Apply(ctx, reconcile.Update, ds...)
}

// Create creates the schema of every descriptor.
func (s *Service) Create(ctx context.Context, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	return s.Apply(ctx, reconcile.Create, ds...)
}

// CreateAndTrackForDrop creates the schema of every descriptor and drops it on Teardown.
func (s *Service) CreateAndTrackForDrop(ctx context.Context, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	return s.Apply(ctx, reconcile.CreateAndTrackForDrop, ds...)
}

// Apply compiles the descriptors and reconciles them under policy.
func (s *Service) Apply(ctx context.Context, policy reconcile.Policy, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	models, err := s.registry.CompileAll(ds...)
	if err != nil {
		return nil, err
	}

	var tracker reconcile.DropTracker
	if policy == reconcile.CreateAndTrackForDrop {
		tracker = s.drops
	}

	results, err := s.engine.Run(ctx, policy, tracker, models...)
	summary := reconcile.Summarize(results)
	s.logger.Info("Schema reconciled",
		zap.Stringer("policy", policy),
		zap.Int("entities", summary.Entities),
		zap.Int("created", summary.Created),
		zap.Int("altered", summary.Altered),
		zap.Int("conflicts", summary.Conflicts),
	)
	for _, r := range results {
		for _, c := range r.Conflicts {
			s.logger.Warn("Column needs manual intervention",
				zap.String("entity", r.Entity),
				zap.String("column", c.Column),
				zap.String("reason", c.Reason),
			)
		}
	}

	var drift *reconcile.SchemaDriftError
	if errors.As(err, &drift) && s.publisher != nil {
		if perr := s.publisher.Publish(ctx, drift.Entity, drift.Statements, drift.Diff.Conflicts()); perr != nil {
			s.logger.Error("Failed to publish remediation script", zap.String("entity", drift.Entity), zap.Error(perr))
		} else {
			s.logger.Info("Published remediation script", zap.String("key", s.publisher.Key(drift.Entity)))
		}
	}
	return results, err
}

// Plan reports what Update would do for the descriptors, or for every
// compiled entity when none are given.
func (s *Service) Plan(ctx context.Context, ds ...*mapping.Descriptor) ([]*reconcile.Result, error) {
	models := s.registry.Models()
	if len(ds) > 0 {
		var err error
		if models, err = s.registry.CompileAll(ds...); err != nil {
			return nil, err
		}
	}
	return s.engine.PlanAll(ctx, models...)
}

// PublishPlan replaces every published script with the scripts of results that need changes.
func (s *Service) PublishPlan(ctx context.Context, results []*reconcile.Result) (int, error) {
	if s.publisher == nil {
		return 0, fmt.Errorf("script publishing: %w", ErrNotConfigured)
	}
	if err := s.publisher.EnsureBucket(ctx); err != nil {
		return 0, err
	}
	if err := s.publisher.Clear(ctx); err != nil {
		return 0, err
	}

	published := 0
	for _, r := range results {
		if len(r.Statements) == 0 && len(r.Conflicts) == 0 {
			continue
		}
		if err := s.publisher.Publish(ctx, r.Entity, r.Statements, r.Conflicts); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}

// Teardown drops every entity created by CreateAndTrackForDrop.
func (s *Service) Teardown(ctx context.Context) error {
	if s.drops.Len() == 0 {
		return nil
	}
	s.logger.Info("Dropping tracked schema", zap.Int("entities", s.drops.Len()))
	return s.engine.Teardown(ctx, s.drops)
}

// Tracked returns the number of entities awaiting Teardown.
func (s *Service) Tracked() int { return s.drops.Len() }

// Entities returns every compiled entity model.
func (s *Service) Entities() []*mapping.EntityModel {
	return s.registry.Models()
}

// Entity finds a compiled model by name, ignoring case.
func (s *Service) Entity(name string) (*mapping.EntityModel, bool) {
	for _, m := range s.registry.Models() {
		if strings.EqualFold(m.Name(), name) {
			return m, true
		}
	}
	return nil, false
}

// ResolvePath resolves a dotted property path such as "address.city" on an entity.
func (s *Service) ResolvePath(m *mapping.EntityModel, dotted string) (selector.PropertyPath, error) {
	names := strings.Split(dotted, ".")
	ref := s.selectors.For(m).Field(names[0])
	for _, name := range names[1:] {
		ref = ref.Field(name)
	}
	return ref.Path()
}

// History lists applied schema changes, newest first.
func (s *Service) History(ctx context.Context, entity string, limit int) ([]history.Change, error) {
	if s.history == nil {
		return nil, fmt.Errorf("history: %w", ErrNotConfigured)
	}
	return s.history.List(ctx, entity, limit)
}

// Publisher returns the configured publisher, or nil.
func (s *Service) Publisher() *Publisher { return s.publisher }
