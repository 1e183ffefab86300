package reconcile

import (
	"context"
	"errors"
	"fmt"

	"entity-sync/core/mapping"

	"go.uber.org/zap"
)

// Engine reconciles compiled models with the live schema reachable through a Transport.
// It holds no locks and may be used concurrently for different entities.
type Engine struct {
	transport Transport
	opts      Options
	logger    *zap.Logger
	recorder  Recorder
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithOptions sets the reconciliation options.
func WithOptions(opts Options) EngineOption {
	return func(e *Engine) { e.opts = opts }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder registers a recorder for applied statements.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates an engine over t.
func NewEngine(t Transport, opts ...EngineOption) *Engine {
	e := &Engine{transport: t, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// Reconcile applies policy to a single model. The tracker is required for
// CreateAndTrackForDrop and ignored otherwise.
func (e *Engine) Reconcile(ctx context.Context, policy Policy, m *mapping.EntityModel, tracker DropTracker) (*Result, error) {
	if m.Kind() == mapping.Tuple {
		res := newResult(m, policy)
		res.Skipped = true
		return res, nil
	}

	switch policy {
	case Create, CreateAndTrackForDrop:
		if policy == CreateAndTrackForDrop && tracker == nil {
			return nil, errors.New("create_and_track_for_drop requires a drop tracker")
		}
		res, err := e.create(ctx, policy, m)
		if err != nil {
			return res, err
		}
		if policy == CreateAndTrackForDrop {
			tracker.Track(m)
		}
		return res, nil

	case Validate, Update:
		return e.reconcileExisting(ctx, policy, m)

	default:
		return nil, fmt.Errorf("unknown reconciliation policy %d", policy)
	}
}

func (e *Engine) reconcileExisting(ctx context.Context, policy Policy, m *mapping.EntityModel) (*Result, error) {
	live, err := e.transport.FetchCatalog(ctx, m.Kind(), m.Name())
	if err != nil {
		return nil, err
	}

	if live == nil {
		if policy == Validate {
			return nil, &SchemaMissingError{Entity: m.Name(), Kind: m.Kind()}
		}
		res, err := e.create(ctx, policy, m)
		if res != nil {
			res.Missing = true
		}
		return res, err
	}

	res := newResult(m, policy)
	res.Diff = actionable(Diff(m, live), m.Kind(), e.opts)
	res.Statements = AlterStatements(m, res.Diff, e.opts)
	res.Conflicts = res.Diff.Conflicts()

	if res.Diff.IsEmpty() {
		return res, nil
	}

	if policy == Validate {
		return res, &SchemaDriftError{Entity: m.Name(), Diff: res.Diff, Statements: res.Statements}
	}

	for _, c := range res.Conflicts {
		e.logger.Warn("Column requires manual intervention",
			zap.String("entity", m.Name()),
			zap.String("column", c.Column),
			zap.String("model_type", c.ModelType),
			zap.String("live_type", c.LiveType),
			zap.String("reason", c.Reason),
		)
	}

	if err := e.apply(ctx, policy, m, res, res.Statements); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) create(ctx context.Context, policy Policy, m *mapping.EntityModel) (*Result, error) {
	stmt, err := CreateStatement(m)
	if err != nil {
		return nil, err
	}
	res := newResult(m, policy)
	res.Statements = []string{stmt}
	if err := e.apply(ctx, policy, m, res, res.Statements); err != nil {
		return res, err
	}
	res.Created = true
	return res, nil
}

func (e *Engine) apply(ctx context.Context, policy Policy, m *mapping.EntityModel, res *Result, statements []string) error {
	for _, stmt := range statements {
		if e.opts.ShowStatements {
			e.logger.Info("Applying statement", zap.String("entity", m.Name()), zap.String("cql", stmt))
		}
		if err := e.transport.Apply(ctx, stmt); err != nil {
			return err
		}
		res.Applied++
		e.record(ctx, AppliedStatement{Entity: m.Name(), Kind: m.Kind(), Policy: policy, Statement: stmt})
	}
	return nil
}

// record passes an applied statement to the recorder. Failures are logged and
// do not fail the reconciliation, since the statement already took effect.
func (e *Engine) record(ctx context.Context, s AppliedStatement) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, s); err != nil {
		e.logger.Error("Failed to record applied statement",
			zap.String("entity", s.Entity),
			zap.String("cql", s.Statement),
			zap.Error(err),
		)
	}
}

// Validate checks every model, in dependency order, and stops at the first failure.
func (e *Engine) Validate(ctx context.Context, models ...*mapping.EntityModel) ([]*Result, error) {
	return e.run(ctx, Validate, nil, models)
}

// Update creates missing schema and applies additive changes for every model.
func (e *Engine) Update(ctx context.Context, models ...*mapping.EntityModel) ([]*Result, error) {
	return e.run(ctx, Update, nil, models)
}

// Create issues creation statements for every model.
func (e *Engine) Create(ctx context.Context, models ...*mapping.EntityModel) ([]*Result, error) {
	return e.run(ctx, Create, nil, models)
}

// CreateAndTrackForDrop creates every model and registers each with tracker.
func (e *Engine) CreateAndTrackForDrop(ctx context.Context, tracker DropTracker, models ...*mapping.EntityModel) ([]*Result, error) {
	return e.run(ctx, CreateAndTrackForDrop, tracker, models)
}

// Run applies policy to every model in dependency order.
func (e *Engine) Run(ctx context.Context, policy Policy, tracker DropTracker, models ...*mapping.EntityModel) ([]*Result, error) {
	return e.run(ctx, policy, tracker, models)
}

func (e *Engine) run(ctx context.Context, policy Policy, tracker DropTracker, models []*mapping.EntityModel) ([]*Result, error) {
	ordered := orderForCreation(models)
	results := make([]*Result, 0, len(ordered))
	for _, m := range ordered {
		res, err := e.Reconcile(ctx, policy, m, tracker)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
		e.logger.Debug("Reconciled entity",
			zap.String("entity", m.Name()),
			zap.Stringer("policy", policy),
			zap.Int("statements", len(res.Statements)),
			zap.Int("conflicts", len(res.Conflicts)),
		)
	}
	return results, nil
}

// Teardown drops every entity tracked by set, tables before the types they use.
// Entities dropped successfully are removed from the set; the first failure stops
// the teardown and is returned unchanged.
func (e *Engine) Teardown(ctx context.Context, set *DropSet) error {
	for _, m := range orderForTeardown(set.Models()) {
		stmt, err := DropStatement(m)
		if err != nil {
			set.Forget(m)
			continue
		}
		if e.opts.ShowStatements {
			e.logger.Info("Applying statement", zap.String("entity", m.Name()), zap.String("cql", stmt))
		}
		if err := e.transport.Apply(ctx, stmt); err != nil {
			return err
		}
		set.Forget(m)
		e.record(ctx, AppliedStatement{Entity: m.Name(), Kind: m.Kind(), Policy: CreateAndTrackForDrop, Statement: stmt})
	}
	return nil
}
