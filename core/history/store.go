package history

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"entity-sync/core/reconcile"
	"entity-sync/core/timeuuid"

	"gorm.io/gorm"
)

// Store persists applied statements. It implements reconcile.Recorder.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates or updates the schema_changes table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Change{}); err != nil {
		return fmt.Errorf("failed to migrate history: %w", err)
	}
	return nil
}

// Record stores one applied statement.
func (s *Store) Record(ctx context.Context, st reconcile.AppliedStatement) error {
	at := s.now()
	id, err := timeuuid.New().
		Version(1).
		TimestampMillis(at.UnixMilli()).
		ClockSequence(rand.IntN(1 << 14)).
		Node(rand.Int64N(1 << 48)).
		Build()
	if err != nil {
		return err
	}

	change := Change{
		ID:        id,
		Entity:    st.Entity,
		Kind:      st.Kind.String(),
		Policy:    st.Policy.String(),
		Statement: st.Statement,
		AppliedAt: at,
	}
	if err := s.db.WithContext(ctx).Create(&change).Error; err != nil {
		return fmt.Errorf("failed to record statement for %s: %w", st.Entity, err)
	}
	return nil
}

// List returns the latest changes, newest first. An empty entity lists every entity.
func (s *Store) List(ctx context.Context, entity string, limit int) ([]Change, error) {
	q := s.db.WithContext(ctx).Order("applied_at DESC")
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []Change
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return out, nil
}

var _ reconcile.Recorder = (*Store)(nil)
