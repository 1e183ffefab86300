package mocks

import (
	"context"

	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Transport is a mock implementation of reconcile.Transport
type Transport struct {
	mock.Mock
}

func (m *Transport) FetchCatalog(ctx context.Context, kind mapping.Kind, name string) (*reconcile.CatalogSnapshot, error) {
	args := m.Called(ctx, kind, name)
	if snap, ok := args.Get(0).(*reconcile.CatalogSnapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Transport) Apply(ctx context.Context, statement string) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

// Recorder is a mock implementation of reconcile.Recorder
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Record(ctx context.Context, s reconcile.AppliedStatement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
