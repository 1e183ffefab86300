package schema

import (
	"context"
	"io"
	"testing"

	"entity-sync/core/reconcile"
	"entity-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	body := Script("Users", []string{"ALTER TABLE users ADD email text;"}, []reconcile.Change{
		{Type: reconcile.ChangeConflict, Column: "age", Reason: "type mismatch", ModelType: "int", LiveType: "text"},
	})
	assert.Equal(t,
		"-- users\n"+
			"-- conflict on age: type mismatch (model int, live text)\n"+
			"ALTER TABLE users ADD email text;\n",
		string(body))
}

func TestPublisherPublish(t *testing.T) {
	client := new(mocks.Client)
	var uploaded string
	client.On("PutObject", mock.Anything, "bucket", "schema/users.cql", mock.Anything, int64(len("-- users\nX;\n")), mock.Anything).
		Run(func(args mock.Arguments) {
			b, _ := io.ReadAll(args.Get(3).(io.Reader))
			uploaded = string(b)
		}).
		Return(minio.UploadInfo{}, nil)

	p := NewPublisher(client, "bucket", "schema/")
	require.NoError(t, p.Publish(context.Background(), "USERS", []string{"X;"}, nil))
	assert.Equal(t, "-- users\nX;\n", uploaded)
}

func TestPublisherEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)

		require.NoError(t, NewPublisher(client, "bucket", "").EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Check Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(false, assert.AnError)

		err := NewPublisher(client, "bucket", "").EnsureBucket(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Create Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "bucket", mock.Anything).Return(assert.AnError)

		err := NewPublisher(client, "bucket", "").EnsureBucket(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestPublisherClear(t *testing.T) {
	t.Run("Nothing Published", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(nil)

		require.NoError(t, NewPublisher(client, "bucket", "schema/").Clear(context.Background()))
		client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Removal Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
			Return(mocks.Listing(minio.ObjectInfo{Key: "schema/users.cql"}, minio.ObjectInfo{Key: "schema/orders.cql"}))

		failed := make(chan minio.RemoveObjectError, 2)
		failed <- minio.RemoveObjectError{ObjectName: "schema/users.cql", Err: assert.AnError}
		failed <- minio.RemoveObjectError{ObjectName: "schema/orders.cql", Err: assert.AnError}
		close(failed)
		client.On("RemoveObjects", mock.Anything, "bucket", mock.Anything, mock.Anything).
			Return((<-chan minio.RemoveObjectError)(failed))

		err := NewPublisher(client, "bucket", "schema/").Clear(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
		assert.ErrorContains(t, err, "schema/users.cql")
		assert.ErrorContains(t, err, "schema/orders.cql")
		assert.Empty(t, failed)
	})

	t.Run("List Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
			Return(mocks.Listing(minio.ObjectInfo{Err: assert.AnError}))

		_, err := NewPublisher(client, "bucket", "schema/").List(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})
}
