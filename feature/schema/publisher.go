package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"entity-sync/core/reconcile"
	"entity-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Publisher writes remediation scripts to object storage, one object per entity.
type Publisher struct {
	client storage.Client
	bucket string
	prefix string
}

// NewPublisher creates a publisher writing under prefix in bucket.
func NewPublisher(client storage.Client, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key of an entity's script.
func (p *Publisher) Key(entity string) string {
	return p.prefix + strings.ToLower(entity) + ".cql"
}

// EnsureBucket creates the bucket when it does not exist.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	return nil
}

// Publish stores the script for one entity, replacing any previous one.
func (p *Publisher) Publish(ctx context.Context, entity string, statements []string, conflicts []reconcile.Change) error {
	body := Script(entity, statements, conflicts)
	_, err := p.client.PutObject(ctx, p.bucket, p.Key(entity), bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("failed to publish script for %s: %w", entity, err)
	}
	return nil
}

// Fetch reads back the script of one entity.
func (p *Publisher) Fetch(ctx context.Context, entity string) ([]byte, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, p.Key(entity), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch script for %s: %w", entity, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read script for %s: %w", entity, err)
	}
	return body, nil
}

// List returns the entities that have a published script, sorted.
func (p *Publisher) List(ctx context.Context) ([]string, error) {
	var entities []string
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: p.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list scripts: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, p.prefix)
		if !strings.HasSuffix(name, ".cql") {
			continue
		}
		entities = append(entities, strings.TrimSuffix(name, ".cql"))
	}
	sort.Strings(entities)
	return entities, nil
}

// Remove deletes the script of one entity.
func (p *Publisher) Remove(ctx context.Context, entity string) error {
	if err := p.client.RemoveObject(ctx, p.bucket, p.Key(entity), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove script for %s: %w", entity, err)
	}
	return nil
}

// Clear deletes every published script.
func (p *Publisher) Clear(ctx context.Context) error {
	entities, err := p.List(ctx)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(entities))
	for _, e := range entities {
		objects <- minio.ObjectInfo{Key: p.Key(e)}
	}
	close(objects)

	// The error channel must be drained or minio's remover goroutine blocks
	var errs []error
	for rerr := range p.client.RemoveObjects(ctx, p.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err))
		}
	}
	return errors.Join(errs...)
}

// Script renders the statements of one entity, with conflicts as comments.
func Script(entity string, statements []string, conflicts []reconcile.Change) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "-- %s\n", strings.ToLower(entity))
	for _, c := range conflicts {
		fmt.Fprintf(&b, "-- conflict on %s: %s (model %s, live %s)\n", c.Column, c.Reason, c.ModelType, c.LiveType)
	}
	for _, s := range statements {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.Bytes()
}
