// Package storage is the object store used to publish schema remediation scripts.
//
// Client is the narrow slice of the MinIO API the publisher needs, so tests can
// substitute core/storage/mocks. NewClient accepts endpoints with or without a
// scheme and applies TimeoutSeconds to dial, TLS and first-byte waits; the
// connection itself is lazy, so the first bucket call is the real health check.
// Both AWS S3 and self-hosted MinIO work.
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
