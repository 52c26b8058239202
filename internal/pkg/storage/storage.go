package storage

import (
	"context"
	"time"
)

// DocumentStorage is the minimal surface the transfer document flow needs:
// a presigned upload URL for the club to PUT the file directly, the public
// URL we persist as document metadata, and an existence check.
type DocumentStorage interface {
	// PresignPut returns a presigned PUT URL for the given object key.
	PresignPut(ctx context.Context, key string, expires time.Duration, contentType string) (string, error)

	// Exists checks whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// PublicURL returns the public URL for an object key.
	PublicURL(key string) string
}
