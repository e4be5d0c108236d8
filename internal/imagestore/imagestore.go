// Package imagestore keeps report photos under opaque keys in S3, on local
// disk, or in memory.
package imagestore

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("imagestore: invalid key")

type Object struct {
	Key     string
	ModTime time.Time
}

// Store is implemented by S3, Disk and Memory. Delete of a missing key
// succeeds.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Object, error)
}

// checkKey rejects keys that could escape a flat namespace.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return ErrInvalidKey
	}
	return nil
}
