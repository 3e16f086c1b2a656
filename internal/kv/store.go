package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrConflict = errors.New("version conflict")
)

// Document is the value stored at a key together with the version token
// the store assigned to it on the last write.
type Document struct {
	Data    []byte
	Version int64
}

// Store is the minimal capability set the messenger core needs from its
// backing store: point read by key, whole-value write by key and
// existence check. PutVersion is a conditional write: the value is
// replaced only when the stored version still equals expected, where
// expected 0 means the key must not exist yet. A mismatch returns
// ErrConflict so a lost update surfaces instead of happening silently.
type Store interface {
	Get(ctx context.Context, key string) (Document, error)
	Put(ctx context.Context, key string, data []byte) error
	PutVersion(ctx context.Context, key string, data []byte, expected int64) error
	Exists(ctx context.Context, key string) (bool, error)
}
