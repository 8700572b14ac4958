// Package kv is the session persistence layer: a string-keyed store of
// JSON-encoded blobs with an atomic multi-key batch primitive.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Op is a single write in an atomic batch.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

func SetOp(key string, value []byte) Op {
	return Op{Key: key, Value: value}
}

func DeleteOp(key string) Op {
	return Op{Key: key, Delete: true}
}

// Store is the persistence capability the cart and order services depend on.
// Apply commits every op or none; callers use it where partial writes would
// leave session state ambiguous.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Apply(ctx context.Context, ops []Op) error
}

const keyNamespace = "shopmart"

// SessionKey builds the namespaced key for one field of a session's state.
func SessionKey(sessionID, field string) string {
	return fmt.Sprintf("%s:session:%s:%s", keyNamespace, sessionID, field)
}
