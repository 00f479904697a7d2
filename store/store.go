// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store contains the interface for interacting with a blob key-value
// store.
package store

import (
	"errors"
)

var (
	// ErrNotFound is returned when a blob is not found in the store.
	ErrNotFound = errors.New("blob not found")

	// ErrShutdown is returned when the store has been shut down.
	ErrShutdown = errors.New("store is shutdown")
)

// BlobKV represents a blob key-value store.
type BlobKV interface {
	// Put saves the provided key-value pairs to the store.
	Put(blobs map[string][]byte) error

	// Del deletes the provided blobs from the store.
	Del(keys []string) error

	// Get returns blobs from the store. An entry will not exist in the
	// returned map if for any blobs that are not found. It is the
	// responsibility of the caller to ensure a blob was returned for
	// all provided keys.
	Get(keys []string) (map[string][]byte, error)

	// Iter iterates over all blobs whose key begins with the provided
	// prefix, invoking the callback for each blob. Iteration stops if
	// the callback returns an error and that error is returned to the
	// caller.
	Iter(prefix string, cb func(key string, value []byte) error) error

	// Close shuts the store down.
	Close() error
}
