// Package repository holds the entry store adapters.
//
// Every adapter is an explicitly constructed instance; callers own Init
// and Close. Entries are append-only.
package repository

import (
	"context"
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Store persists and lists entries.
type Store interface {
	// Init prepares the backing storage (schema, client connection).
	Init(ctx context.Context) error
	// List returns every entry, newest first.
	List(ctx context.Context) ([]model.Entry, error)
	// Append stores a new entry. Reusing an id fails with ErrDuplicate.
	Append(ctx context.Context, e model.Entry) error
	// Close releases the backing storage.
	Close() error
}

// Snapshot is the full entry set pushed to a subscriber, or the error
// that interrupted delivery.
type Snapshot struct {
	Entries []model.Entry
	Err     error
}

// Subscriber is implemented by stores that push changes. The returned
// function stops delivery; no callback runs after it returns.
type Subscriber interface {
	Subscribe(ctx context.Context, fn func(Snapshot)) (func(), error)
}

// SortNewest orders entries newest first in place.
func SortNewest(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Newer(entries[j])
	})
}
