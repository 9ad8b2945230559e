// Package store provides the key-value document store used for the
// assistant's memory, task list, and saved notes.
package store

import "context"

// Store is the narrow capability interface handed to handlers and the fact
// fetcher. Get reports absence through the bool, not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, text string) error
}

// Well-known document keys.
const (
	KeyMemory = "memory"
	KeyTasks  = "tasks"
)
