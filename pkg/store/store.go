// Package store keeps built diagrams so the server can answer render and
// hover requests after the build request returned.
//
// [MemoryStore] serves single-process deployments and tests; [MongoStore]
// persists records across restarts and replicas.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
)

// Record is one stored diagram together with the document it was built from.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Source    []byte          `json:"-"`
	Diagram   *layout.Diagram `json:"diagram"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists records by ID.
type Store interface {
	// Put stores rec, assigning ID and CreatedAt when unset, and returns the ID.
	Put(ctx context.Context, rec *Record) (string, error)
	// Get returns the record with id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes id. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// NewID returns a fresh record ID.
func NewID() string { return uuid.NewString() }

// ValidateID rejects IDs that are not UUIDs before they reach a backend.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeNotFound, "diagram %q not found", id)
	}
	return nil
}

func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "diagram %q not found", id)
}
