// Package store keeps rendered diagrams available for download for a
// limited time.
//
// Backends:
//   - [MemoryStore]: in-process map, for a single server instance
//   - [FileStore]: JSON files in a directory, surviving restarts
//   - [MongoStore]: a MongoDB collection with a TTL index, for multi-instance
//     deployments
//
// Every stored [Diagram] carries an expiry. Reads of an expired diagram
// fail with [ErrExpired] and remove it; [Store.Cleanup] sweeps the rest.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Sentinel errors for store operations. Both carry error codes, so
// [errors.Is] from this module's errors package matches them too.
var (
	// ErrNotFound is returned when a diagram does not exist.
	ErrNotFound = errors.New(errors.ErrCodeDiagramNotFound, "diagram not found")

	// ErrExpired is returned when a diagram has exceeded its TTL.
	ErrExpired = errors.New(errors.ErrCodeDiagramExpired, "diagram expired")
)

// DefaultTTL is how long a diagram stays downloadable.
const DefaultTTL = 24 * time.Hour

// Diagram is a rendered diagram together with its source.
type Diagram struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description []byte    `json:"description" bson:"description"`
	SVG         []byte    `json:"svg" bson:"svg"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
}

// New creates a diagram record with a fresh id.
func New(name string, description, svg []byte, ttl time.Duration) *Diagram {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Diagram{
		ID:          NewID(),
		Name:        name,
		Description: description,
		SVG:         svg,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// NewID returns a random diagram id.
func NewID() string {
	return uuid.NewString()
}

// IsExpired returns true if the diagram has expired.
func (d *Diagram) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// Filename is the download name for the diagram's SVG.
func (d *Diagram) Filename() string {
	return errors.SafeFilename(d.Name) + ".svg"
}

// Store is the interface for diagram storage backends.
type Store interface {
	// Get retrieves a diagram by id. It returns ErrNotFound for unknown ids
	// and ErrExpired for diagrams past their expiry.
	Get(ctx context.Context, id string) (*Diagram, error)

	// Save stores a diagram, replacing any with the same id.
	Save(ctx context.Context, d *Diagram) error

	// Delete removes a diagram. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired diagrams and reports how many it removed.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}
