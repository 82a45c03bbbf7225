// Package cache stores pipeline artifacts between runs.
//
// # Backends
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for multi-instance servers
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// space. [DefaultKeyer] hashes all inputs that influence an entry (source
// text, icon configuration, engine, format) into a fixed-length key;
// [ScopedKeyer] adds a prefix for shared backends.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	// TTLLayout covers engine output, which only depends on the DOT text.
	TTLLayout = 7 * 24 * time.Hour
	// TTLArtifact covers final outputs. Icon files may change on disk
	// without changing the resolver digest, so these expire sooner.
	TTLArtifact = 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies engine output for a DOT document.
	LayoutKey(dotHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a final output for a diagram description.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides DOT text that affect layout.
type LayoutKeyOpts struct {
	Engine string `json:"engine"`
}

// ArtifactKeyOpts are the inputs besides the description that affect an
// artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Name        string  `json:"name,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Engine      string  `json:"engine"`
	IconsDigest string  `json:"icons"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(dotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dotHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sourceHash, opts)
}
