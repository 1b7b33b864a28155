// Package id generates ULID identifiers for trade records and client
// order IDs. ULIDs sort lexicographically by creation time, so journal
// rows index well in SQLite and stay unique across restarts.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// Monotonic entropy keeps IDs generated within the same
	// millisecond strictly increasing.
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
