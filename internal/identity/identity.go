package identity

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Storage keys.
const (
	KeyVisitorID    = "xevon_visitor_id"
	KeyUserName     = "xevon_user_name"
	KeyVisitTracked = "xevon_session_tracked"
)

// DefaultSessionTTL bounds the once-per-session visit flag.
const DefaultSessionTTL = 30 * time.Minute

// Identity reads and lazily creates the visitor's identity in a KV.
type Identity struct {
	KV         KV
	SessionTTL time.Duration

	mu sync.Mutex
}

// New returns an Identity over kv.
func New(kv KV) *Identity {
	return &Identity{KV: kv, SessionTTL: DefaultSessionTTL}
}

// GetOrCreate returns the stored visitor id, generating and storing one on
// first use. Ids look like "v_01j9…": a ULID, so they combine a millisecond
// timestamp with random bits.
func (i *Identity) GetOrCreate() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.KV.Get(KeyVisitorID); ok && id != "" {
		return id
	}
	id := NewVisitorID()
	i.KV.Set(KeyVisitorID, id)
	return id
}

// NewVisitorID returns a fresh visitor id.
func NewVisitorID() string {
	return "v_" + strings.ToLower(ulid.Make().String())
}

// Name returns the display name the visitor gave, if any.
func (i *Identity) Name() (string, bool) {
	n, ok := i.KV.Get(KeyUserName)
	return n, ok && n != ""
}

// SetName stores the visitor's display name.
func (i *Identity) SetName(name string) {
	i.KV.Set(KeyUserName, strings.TrimSpace(name))
}

// VisitTracked reports whether this session's visit was already counted.
func (i *Identity) VisitTracked() bool {
	v, ok := i.KV.Get(KeyVisitTracked)
	return ok && v == "true"
}

// MarkVisitTracked records that this session's visit was counted. On an
// ExpiringKV the flag lapses after SessionTTL.
func (i *Identity) MarkVisitTracked() {
	if ekv, ok := i.KV.(ExpiringKV); ok {
		ttl := i.SessionTTL
		if ttl <= 0 {
			ttl = DefaultSessionTTL
		}
		ekv.SetFor(KeyVisitTracked, "true", ttl)
		return
	}
	i.KV.Set(KeyVisitTracked, "true")
}
