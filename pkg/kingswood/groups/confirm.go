package groups

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// confirmer issues single-use, expiring tokens for destructive actions.
// The first delete call receives a token; the second call must present it.
// Tokens are scoped to one group and one teacher so a token issued for one
// deletion cannot confirm another.
type confirmer struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]pendingDelete
}

type pendingDelete struct {
	groupID   uint
	teacherID uint
	expires   time.Time
}

func newConfirmer(ttl time.Duration) *confirmer {
	return &confirmer{ttl: ttl, pending: make(map[string]pendingDelete)}
}

// issue creates a confirmation token for deleting the given group
func (cf *confirmer) issue(groupID, teacherID uint) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.sweepLocked()
	cf.pending[token] = pendingDelete{
		groupID:   groupID,
		teacherID: teacherID,
		expires:   time.Now().Add(cf.ttl),
	}
	return token, nil
}

// redeem consumes the token if it matches the group and teacher and has not
// expired. A token is single-use whether or not the deletion succeeds.
func (cf *confirmer) redeem(token string, groupID, teacherID uint) bool {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	p, ok := cf.pending[token]
	if !ok {
		return false
	}
	delete(cf.pending, token)
	if time.Now().After(p.expires) {
		return false
	}
	return p.groupID == groupID && p.teacherID == teacherID
}

// sweepLocked drops expired tokens; caller holds the lock
func (cf *confirmer) sweepLocked() {
	now := time.Now()
	for token, p := range cf.pending {
		if now.After(p.expires) {
			delete(cf.pending, token)
		}
	}
}
