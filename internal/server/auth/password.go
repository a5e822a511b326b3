package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/userdir/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// dummyPassword is hashed once and verified against whenever a login names
// an unknown account, so both paths cost one bcrypt comparison.
const dummyPassword = "userdir-dummy-password"

// Hasher hashes and verifies passwords with bcrypt. At most `workers`
// bcrypt operations run at the same time; callers wait on ctx for a slot.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy func() string
}

// NewHasher returns a Hasher with the given bcrypt cost. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers < 1 {
		workers = 1
	}
	h := &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}
	h.dummy = sync.OnceValue(func() string {
		b, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), h.cost)
		if err != nil {
			return ""
		}
		return string(b)
	})
	return h
}

// Hash returns a salted bcrypt digest of plaintext. It fails with
// common.ErrHashing on internal errors and with ctx.Err() if no worker slot
// frees up before ctx is done.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches digest. A mismatch, a malformed
// digest and a cancelled ctx all yield false.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyDummy spends the same effort as Verify against a throwaway digest.
// The result is always false.
func (h *Hasher) VerifyDummy(ctx context.Context, plaintext string) bool {
	_ = h.Verify(ctx, plaintext, h.dummy())
	return false
}
