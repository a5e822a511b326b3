package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *Hasher {
	return NewHasher(bcrypt.MinCost, 2)
}

func TestHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	ctx := context.Background()

	for _, p := range []string{"longenough1", "x", "pässwörd with spaces", "12345678"} {
		digest, err := h.Hash(ctx, p)
		require.NoError(t, err)
		assert.NotEqual(t, p, digest)
		assert.True(t, h.Verify(ctx, p, digest), "password %q", p)
		assert.False(t, h.Verify(ctx, p+"!", digest), "password %q", p)
	}
}

func TestHasher_SaltsEachDigest(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	a, err := h.Hash(context.Background(), "longenough1")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "longenough1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_VerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	for _, digest := range []string{"", "plain", "$2a$10$short"} {
		assert.False(t, h.Verify(context.Background(), "longenough1", digest))
	}
}

func TestHasher_CancelledContext(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost, 1)
	digest, err := h.Hash(context.Background(), "longenough1")
	require.NoError(t, err)

	// hold the only slot so that acquisition has to wait on ctx
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "longenough1")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Verify(ctx, "longenough1", digest))
}

func TestHasher_ConcurrentUse(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := h.Hash(context.Background(), "longenough1")
			if assert.NoError(t, err) {
				assert.True(t, h.Verify(context.Background(), "longenough1", d))
			}
		}()
	}
	wg.Wait()
}

func TestHasher_VerifyDummyAlwaysFalse(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	assert.False(t, h.VerifyDummy(context.Background(), dummyPassword))
	assert.False(t, h.VerifyDummy(context.Background(), "anything"))
}

func TestNewHasher_ClampsArguments(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MaxCost+1, 0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
	assert.True(t, h.sem.TryAcquire(1))
	assert.False(t, h.sem.TryAcquire(1))
}
