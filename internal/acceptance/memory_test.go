package acceptance_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captive-responder-go/internal/acceptance"
)

func TestMemoryStore_NotAcceptedByDefault(t *testing.T) {
	st := acceptance.NewMemoryStore(0)

	ok, err := st.IsAccepted(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_AcceptThenLookup(t *testing.T) {
	st := acceptance.NewMemoryStore(0)
	ctx := context.Background()

	rec, err := st.Accept(ctx, "192.0.2.1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", rec.Key)
	assert.Equal(t, "fp-1", rec.Fingerprint)
	assert.False(t, rec.AcceptedAt.IsZero())

	ok, err := st.IsAccepted(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.IsAccepted(ctx, "192.0.2.2")
	require.NoError(t, err)
	assert.False(t, ok, "other keys stay captive")
}

func TestMemoryStore_ReacceptOverwrites(t *testing.T) {
	st := acceptance.NewMemoryStore(0)
	ctx := context.Background()

	first, err := st.Accept(ctx, "192.0.2.1", "fp-1")
	require.NoError(t, err)

	second, err := st.Accept(ctx, "192.0.2.1", "fp-2")
	require.NoError(t, err)

	assert.Equal(t, "fp-2", second.Fingerprint)
	assert.False(t, second.AcceptedAt.Before(first.AcceptedAt))

	ok, err := st.IsAccepted(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_EmptyKeyIsSharedIdentity(t *testing.T) {
	st := acceptance.NewMemoryStore(0)
	ctx := context.Background()

	_, err := st.Accept(ctx, "", "")
	require.NoError(t, err)

	ok, err := st.IsAccepted(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	st := acceptance.NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	_, err := st.Accept(ctx, "192.0.2.1", "")
	require.NoError(t, err)

	ok, _ := st.IsAccepted(ctx, "192.0.2.1")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	ok, _ = st.IsAccepted(ctx, "192.0.2.1")
	assert.False(t, ok, "record should lapse after ttl")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	st := acceptance.NewMemoryStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		key := fmt.Sprintf("10.0.0.%d", i)
		go func() {
			defer wg.Done()
			_, _ = st.Accept(ctx, key, "fp")
		}()
		go func() {
			defer wg.Done()
			_, _ = st.IsAccepted(ctx, key)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		ok, err := st.IsAccepted(ctx, fmt.Sprintf("10.0.0.%d", i))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
