package profile

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
)

func TestNewSeedStoreLoadsValidBook(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	p, ok := store.Lookup("Rahul")
	require.True(t, ok)
	assert.Equal(t, "Rahul", p.Name)
	assert.Equal(t, 780, p.CreditScore)
	assert.Equal(t, int64(300000), p.PreApprovedLimit)
	assert.Equal(t, int64(60000), p.MonthlySalary)
	assert.Equal(t, "+91-9820011223", p.Phone)
	assert.Equal(t, "rahul.s32@example.net", p.Email)
	assert.True(t, p.KYCVerified)
	assert.True(t, p.Seeded)
}

func TestLookupCaseInsensitive(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	for _, name := range []string{"meera", "MEERA", " Meera "} {
		p, ok := store.Lookup(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, "Meera", p.Name)
	}

	_, ok := store.Lookup("Nonexistent")
	assert.False(t, ok)
}

func TestLookupReturnsCopy(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	p1, ok := store.Lookup("Priya")
	require.True(t, ok)
	p1.CreditScore = 1

	p2, ok := store.Lookup("Priya")
	require.True(t, ok)
	assert.Equal(t, 820, p2.CreditScore)
}

func TestVerifyKYC(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	p, ok := store.Lookup("Arjun")
	require.True(t, ok)
	require.False(t, p.KYCVerified)

	updated, err := store.VerifyKYC("arjun")
	require.NoError(t, err)
	assert.True(t, updated.KYCVerified)

	// flip persists and repeating is a no-op
	again, err := store.VerifyKYC("Arjun")
	require.NoError(t, err)
	assert.True(t, again.KYCVerified)

	p, ok = store.Lookup("Arjun")
	require.True(t, ok)
	assert.True(t, p.KYCVerified)
}

func TestVerifyKYCUnknownApplicant(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = store.VerifyKYC("Nonexistent")
	assert.Error(t, err)
}

func TestVerifyKYCConcurrent(t *testing.T) {
	store, err := NewSeedStore(logger.NewTestLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.VerifyKYC("Vikram")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, ok := store.Lookup("Vikram")
	require.True(t, ok)
	assert.True(t, p.KYCVerified)
}
