package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"gigchain/native/gigs"
	"gigchain/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func sampleGig(id uint64) *gigs.Gig {
	var from, to [20]byte
	from[0] = 0x11
	to[0] = 0x22
	return &gigs.Gig{
		ID:            id,
		From:          from,
		To:            to,
		Amount:        big.NewInt(975),
		Job:           "cover art",
		Period:        2016,
		Status:        gigs.StatusAccepted,
		Satisfaction:  gigs.SatisfactionAgree,
		BlockCreated:  10,
		BlockAccepted: 12,
		BlockDisputed: 10,
	}
}

func TestGigRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	original := sampleGig(7)
	require.NoError(t, manager.GigPut(original))

	loaded, ok, err := manager.GigGet(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, original.ID, loaded.ID)
	require.Equal(t, original.From, loaded.From)
	require.Equal(t, original.To, loaded.To)
	require.Zero(t, original.Amount.Cmp(loaded.Amount))
	require.Equal(t, original.Job, loaded.Job)
	require.Equal(t, original.Period, loaded.Period)
	require.Equal(t, original.Status, loaded.Status)
	require.Equal(t, original.Satisfaction, loaded.Satisfaction)
	require.Equal(t, original.BlockAccepted, loaded.BlockAccepted)
	require.False(t, loaded.CompletelyPaid)
}

func TestGigGetMissing(t *testing.T) {
	manager := newTestManager(t)
	gig, ok, err := manager.GigGet(404)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, gig)
}

func TestGigPutRejectsInvalidRecord(t *testing.T) {
	manager := newTestManager(t)
	require.Error(t, manager.GigPut(nil))
	require.Error(t, manager.GigPut(&gigs.Gig{ID: 0, Amount: big.NewInt(1)}))
	require.Error(t, manager.GigPut(&gigs.Gig{ID: 1, Amount: big.NewInt(-5)}))
}

func TestGigNextIDSequence(t *testing.T) {
	manager := newTestManager(t)
	for want := uint64(1); want <= 5; want++ {
		id, err := manager.GigNextID()
		require.NoError(t, err)
		require.Equal(t, want, id)
	}
}

func TestGigNextIDSurvivesReopen(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)
	id, err := manager.GigNextID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	reopened := NewManager(db)
	id, err = reopened.GigNextID()
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)
}

func TestAccountRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	addr := []byte{0xAB, 0xCD}

	account, err := manager.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, account.Balance.Sign())

	account.Nonce = 3
	account.Balance = big.NewInt(1_000_000)
	require.NoError(t, manager.PutAccount(addr, account))

	loaded, err := manager.GetAccount(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(3), loaded.Nonce)
	require.Zero(t, loaded.Balance.Cmp(big.NewInt(1_000_000)))
}

func TestPutAccountRejectsNegativeBalance(t *testing.T) {
	manager := newTestManager(t)
	account, err := manager.GetAccount([]byte{0x01})
	require.NoError(t, err)
	account.Balance = big.NewInt(-1)
	require.Error(t, manager.PutAccount([]byte{0x01}, account))
}

func TestKVRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	key := []byte("chain/height")

	var height uint64
	ok, err := manager.KVGet(key, &height)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, manager.KVPut(key, uint64(42)))
	ok, err = manager.KVGet(key, &height)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), height)
}

func TestKeysAreNamespaced(t *testing.T) {
	manager := newTestManager(t)
	// A kv entry and a gig record must never collide even when the raw key
	// bytes line up with the record prefix.
	require.NoError(t, manager.KVPut([]byte("gigs/record/1"), uint64(9)))
	_, ok, err := manager.GigGet(1)
	require.NoError(t, err)
	require.False(t, ok)
}
