package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"gigchain/core/types"
	"gigchain/native/gigs"
	"gigchain/storage"
)

// Manager provides typed read/write access to the gig table, the id sequence
// and the account balances on top of a raw key-value backend. Records are RLP
// encoded under keccak-hashed keys.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// storedGig mirrors gigs.Gig with plain field types for the RLP codec.
type storedGig struct {
	ID                   uint64
	From                 [20]byte
	To                   [20]byte
	Amount               *big.Int
	Job                  string
	Period               uint64
	Status               uint8
	Satisfaction         uint8
	SatisfactionDisputed uint8
	BlockCreated         uint64
	BlockAccepted        uint64
	BlockDisputed        uint64
	CompletelyPaid       bool
}

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// get reads a raw value, reporting absence instead of an error. Every backend
// surfaces missing keys as a lookup error.
func (m *Manager) get(key []byte) ([]byte, bool) {
	if m == nil || m.db == nil {
		return nil, false
	}
	value, err := m.db.Get(key)
	if err != nil || len(value) == 0 {
		return nil, false
	}
	return value, true
}

// GigPut persists the sanitized gig record.
func (m *Manager) GigPut(g *gigs.Gig) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	sanitized, err := gigs.Sanitize(g)
	if err != nil {
		return err
	}
	stored := storedGig{
		ID:                   sanitized.ID,
		From:                 sanitized.From,
		To:                   sanitized.To,
		Amount:               sanitized.Amount,
		Job:                  sanitized.Job,
		Period:               sanitized.Period,
		Status:               uint8(sanitized.Status),
		Satisfaction:         uint8(sanitized.Satisfaction),
		SatisfactionDisputed: uint8(sanitized.SatisfactionDisputed),
		BlockCreated:         sanitized.BlockCreated,
		BlockAccepted:        sanitized.BlockAccepted,
		BlockDisputed:        sanitized.BlockDisputed,
		CompletelyPaid:       sanitized.CompletelyPaid,
	}
	encoded, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return err
	}
	return m.db.Put(gigRecordKey(sanitized.ID), encoded)
}

// GigGet loads the gig record for the id, reporting false when absent.
func (m *Manager) GigGet(id uint64) (*gigs.Gig, bool, error) {
	data, ok := m.get(gigRecordKey(id))
	if !ok {
		return nil, false, nil
	}
	stored := new(storedGig)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false, err
	}
	gig := &gigs.Gig{
		ID:                   stored.ID,
		From:                 stored.From,
		To:                   stored.To,
		Amount:               stored.Amount,
		Job:                  stored.Job,
		Period:               stored.Period,
		Status:               gigs.Status(stored.Status),
		Satisfaction:         gigs.Satisfaction(stored.Satisfaction),
		SatisfactionDisputed: gigs.Satisfaction(stored.SatisfactionDisputed),
		BlockCreated:         stored.BlockCreated,
		BlockAccepted:        stored.BlockAccepted,
		BlockDisputed:        stored.BlockDisputed,
		CompletelyPaid:       stored.CompletelyPaid,
	}
	return gig, true, nil
}

// GigNextID advances the persistent id sequence and returns the new value.
// The first allocated id is 1; allocation is strictly increasing and gap-free
// relative to successful creations.
func (m *Manager) GigNextID() (uint64, error) {
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("state: database not configured")
	}
	var current uint64
	if data, ok := m.get(gigSequenceKey); ok {
		if err := rlp.DecodeBytes(data, &current); err != nil {
			return 0, err
		}
	}
	next := current + 1
	encoded, err := rlp.EncodeToBytes(next)
	if err != nil {
		return 0, err
	}
	if err := m.db.Put(gigSequenceKey, encoded); err != nil {
		return 0, err
	}
	return next, nil
}

// KVGet decodes an arbitrary namespaced value, reporting whether it existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok := m.get(kvKey(key))
	if !ok {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVPut stores an arbitrary namespaced value.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(kvKey(key), encoded)
}

// GetAccount loads the account for the address, returning a zeroed account
// when the address has never been touched.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	data, ok := m.get(accountKey(addr))
	if !ok {
		return types.NewAccount(), nil
	}
	stored := new(storedAccount)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, err
	}
	account := &types.Account{Nonce: stored.Nonce, Balance: stored.Balance}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return account, nil
}

// PutAccount persists the account record for the address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if account == nil {
		account = types.NewAccount()
	}
	balance := account.Balance
	if balance == nil {
		balance = big.NewInt(0)
	}
	if balance.Sign() < 0 {
		return fmt.Errorf("state: negative account balance")
	}
	encoded, err := rlp.EncodeToBytes(&storedAccount{Nonce: account.Nonce, Balance: balance})
	if err != nil {
		return err
	}
	return m.db.Put(accountKey(addr), encoded)
}
