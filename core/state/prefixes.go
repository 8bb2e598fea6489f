package state

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	gigRecordPrefix = []byte("gigs/record/")
	gigSequenceKey  = ethcrypto.Keccak256([]byte("gigs/sequence"))
	accountPrefix   = []byte("accounts/")
	kvPrefix        = []byte("kv/")
)

func gigRecordKey(id uint64) []byte {
	buf := make([]byte, len(gigRecordPrefix)+8)
	copy(buf, gigRecordPrefix)
	binary.BigEndian.PutUint64(buf[len(gigRecordPrefix):], id)
	return ethcrypto.Keccak256(buf)
}

func kvKey(key []byte) []byte {
	buf := make([]byte, len(kvPrefix)+len(key))
	copy(buf, kvPrefix)
	copy(buf[len(kvPrefix):], key)
	return ethcrypto.Keccak256(buf)
}

func accountKey(addr []byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr)
	return ethcrypto.Keccak256(buf)
}
