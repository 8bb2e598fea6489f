package core

import (
	"context"
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"gigchain/core/events"
	"gigchain/core/genesis"
	"gigchain/core/state"
	"gigchain/core/types"
	"gigchain/native/gigs"
	"gigchain/storage"
)

var (
	heightKey         = []byte("chain/height")
	genesisAppliedKey = []byte("genesis/applied")
)

// maxEventBacklog bounds the in-memory event log retained for stream replay.
const maxEventBacklog = 4096

// VaultAddress is the deterministic module account holding all escrowed
// funds. No private key exists for it; only the engine moves its balance.
func VaultAddress() [20]byte {
	var addr [20]byte
	copy(addr[:], ethcrypto.Keccak256([]byte("gigs/module/vault"))[12:])
	return addr
}

// EventRecord is one entry of the node's sequenced event log.
type EventRecord struct {
	Sequence   uint64
	Type       string
	Attributes map[string]string
}

type eventPayload interface {
	Event() *types.Event
}

// Node ties the state manager, the gig engine and the externally driven block
// height counter together. Every engine call is serialized behind a single
// mutex, so each operation is one atomic read-modify-write against the store.
type Node struct {
	mu     sync.Mutex
	db     storage.Database
	state  *state.Manager
	gigs   *gigs.Engine
	height uint64

	eventMu  sync.Mutex
	eventLog []EventRecord
	eventSeq uint64
	subs     map[uint64]chan EventRecord
	nextSub  uint64
}

// NewNode assembles a node over the database. The platform treasury and
// arbiter identities come from deployment configuration and are fixed for the
// lifetime of the process.
func NewNode(db storage.Database, platform, arbiter [20]byte) (*Node, error) {
	manager := state.NewManager(db)
	node := &Node{
		db:    db,
		state: manager,
		subs:  make(map[uint64]chan EventRecord),
	}
	var stored uint64
	ok, err := manager.KVGet(heightKey, &stored)
	if err != nil {
		return nil, err
	}
	if ok {
		node.height = stored
	}
	engine := gigs.NewEngine()
	engine.SetState(manager)
	engine.SetVault(VaultAddress())
	engine.SetPlatform(platform)
	engine.SetArbiter(arbiter)
	engine.SetHeightFunc(func() uint64 { return node.height })
	engine.SetEmitter(node)
	node.gigs = engine
	return node, nil
}

// Emit implements events.Emitter: engine events land in the sequenced log and
// fan out to live subscribers. Slow subscribers drop events rather than block
// the operation that produced them.
func (n *Node) Emit(evt events.Event) {
	payload, ok := evt.(eventPayload)
	if !ok || payload.Event() == nil {
		return
	}
	raw := payload.Event()
	attrs := make(map[string]string, len(raw.Attributes))
	for k, v := range raw.Attributes {
		attrs[k] = v
	}
	n.eventMu.Lock()
	n.eventSeq++
	record := EventRecord{Sequence: n.eventSeq, Type: raw.Type, Attributes: attrs}
	n.eventLog = append(n.eventLog, record)
	if len(n.eventLog) > maxEventBacklog {
		n.eventLog = n.eventLog[len(n.eventLog)-maxEventBacklog:]
	}
	for _, sub := range n.subs {
		select {
		case sub <- record:
		default:
		}
	}
	n.eventMu.Unlock()
}

// Events returns log entries with a sequence strictly greater than after.
func (n *Node) Events(after uint64) []EventRecord {
	n.eventMu.Lock()
	defer n.eventMu.Unlock()
	out := make([]EventRecord, 0)
	for _, record := range n.eventLog {
		if record.Sequence > after {
			out = append(out, record)
		}
	}
	return out
}

// EventsSubscribe registers a live event stream. The returned backlog holds
// every retained entry after the cursor; the channel delivers entries emitted
// after subscription. Cancel must be called to release the subscription.
func (n *Node) EventsSubscribe(ctx context.Context, after uint64) (<-chan EventRecord, func(), []EventRecord) {
	n.eventMu.Lock()
	defer n.eventMu.Unlock()
	backlog := make([]EventRecord, 0)
	for _, record := range n.eventLog {
		if record.Sequence > after {
			backlog = append(backlog, record)
		}
	}
	id := n.nextSub
	n.nextSub++
	ch := make(chan EventRecord, 64)
	n.subs[id] = ch
	cancel := func() {
		n.eventMu.Lock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
		n.eventMu.Unlock()
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, backlog
}

// CurrentHeight returns the externally driven block height counter.
func (n *Node) CurrentHeight() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// AdvanceHeight increments and persists the block height counter.
func (n *Node) AdvanceHeight() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	next := n.height + 1
	if err := n.state.KVPut(heightKey, next); err != nil {
		return n.height, err
	}
	n.height = next
	return next, nil
}

// ApplyGenesis funds the allocation entries exactly once per database.
func (n *Node) ApplyGenesis(entries []genesis.Entry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var applied bool
	ok, err := n.state.KVGet(genesisAppliedKey, &applied)
	if err != nil {
		return err
	}
	if ok && applied {
		return nil
	}
	for _, entry := range entries {
		account, err := n.state.GetAccount(entry.Address[:])
		if err != nil {
			return err
		}
		account.Balance = new(big.Int).Add(account.Balance, entry.Balance)
		if err := n.state.PutAccount(entry.Address[:], account); err != nil {
			return err
		}
	}
	return n.state.KVPut(genesisAppliedKey, true)
}

// GetAccount exposes a read-only account projection for the RPC layer.
func (n *Node) GetAccount(addr [20]byte) (*types.Account, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.GetAccount(addr[:])
}

// GigCreate escrows funds and opens a new pending gig.
func (n *Node) GigCreate(caller, to [20]byte, amount *big.Int, job string, period uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.Create(caller, to, amount, job, period)
}

// GigAccept marks the gig accepted by its artist.
func (n *Node) GigAccept(caller [20]byte, id uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.Accept(caller, id)
}

// GigDecline declines the gig and refunds the escrow.
func (n *Node) GigDecline(caller [20]byte, id uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.Decline(caller, id)
}

// GigGet returns the stored gig projection.
func (n *Node) GigGet(id uint64) (*gigs.Gig, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.Get(id)
}

// GigClientVote records the client's satisfaction vote.
func (n *Node) GigClientVote(caller [20]byte, id uint64, vote gigs.Satisfaction) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.VoteSatisfactionAsClient(caller, id, vote)
}

// GigArtistAcceptance records the artist's response to a pending client vote.
func (n *Node) GigArtistAcceptance(caller [20]byte, id uint64, accept bool) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.SatisfactionAcceptanceAsArtist(caller, id, accept)
}

// GigDaoVote records the arbiter's binding vote on a disputed gig.
func (n *Node) GigDaoVote(caller [20]byte, id uint64, vote gigs.Satisfaction) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.DaoVoteSatisfaction(caller, id, vote)
}

// GigSendToDispute lets a participant contest an accepted gig pre-expiry.
func (n *Node) GigSendToDispute(caller [20]byte, id uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.SendToDispute(caller, id)
}

// GigSendToDisputePassedTimeAcceptance force-disputes a stalled vote.
func (n *Node) GigSendToDisputePassedTimeAcceptance(caller [20]byte, id uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.SendToDisputePassedTimeAcceptance(caller, id)
}

// GigCheckIsExpired reports whether the accepted gig outlived its period.
func (n *Node) GigCheckIsExpired(id uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.CheckIsExpired(id)
}

// GigCanRedeem reports whether the principal could redeem the gig right now.
func (n *Node) GigCanRedeem(id uint64, principal [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.CanRedeem(id, principal)
}

// GigRedeemBack refunds a never-accepted gig after its period lapsed.
func (n *Node) GigRedeemBack(caller [20]byte, id uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gigs.RedeemBack(caller, id)
}
