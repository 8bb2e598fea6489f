package gigs

import (
	"errors"
	"fmt"
	"math/big"

	"gigchain/core/events"
	"gigchain/core/types"
)

var (
	errNilState    = errors.New("gigs engine: state not configured")
	errNilVault    = errors.New("gigs engine: escrow vault not configured")
	errNilPlatform = errors.New("gigs engine: platform treasury not configured")
)

// CommissionBps is the fixed platform fee applied to the gross price at
// creation: 2.5%. The commission rounds down and the escrowed amount is the
// remainder, so both legs always sum exactly to the gross price.
const CommissionBps = 250

type engineState interface {
	GigPut(*Gig) error
	GigGet(id uint64) (*Gig, bool, error)
	GigNextID() (uint64, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type gigEvent struct {
	evt *types.Event
}

func (e gigEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e gigEvent) Event() *types.Event { return e.evt }

// Engine wires the gig marketplace business logic with external state, the
// block height counter and an event emitter. Each entry point validates all
// preconditions before mutating anything, so a failed call leaves zero
// transfers and zero record writes behind.
type Engine struct {
	state    engineState
	emitter  events.Emitter
	vault    [20]byte
	platform [20]byte
	arbiter  [20]byte
	heightFn func() uint64
}

// NewEngine creates a gig engine with a no-op emitter. Callers must configure
// the state backend, addresses and height source before use.
func NewEngine() *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		heightFn: func() uint64 { return 0 },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetVault configures the address holding escrowed funds.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetPlatform configures the address that receives the creation commission.
func (e *Engine) SetPlatform(addr [20]byte) { e.platform = addr }

// SetArbiter configures the DAO identity whose dispute votes are final.
func (e *Engine) SetArbiter(addr [20]byte) { e.arbiter = addr }

// SetHeightFunc overrides the block height source used for every time window
// check. The engine never consults a wall clock.
func (e *Engine) SetHeightFunc(height func() uint64) {
	if height == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = height
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(gigEvent{evt: event})
}

func (e *Engine) height() uint64 {
	if e == nil || e.heightFn == nil {
		return 0
	}
	return e.heightFn()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return types.NewAccount()
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

func (e *Engine) loadGig(id uint64) (*Gig, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	gig, ok, err := e.state.GigGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return gig, nil
}

func (e *Engine) storeGig(g *Gig) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.GigPut(g)
}

// credit is one leg of a settlement: value moving to a recipient account.
type credit struct {
	to     [20]byte
	amount *big.Int
}

// settle debits the full sum of credits from a single account and applies all
// credit legs as one read-modify-write batch. Either every leg applies or the
// call fails before any account is written, which keeps "mutate record plus
// issue transfers" atomic relative to the store.
func (e *Engine) settle(from [20]byte, legs []credit) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	total := big.NewInt(0)
	applied := make([]credit, 0, len(legs))
	for _, leg := range legs {
		amt := cloneBigInt(leg.amount)
		if amt.Sign() < 0 {
			return fmt.Errorf("gigs: negative transfer amount")
		}
		if amt.Sign() == 0 {
			continue
		}
		total.Add(total, amt)
		applied = append(applied, credit{to: leg.to, amount: amt})
	}
	if total.Sign() == 0 {
		return nil
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	if fromAcc.Balance.Cmp(total) < 0 {
		return fmt.Errorf("gigs: insufficient balance")
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, total)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	for _, leg := range applied {
		toAcc, err := e.state.GetAccount(leg.to[:])
		if err != nil {
			return err
		}
		toAcc = ensureAccount(toAcc)
		toAcc.Balance = new(big.Int).Add(toAcc.Balance, leg.amount)
		if err := e.state.PutAccount(leg.to[:], toAcc); err != nil {
			return err
		}
	}
	return nil
}

// CommissionAmount returns the platform commission for a gross price, rounded
// down. The escrowed amount is always gross minus commission.
func CommissionAmount(gross *big.Int) *big.Int {
	fee := new(big.Int).Mul(cloneBigInt(gross), big.NewInt(CommissionBps))
	return fee.Div(fee, big.NewInt(10_000))
}

// Create escrows the net price with the module vault, pays the platform its
// commission and persists a new pending gig owned by the caller as client.
// Returns the freshly allocated id.
func (e *Engine) Create(caller, to [20]byte, amount *big.Int, job string, period uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if e.vault == ([20]byte{}) {
		return 0, errNilVault
	}
	if e.platform == ([20]byte{}) {
		return 0, errNilPlatform
	}
	gross := cloneBigInt(amount)
	if gross.Sign() <= 0 {
		return 0, fmt.Errorf("gigs: amount must be positive")
	}
	if period == 0 {
		return 0, fmt.Errorf("gigs: period must be positive")
	}
	if len(job) > MaxJobLength {
		return 0, fmt.Errorf("gigs: job label exceeds %d characters", MaxJobLength)
	}
	commission := CommissionAmount(gross)
	escrowed := new(big.Int).Sub(gross, commission)
	if err := e.settle(caller, []credit{
		{to: e.vault, amount: escrowed},
		{to: e.platform, amount: commission},
	}); err != nil {
		return 0, err
	}
	id, err := e.state.GigNextID()
	if err != nil {
		return 0, err
	}
	height := e.height()
	gig := &Gig{
		ID:                   id,
		From:                 caller,
		To:                   to,
		Amount:               escrowed,
		Job:                  job,
		Period:               period,
		Status:               StatusPending,
		Satisfaction:         SatisfactionInitialized,
		SatisfactionDisputed: SatisfactionInitialized,
		BlockCreated:         height,
		BlockAccepted:        height,
		BlockDisputed:        height,
	}
	if err := e.storeGig(gig); err != nil {
		return 0, err
	}
	e.emit(NewCreatedEvent(gig))
	return id, nil
}

// Accept marks a pending gig as accepted by its artist and starts the work
// period clock.
func (e *Engine) Accept(caller [20]byte, id uint64) (uint64, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return 0, err
	}
	if gig.To != caller {
		return 0, ErrNotArtist
	}
	if gig.Status != StatusPending {
		return 0, ErrNotPending
	}
	gig.Status = StatusAccepted
	gig.BlockAccepted = e.height()
	if err := e.storeGig(gig); err != nil {
		return 0, err
	}
	e.emit(NewAcceptedEvent(gig))
	return id, nil
}

// Decline lets the artist turn down a pending gig, refunding the full escrowed
// amount to the client. The commission paid at creation is not returned.
func (e *Engine) Decline(caller [20]byte, id uint64) (uint64, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return 0, err
	}
	if gig.To != caller {
		return 0, ErrNotArtist
	}
	if gig.Status != StatusPending {
		return 0, ErrNotPending
	}
	if err := e.settle(e.vault, []credit{{to: gig.From, amount: gig.Amount}}); err != nil {
		return 0, err
	}
	gig.Status = StatusDeclined
	if err := e.storeGig(gig); err != nil {
		return 0, err
	}
	e.emit(NewDeclinedEvent(gig))
	return id, nil
}

// RedeemBack refunds the escrowed amount to the client of a gig that the
// artist never accepted within the work period. The transition latches: a
// second redemption attempt fails.
func (e *Engine) RedeemBack(caller [20]byte, id uint64) (bool, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.From != caller {
		return false, ErrNotClient
	}
	if gig.Status != StatusPending || e.height() <= gig.BlockCreated+gig.Period {
		return false, ErrNotRedeemable
	}
	if err := e.settle(e.vault, []credit{{to: gig.From, amount: gig.Amount}}); err != nil {
		return false, err
	}
	gig.Status = StatusRedeemed
	if err := e.storeGig(gig); err != nil {
		return false, err
	}
	e.emit(NewRedeemedEvent(gig))
	return true, nil
}

// resolvePayout splits the escrowed amount between artist and client according
// to the resolved vote, marks the gig completed and latches the payment. The
// artist share rounds down; the client refund is the remainder, so the two
// legs always sum exactly to the escrowed amount. Zero-amount legs are
// omitted by settle.
func (e *Engine) resolvePayout(gig *Gig, vote Satisfaction) error {
	if gig.CompletelyPaid {
		return fmt.Errorf("gigs: payout already executed for gig %d", gig.ID)
	}
	total := cloneBigInt(gig.Amount)
	artistShare := new(big.Int).Mul(total, new(big.Int).SetUint64(uint64(vote.ArtistShareBps())))
	artistShare.Div(artistShare, big.NewInt(10_000))
	clientShare := new(big.Int).Sub(total, artistShare)
	if err := e.settle(e.vault, []credit{
		{to: gig.To, amount: artistShare},
		{to: gig.From, amount: clientShare},
	}); err != nil {
		return err
	}
	gig.Status = StatusCompleted
	gig.CompletelyPaid = true
	if err := e.storeGig(gig); err != nil {
		return err
	}
	e.emit(NewCompletedEvent(gig, vote))
	return nil
}
