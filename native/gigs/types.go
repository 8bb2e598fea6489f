package gigs

import (
	"fmt"
	"math/big"
	"strings"
)

// Status represents the lifecycle states of a gig. Declined and Redeemed are
// refund-only terminal markers and are deliberately distinct from Completed,
// which always implies a satisfaction-resolved payout.
type Status uint8

const (
	StatusPending Status = iota
	StatusAccepted
	StatusDisputed
	StatusCompleted
	StatusDeclined
	StatusRedeemed
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDisputed, StatusCompleted, StatusDeclined, StatusRedeemed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further mutation of the gig is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDeclined, StatusRedeemed:
		return true
	default:
		return false
	}
}

// String returns the canonical wire form used by the query layer and events.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusDisputed:
		return "disputed"
	case StatusCompleted:
		return "completed"
	case StatusDeclined:
		return "declined"
	case StatusRedeemed:
		return "redeemed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Satisfaction is the four-tier quality rating cast by the client and, on
// disputed gigs, by the arbiter.
type Satisfaction uint8

const (
	SatisfactionInitialized Satisfaction = iota
	SatisfactionStronglyAgree
	SatisfactionAgree
	SatisfactionSomewhatAgree
	SatisfactionDisagree
)

// Valid reports whether the value is one of the four castable tiers.
// SatisfactionInitialized is the stored default and is never a valid vote.
func (s Satisfaction) Valid() bool {
	switch s {
	case SatisfactionStronglyAgree, SatisfactionAgree, SatisfactionSomewhatAgree, SatisfactionDisagree:
		return true
	default:
		return false
	}
}

// String returns the canonical wire form of the satisfaction tier.
func (s Satisfaction) String() string {
	switch s {
	case SatisfactionInitialized:
		return "initialized"
	case SatisfactionStronglyAgree:
		return "strongly-agree"
	case SatisfactionAgree:
		return "agree"
	case SatisfactionSomewhatAgree:
		return "somewhat-agree"
	case SatisfactionDisagree:
		return "disagree"
	default:
		return fmt.Sprintf("satisfaction(%d)", uint8(s))
	}
}

// ArtistShareBps returns the artist's payout share for a resolved vote in
// basis points. The client refund is always the remainder of the escrow.
func (s Satisfaction) ArtistShareBps() uint32 {
	switch s {
	case SatisfactionStronglyAgree:
		return 10_000
	case SatisfactionAgree:
		return 7_500
	case SatisfactionSomewhatAgree:
		return 5_000
	default:
		return 0
	}
}

// ParseSatisfaction converts the wire form of a vote into its enum value. Only
// the four castable tiers parse successfully.
func ParseSatisfaction(value string) (Satisfaction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strongly-agree":
		return SatisfactionStronglyAgree, nil
	case "agree":
		return SatisfactionAgree, nil
	case "somewhat-agree":
		return SatisfactionSomewhatAgree, nil
	case "disagree":
		return SatisfactionDisagree, nil
	default:
		return SatisfactionInitialized, ErrInvalidSatisfaction
	}
}

// MaxJobLength bounds the free-form job label.
const MaxJobLength = 99

// Gig captures one escrow agreement between a client (From) and an artist
// (To). Amount is the net escrowed value after the platform commission was
// deducted at creation; it never changes afterwards.
type Gig struct {
	ID                   uint64
	From                 [20]byte
	To                   [20]byte
	Amount               *big.Int
	Job                  string
	Period               uint64
	Status               Status
	Satisfaction         Satisfaction
	SatisfactionDisputed Satisfaction
	BlockCreated         uint64
	BlockAccepted        uint64
	BlockDisputed        uint64
	CompletelyPaid       bool
}

// Clone returns a deep copy of the gig so callers can safely mutate the copy
// without affecting the stored instance.
func (g *Gig) Clone() *Gig {
	if g == nil {
		return nil
	}
	clone := *g
	if g.Amount != nil {
		clone.Amount = new(big.Int).Set(g.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// Sanitize validates and normalises the supplied gig record, returning a
// cloned instance with a non-nil amount. The original value is not mutated.
func Sanitize(g *Gig) (*Gig, error) {
	if g == nil {
		return nil, fmt.Errorf("gigs: nil gig")
	}
	clone := g.Clone()
	if clone.ID == 0 {
		return nil, fmt.Errorf("gigs: id must be positive")
	}
	if clone.Amount.Sign() < 0 {
		return nil, fmt.Errorf("gigs: amount must be non-negative")
	}
	if len(clone.Job) > MaxJobLength {
		return nil, fmt.Errorf("gigs: job label exceeds %d characters", MaxJobLength)
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("gigs: invalid status: %d", clone.Status)
	}
	if clone.Satisfaction != SatisfactionInitialized && !clone.Satisfaction.Valid() {
		return nil, fmt.Errorf("gigs: invalid satisfaction: %d", clone.Satisfaction)
	}
	if clone.SatisfactionDisputed != SatisfactionInitialized && !clone.SatisfactionDisputed.Valid() {
		return nil, fmt.Errorf("gigs: invalid disputed satisfaction: %d", clone.SatisfactionDisputed)
	}
	return clone, nil
}
