package gigs

import (
	"encoding/hex"
	"strconv"

	"gigchain/core/types"
)

const (
	EventTypeGigCreated   = "gigs.created"
	EventTypeGigAccepted  = "gigs.accepted"
	EventTypeGigDeclined  = "gigs.declined"
	EventTypeGigVoted     = "gigs.voted"
	EventTypeGigDisputed  = "gigs.disputed"
	EventTypeGigCompleted = "gigs.completed"
	EventTypeGigRedeemed  = "gigs.redeemed"
)

// NewCreatedEvent returns the canonical event payload for a newly created gig.
func NewCreatedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigCreated, g) }

// NewAcceptedEvent returns the canonical event payload emitted when the artist
// accepts a pending gig.
func NewAcceptedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigAccepted, g) }

// NewDeclinedEvent returns the canonical event payload emitted when the artist
// declines a pending gig and the escrow is refunded.
func NewDeclinedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigDeclined, g) }

// NewVotedEvent returns the canonical event payload emitted when the client
// casts a vote that awaits artist confirmation.
func NewVotedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigVoted, g) }

// NewRedeemedEvent returns the canonical event payload emitted when the client
// claims back the escrow of a never-accepted gig.
func NewRedeemedEvent(g *Gig) *types.Event { return newGigEvent(EventTypeGigRedeemed, g) }

// NewDisputedEvent returns the canonical event payload emitted on any of the
// transitions into the disputed status, tagged with its trigger.
func NewDisputedEvent(g *Gig, cause string) *types.Event {
	evt := newGigEvent(EventTypeGigDisputed, g)
	if cause != "" {
		evt.Attributes["cause"] = cause
	}
	return evt
}

// NewCompletedEvent returns the canonical event payload emitted when a payout
// resolves, tagged with the vote that determined the split.
func NewCompletedEvent(g *Gig, resolved Satisfaction) *types.Event {
	evt := newGigEvent(EventTypeGigCompleted, g)
	evt.Attributes["resolvedVote"] = resolved.String()
	return evt
}

func newGigEvent(eventType string, g *Gig) *types.Event {
	attrs := make(map[string]string)
	if g == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := Sanitize(g)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["from"] = hex.EncodeToString(sanitized.From[:])
	attrs["to"] = hex.EncodeToString(sanitized.To[:])
	attrs["amount"] = sanitized.Amount.String()
	attrs["job"] = sanitized.Job
	attrs["period"] = strconv.FormatUint(sanitized.Period, 10)
	attrs["status"] = sanitized.Status.String()
	attrs["satisfaction"] = sanitized.Satisfaction.String()
	attrs["satisfactionDisputed"] = sanitized.SatisfactionDisputed.String()
	attrs["blockCreated"] = strconv.FormatUint(sanitized.BlockCreated, 10)
	attrs["blockAccepted"] = strconv.FormatUint(sanitized.BlockAccepted, 10)
	attrs["blockDisputed"] = strconv.FormatUint(sanitized.BlockDisputed, 10)
	attrs["completelyPaid"] = strconv.FormatBool(sanitized.CompletelyPaid)
	return &types.Event{Type: eventType, Attributes: attrs}
}
