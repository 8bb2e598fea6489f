package gigs

import (
	"math/big"
	"testing"

	"gigchain/core/events"
)

func TestCreatedEventCarriesRecord(t *testing.T) {
	gig := &Gig{
		ID:           7,
		From:         newTestAddress(0x11),
		To:           newTestAddress(0x22),
		Amount:       big.NewInt(975),
		Job:          "art",
		Period:       2016,
		Status:       StatusPending,
		BlockCreated: 3,
	}
	evt := NewCreatedEvent(gig)
	if evt.Type != EventTypeGigCreated {
		t.Fatalf("type = %q, want %q", evt.Type, EventTypeGigCreated)
	}
	want := map[string]string{
		"id":           "7",
		"amount":       "975",
		"job":          "art",
		"period":       "2016",
		"status":       "pending",
		"satisfaction": "initialized",
		"blockCreated": "3",
	}
	for key, value := range want {
		if got := evt.Attributes[key]; got != value {
			t.Fatalf("attribute %q = %q, want %q", key, got, value)
		}
	}
}

func TestDisputedEventTagsCause(t *testing.T) {
	gig := &Gig{ID: 1, Amount: big.NewInt(10), Status: StatusDisputed}
	evt := NewDisputedEvent(gig, "artist-reject")
	if evt.Attributes["cause"] != "artist-reject" {
		t.Fatalf("cause = %q, want artist-reject", evt.Attributes["cause"])
	}
}

func TestCompletedEventTagsResolvedVote(t *testing.T) {
	gig := &Gig{ID: 1, Amount: big.NewInt(10), Status: StatusCompleted, CompletelyPaid: true}
	evt := NewCompletedEvent(gig, SatisfactionSomewhatAgree)
	if evt.Attributes["resolvedVote"] != "somewhat-agree" {
		t.Fatalf("resolvedVote = %q", evt.Attributes["resolvedVote"])
	}
	if evt.Attributes["completelyPaid"] != "true" {
		t.Fatalf("completelyPaid = %q, want true", evt.Attributes["completelyPaid"])
	}
}

func TestEventFromNilGig(t *testing.T) {
	evt := NewCreatedEvent(nil)
	if evt.Type != EventTypeGigCreated {
		t.Fatalf("type = %q", evt.Type)
	}
	if len(evt.Attributes) != 0 {
		t.Fatalf("nil gig must produce empty attributes")
	}
}

func TestEngineEmitsLifecycleEvents(t *testing.T) {
	env := newTestEnv(t)
	var seen []string
	env.engine.SetEmitter(emitterFunc(func(eventType string) {
		seen = append(seen, eventType)
	}))
	id := env.mustCreate(t, 1000, 2016)
	env.mustAccept(t, id)
	if _, err := env.engine.VoteSatisfactionAsClient(client, id, SatisfactionStronglyAgree); err != nil {
		t.Fatalf("vote: %v", err)
	}
	want := []string{EventTypeGigCreated, EventTypeGigAccepted, EventTypeGigCompleted}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

type emitterFunc func(eventType string)

func (f emitterFunc) Emit(evt events.Event) { f(evt.EventType()) }
