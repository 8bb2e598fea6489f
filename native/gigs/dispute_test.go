package gigs

import (
	"errors"
	"math/big"
	"testing"
)

func TestSendToDispute(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 100)
	env.mustAccept(t, id)
	env.height = 10
	ok, err := env.engine.SendToDispute(client, id)
	if err != nil || !ok {
		t.Fatalf("dispute: %v/%v", ok, err)
	}
	gig, _, _ := env.engine.Get(id)
	if gig.Status != StatusDisputed {
		t.Fatalf("status = %s, want disputed", gig.Status)
	}
	if gig.BlockDisputed != 10 {
		t.Fatalf("blockDisputed = %d, want 10", gig.BlockDisputed)
	}
}

func TestSendToDisputeByArtist(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 100)
	env.mustAccept(t, id)
	if _, err := env.engine.SendToDispute(artist, id); err != nil {
		t.Fatalf("dispute by artist: %v", err)
	}
}

func TestSendToDisputeErrors(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 10)
	if _, err := env.engine.SendToDispute(client, id+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dispute missing id: %v, want ErrNotFound", err)
	}
	if _, err := env.engine.SendToDispute(stranger, id); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("dispute by stranger: %v, want ErrNotParticipant", err)
	}
	if _, err := env.engine.SendToDispute(client, id); !errors.Is(err, ErrNotAccepted) {
		t.Fatalf("dispute on pending: %v, want ErrNotAccepted", err)
	}
	env.mustAccept(t, id) // height 2
	env.height = 13       // past blockAccepted 2 + period 10
	if _, err := env.engine.SendToDispute(client, id); !errors.Is(err, ErrExpired) {
		t.Fatalf("dispute after expiry: %v, want ErrExpired", err)
	}
}

func TestTimeoutDisputeForStalledAcceptance(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 10)
	env.mustAccept(t, id) // height 2
	if _, err := env.engine.VoteSatisfactionAsClient(client, id, SatisfactionAgree); err != nil {
		t.Fatalf("vote: %v", err)
	}
	// Deadline is blockAccepted 2 + period 10 = 12; not yet passed.
	env.height = 12
	if _, err := env.engine.SendToDisputePassedTimeAcceptance(stranger, id); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("timeout dispute at deadline: %v, want ErrNotExpired", err)
	}
	env.height = 13
	ok, err := env.engine.SendToDisputePassedTimeAcceptance(stranger, id)
	if err != nil || !ok {
		t.Fatalf("timeout dispute: %v/%v", ok, err)
	}
	gig, _, _ := env.engine.Get(id)
	if gig.Status != StatusDisputed {
		t.Fatalf("status = %s, want disputed", gig.Status)
	}
	if gig.BlockDisputed != 13 {
		t.Fatalf("blockDisputed = %d, want 13", gig.BlockDisputed)
	}
}

func TestTimeoutDisputeRequiresPendingVote(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 10)
	env.mustAccept(t, id)
	// Expired but the client never voted: the redemption/expiry paths govern,
	// not the acceptance timeout.
	env.height = 100
	if _, err := env.engine.SendToDisputePassedTimeAcceptance(stranger, id); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("timeout dispute without vote: %v, want ErrNotExpired", err)
	}
	if _, err := env.engine.SendToDisputePassedTimeAcceptance(stranger, id+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("timeout dispute missing id: %v, want ErrNotFound", err)
	}
}

func TestDaoVoteResolvesDispute(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1_000_000, 2016) // escrow 975000
	env.mustAccept(t, id)
	if _, err := env.engine.VoteSatisfactionAsClient(client, id, SatisfactionAgree); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := env.engine.SatisfactionAcceptanceAsArtist(artist, id, false); err != nil {
		t.Fatalf("rejection: %v", err)
	}
	clientBefore := env.state.balance(client)
	ok, err := env.engine.DaoVoteSatisfaction(arbiter, id, SatisfactionAgree)
	if err != nil || !ok {
		t.Fatalf("dao vote: %v/%v", ok, err)
	}
	if got := env.state.balance(artist); got.Cmp(big.NewInt(731_250)) != 0 {
		t.Fatalf("artist share = %s, want 731250", got)
	}
	refunded := new(big.Int).Sub(env.state.balance(client), clientBefore)
	if refunded.Cmp(big.NewInt(243_750)) != 0 {
		t.Fatalf("client refund = %s, want 243750", refunded)
	}
	gig, _, _ := env.engine.Get(id)
	if gig.Status != StatusCompleted || !gig.CompletelyPaid {
		t.Fatalf("gig = %s paid=%v, want completed/paid", gig.Status, gig.CompletelyPaid)
	}
	if gig.SatisfactionDisputed != SatisfactionAgree {
		t.Fatalf("satisfactionDisputed = %s, want agree", gig.SatisfactionDisputed)
	}
	// The client's original vote stays on record.
	if gig.Satisfaction != SatisfactionAgree {
		t.Fatalf("satisfaction = %s, want agree", gig.Satisfaction)
	}
}

func TestDaoVoteCanOverturnClientVote(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 2016) // escrow 975
	env.mustAccept(t, id)
	if _, err := env.engine.VoteSatisfactionAsClient(client, id, SatisfactionDisagree); err != nil {
		t.Fatalf("vote: %v", err)
	}
	// The arbiter sides with the artist despite the disagree vote.
	if _, err := env.engine.DaoVoteSatisfaction(arbiter, id, SatisfactionStronglyAgree); err != nil {
		t.Fatalf("dao vote: %v", err)
	}
	if got := env.state.balance(artist); got.Cmp(big.NewInt(975)) != 0 {
		t.Fatalf("artist share = %s, want full escrow 975", got)
	}
}

func TestDaoVoteFullRefundOnDisagree(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 2016)
	env.mustAccept(t, id)
	if _, err := env.engine.VoteSatisfactionAsClient(client, id, SatisfactionDisagree); err != nil {
		t.Fatalf("vote: %v", err)
	}
	clientBefore := env.state.balance(client)
	if _, err := env.engine.DaoVoteSatisfaction(arbiter, id, SatisfactionDisagree); err != nil {
		t.Fatalf("dao vote: %v", err)
	}
	refunded := new(big.Int).Sub(env.state.balance(client), clientBefore)
	if refunded.Cmp(big.NewInt(975)) != 0 {
		t.Fatalf("client refund = %s, want full escrow 975", refunded)
	}
	if got := env.state.balance(artist); got.Sign() != 0 {
		t.Fatalf("artist must receive nothing, has %s", got)
	}
}

func TestDaoVoteErrors(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 1000, 2016)
	env.mustAccept(t, id)
	if _, err := env.engine.DaoVoteSatisfaction(client, id, SatisfactionAgree); !errors.Is(err, ErrNotDao) {
		t.Fatalf("dao vote by client: %v, want ErrNotDao", err)
	}
	if _, err := env.engine.DaoVoteSatisfaction(arbiter, id, SatisfactionInitialized); !errors.Is(err, ErrInvalidSatisfaction) {
		t.Fatalf("dao vote initialized: %v, want ErrInvalidSatisfaction", err)
	}
	if _, err := env.engine.DaoVoteSatisfaction(arbiter, id, SatisfactionAgree); !errors.Is(err, ErrNotDisputed) {
		t.Fatalf("dao vote on accepted: %v, want ErrNotDisputed", err)
	}
	if _, err := env.engine.DaoVoteSatisfaction(arbiter, id+1, SatisfactionAgree); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dao vote missing id: %v, want ErrNotFound", err)
	}
}
