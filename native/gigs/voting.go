package gigs

// VoteSatisfactionAsClient records the client's quality rating for an accepted
// gig. A strongly-agree vote pays the full escrow to the artist immediately.
// Agree and somewhat-agree park the gig until the artist responds to the vote.
// Disagree escalates straight to arbitration.
func (e *Engine) VoteSatisfactionAsClient(caller [20]byte, id uint64, vote Satisfaction) (bool, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.From != caller {
		return false, ErrNotClient
	}
	if gig.Status != StatusAccepted || gig.Satisfaction != SatisfactionInitialized {
		return false, ErrNotAccepted
	}
	if !vote.Valid() {
		return false, ErrInvalidSatisfaction
	}
	switch vote {
	case SatisfactionStronglyAgree:
		gig.Satisfaction = vote
		if err := e.resolvePayout(gig, vote); err != nil {
			return false, err
		}
	case SatisfactionDisagree:
		gig.Satisfaction = vote
		gig.Status = StatusDisputed
		gig.BlockDisputed = e.height()
		if err := e.storeGig(gig); err != nil {
			return false, err
		}
		e.emit(NewDisputedEvent(gig, "client-disagree"))
	default:
		gig.Satisfaction = vote
		if err := e.storeGig(gig); err != nil {
			return false, err
		}
		e.emit(NewVotedEvent(gig))
	}
	return true, nil
}

// SatisfactionAcceptanceAsArtist is the artist's response to a non-terminal
// client vote. Accepting resolves the payout according to the client's vote;
// rejecting hands the gig to the arbiter.
func (e *Engine) SatisfactionAcceptanceAsArtist(caller [20]byte, id uint64, accept bool) (bool, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.To != caller {
		return false, ErrNotArtist
	}
	if gig.Status != StatusAccepted || !awaitingArtistAcceptance(gig) {
		return false, ErrNotAcceptance
	}
	if accept {
		if err := e.resolvePayout(gig, gig.Satisfaction); err != nil {
			return false, err
		}
		return true, nil
	}
	gig.Status = StatusDisputed
	gig.BlockDisputed = e.height()
	if err := e.storeGig(gig); err != nil {
		return false, err
	}
	e.emit(NewDisputedEvent(gig, "artist-reject"))
	return true, nil
}

// awaitingArtistAcceptance reports whether the client cast a vote that still
// needs the artist's confirmation before any payout.
func awaitingArtistAcceptance(gig *Gig) bool {
	return gig.Satisfaction == SatisfactionAgree || gig.Satisfaction == SatisfactionSomewhatAgree
}
