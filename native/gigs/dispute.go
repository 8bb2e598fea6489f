package gigs

// SendToDispute lets either participant contest an accepted gig before the
// work period runs out. Past the deadline the expiry paths govern the outcome
// instead.
func (e *Engine) SendToDispute(caller [20]byte, id uint64) (bool, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.From != caller && gig.To != caller {
		return false, ErrNotParticipant
	}
	if gig.Status != StatusAccepted {
		return false, ErrNotAccepted
	}
	if e.height() > gig.BlockAccepted+gig.Period {
		return false, ErrExpired
	}
	gig.Status = StatusDisputed
	gig.BlockDisputed = e.height()
	if err := e.storeGig(gig); err != nil {
		return false, err
	}
	e.emit(NewDisputedEvent(gig, "participant"))
	return true, nil
}

// SendToDisputePassedTimeAcceptance force-disputes a gig whose artist has sat
// on a pending client vote past the work period. Any caller may trigger it, so
// an artist cannot stall a contested vote indefinitely.
func (e *Engine) SendToDisputePassedTimeAcceptance(caller [20]byte, id uint64) (bool, error) {
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.Status != StatusAccepted || !awaitingArtistAcceptance(gig) || e.height() <= gig.BlockAccepted+gig.Period {
		return false, ErrNotExpired
	}
	gig.Status = StatusDisputed
	gig.BlockDisputed = e.height()
	if err := e.storeGig(gig); err != nil {
		return false, err
	}
	e.emit(NewDisputedEvent(gig, "acceptance-timeout"))
	return true, nil
}

// DaoVoteSatisfaction records the arbiter's final, binding vote on a disputed
// gig and resolves the payout from it. The arbiter may confirm or overturn the
// client's original vote.
func (e *Engine) DaoVoteSatisfaction(caller [20]byte, id uint64, vote Satisfaction) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	if e.arbiter == ([20]byte{}) || caller != e.arbiter {
		return false, ErrNotDao
	}
	if !vote.Valid() {
		return false, ErrInvalidSatisfaction
	}
	gig, err := e.loadGig(id)
	if err != nil {
		return false, err
	}
	if gig.Status != StatusDisputed {
		return false, ErrNotDisputed
	}
	gig.SatisfactionDisputed = vote
	if err := e.resolvePayout(gig, vote); err != nil {
		return false, err
	}
	return true, nil
}
