package gigs

// Get returns a projection of the stored gig, or false when the id was never
// allocated. Read-only.
func (e *Engine) Get(id uint64) (*Gig, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	gig, ok, err := e.state.GigGet(id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return gig, true, nil
}

// CheckIsExpired reports whether an accepted gig has outlived its work period.
// Nonexistent ids and gigs in any other status report false. Read-only.
func (e *Engine) CheckIsExpired(id uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	gig, ok, err := e.state.GigGet(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return gig.Status == StatusAccepted && e.height() > gig.BlockAccepted+gig.Period, nil
}

// CanRedeem reports whether the principal could successfully redeem the gig
// right now: it must exist, still be pending, be expired since creation and
// the principal must be its client. Never errors for a well-formed query.
// Read-only.
func (e *Engine) CanRedeem(id uint64, principal [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	gig, ok, err := e.state.GigGet(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if gig.Status != StatusPending {
		return false, nil
	}
	if e.height() <= gig.BlockCreated+gig.Period {
		return false, nil
	}
	return gig.From == principal, nil
}
