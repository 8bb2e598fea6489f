package gigs

import "errors"

// Every failure surfaces as one of these sentinels. The numeric codes are part
// of the public contract and mirror the original marketplace deployment, so
// downstream clients can switch on them across transports.
var (
	ErrNotFound            = errors.New("gigs: gig not found")
	ErrNotArtist           = errors.New("gigs: caller is not the gig artist")
	ErrNotClient           = errors.New("gigs: caller is not the gig client")
	ErrNotDao              = errors.New("gigs: caller is not the arbiter")
	ErrNotParticipant      = errors.New("gigs: caller is neither client nor artist")
	ErrExpired             = errors.New("gigs: work period has expired")
	ErrInvalidSatisfaction = errors.New("gigs: invalid satisfaction vote")
	ErrNotPending          = errors.New("gigs: gig is not pending")
	ErrNotRedeemable       = errors.New("gigs: gig is not redeemable")
	ErrNotAccepted         = errors.New("gigs: gig is not accepted")
	ErrNotAcceptance       = errors.New("gigs: no client vote awaiting artist acceptance")
	ErrNotDisputed         = errors.New("gigs: gig is not disputed")
	ErrNotExpired          = errors.New("gigs: acceptance window has not expired")
)

var errorCodes = map[error]int{
	ErrNotFound:            404,
	ErrNotArtist:           405,
	ErrNotClient:           406,
	ErrNotDao:              407,
	ErrNotParticipant:      408,
	ErrExpired:             409,
	ErrInvalidSatisfaction: 410,
	ErrNotPending:          411,
	ErrNotRedeemable:       412,
	ErrNotAccepted:         413,
	ErrNotAcceptance:       414,
	ErrNotDisputed:         415,
	ErrNotExpired:          416,
}

// Code resolves the stable numeric code for an engine error. The second return
// is false for errors that are not part of the public failure contract.
func Code(err error) (int, bool) {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return 0, false
}
