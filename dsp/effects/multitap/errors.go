package multitap

import "errors"

// Errors returned by the multi-tap delay. Format problems with a source
// passed to Play wrap pcm.ErrFormatMismatch.
var (
	ErrConfiguration    = errors.New("multitap: invalid configuration")
	ErrInvalidTap       = errors.New("multitap: tap position and level must be in [0, 1]")
	ErrInvalidParameter = errors.New("multitap: invalid parameter")
	ErrClosed           = errors.New("multitap: delay is closed")
)
