package board

import "errors"

var (
	ErrConflict         = errors.New("concurrent modification, try again")
	ErrFeaturedNotFound = errors.New("featured content not found")
	ErrFeaturedCorrupt  = errors.New("stored featured contents are malformed")
	ErrSnapshot         = errors.New("failed to read board snapshot")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrLayoutNotFound   = errors.New("layout not found")
)
