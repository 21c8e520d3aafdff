package sim

import "errors"

var (
	// ErrInvalidConfiguration is returned at construction time for
	// out-of-range or unrecognized parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidAction is returned by Step for an out-of-range product
	// index, or a non-null action at the episode's first decision point.
	ErrInvalidAction = errors.New("invalid action")

	// ErrEpisodeTerminated is returned when stepping a finished episode
	// without an intervening Reset.
	ErrEpisodeTerminated = errors.New("episode terminated")
)
