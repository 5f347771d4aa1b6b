package game

import "errors"

// Validation errors reported to the caller. None of them mutate state.
var (
	ErrInvalidBet        = errors.New("a positive bet amount is required")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInsufficientChips = errors.New("not enough chips to place this bet")
	ErrGameInProgress    = errors.New("a game is already in progress")
	ErrNoActiveGame      = errors.New("no active game or game is over")
)
