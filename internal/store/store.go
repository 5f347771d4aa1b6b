package store

import (
	"context"

	"github.com/shopspring/decimal"

	"blackjack-server/internal/game"
)

// HistoryPageSize caps a single history query.
const HistoryPageSize = 50

// Store defines player and game-history storage. Implementations also
// satisfy game.Accounts and game.History so the round engine can
// consume them directly. Lookups by missing id/username return
// game.ErrPlayerNotFound.
type Store interface {
	// CreatePlayer registers a player with a server-assigned id.
	CreatePlayer(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error)

	// GetPlayerByID retrieves a player by id.
	GetPlayerByID(ctx context.Context, id string) (*game.Player, error)

	// GetPlayerByUsername retrieves a player by username.
	GetPlayerByUsername(ctx context.Context, username string) (*game.Player, error)

	// ListPlayers returns all players.
	ListPlayers(ctx context.Context) ([]*game.Player, error)

	// SetChips overwrites a player's balance and returns the updated player.
	SetChips(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error)

	// DeletePlayer removes a player and returns the removed record.
	DeletePlayer(ctx context.Context, username string) (*game.Player, error)

	// LookupPlayer returns the username and balance for a player id.
	LookupPlayer(ctx context.Context, id string) (string, decimal.Decimal, error)

	// AdjustChips atomically adds a signed delta to a player's balance.
	AdjustChips(ctx context.Context, id string, delta decimal.Decimal) error

	// AppendResult records a finished round.
	AppendResult(ctx context.Context, res *game.Result) error

	// PlayerHistory returns a player's records, most recent first.
	PlayerHistory(ctx context.Context, playerID string, limit int) ([]*game.HistoryRecord, error)
}
