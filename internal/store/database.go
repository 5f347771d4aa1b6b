package store

import (
	"context"

	"github.com/shopspring/decimal"

	"blackjack-server/internal/db"
	"blackjack-server/internal/game"
)

// DatabaseStore is the database-backed Store.
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a store over an open database.
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (s *DatabaseStore) CreatePlayer(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	return s.db.CreatePlayer(ctx, username, chips)
}

func (s *DatabaseStore) GetPlayerByID(ctx context.Context, id string) (*game.Player, error) {
	return s.db.GetPlayerByID(ctx, id)
}

func (s *DatabaseStore) GetPlayerByUsername(ctx context.Context, username string) (*game.Player, error) {
	return s.db.GetPlayerByUsername(ctx, username)
}

func (s *DatabaseStore) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	return s.db.ListPlayers(ctx)
}

func (s *DatabaseStore) SetChips(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	return s.db.SetChips(ctx, username, chips)
}

func (s *DatabaseStore) DeletePlayer(ctx context.Context, username string) (*game.Player, error) {
	return s.db.DeletePlayer(ctx, username)
}

func (s *DatabaseStore) LookupPlayer(ctx context.Context, id string) (string, decimal.Decimal, error) {
	return s.db.LookupPlayer(ctx, id)
}

func (s *DatabaseStore) AdjustChips(ctx context.Context, id string, delta decimal.Decimal) error {
	return s.db.AdjustChips(ctx, id, delta)
}

func (s *DatabaseStore) AppendResult(ctx context.Context, res *game.Result) error {
	return s.db.AppendResult(ctx, res)
}

func (s *DatabaseStore) PlayerHistory(ctx context.Context, playerID string, limit int) ([]*game.HistoryRecord, error) {
	return s.db.PlayerHistory(ctx, playerID, limit)
}
