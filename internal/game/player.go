package game

import (
	"time"

	"github.com/shopspring/decimal"
)

// Player is a persisted player account.
type Player struct {
	ID        string          `json:"id" db:"id"`
	Username  string          `json:"username" db:"username"`
	Chips     decimal.Decimal `json:"chips" db:"chips"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// HistoryRecord is an immutable stored snapshot of a finished round.
// The timestamp is server-assigned on append.
type HistoryRecord struct {
	ID          int64           `json:"id"`
	PlayerID    string          `json:"playerId"`
	Username    string          `json:"username"`
	BetAmount   decimal.Decimal `json:"betAmount"`
	PlayerHand  []Card          `json:"playerHand"`
	DealerHand  []Card          `json:"dealerHand"`
	PlayerScore int             `json:"playerScore"`
	DealerScore int             `json:"dealerScore"`
	Outcome     Status          `json:"outcome"`
	ChipsChange decimal.Decimal `json:"chipsChange"`
	Timestamp   time.Time       `json:"timestamp"`
}
