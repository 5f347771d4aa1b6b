package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-server/internal/game"
)

func TestMemoryStorePlayerCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "alice", p.Username)

	_, err = s.CreatePlayer(ctx, "alice", decimal.NewFromInt(500))
	assert.ErrorIs(t, err, game.ErrUsernameTaken)

	byID, err := s.GetPlayerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := s.GetPlayerByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	_, err = s.GetPlayerByUsername(ctx, "bob")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)

	updated, err := s.SetChips(ctx, "alice", decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, updated.Chips.Equal(decimal.NewFromInt(250)))

	players, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)

	deleted, err := s.DeletePlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = s.GetPlayerByID(ctx, p.ID)
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
}

func TestMemoryStoreAdjustChips(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "alice", decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, s.AdjustChips(ctx, p.ID, decimal.NewFromInt(15)))
	require.NoError(t, s.AdjustChips(ctx, p.ID, decimal.NewFromInt(-40)))

	username, chips, err := s.LookupPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.True(t, chips.Equal(decimal.NewFromInt(75)), "got %s", chips)

	assert.ErrorIs(t, s.AdjustChips(ctx, "missing", decimal.NewFromInt(1)), game.ErrPlayerNotFound)
}

func TestMemoryStoreHistoryOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		err := s.AppendResult(ctx, &game.Result{
			PlayerID:    "p1",
			Username:    "alice",
			BetAmount:   decimal.NewFromInt(int64(i + 1)),
			PlayerHand:  []game.Card{{Rank: game.Ten, Suit: game.Spades}},
			DealerHand:  []game.Card{{Rank: game.Nine, Suit: game.Hearts}},
			PlayerScore: 10,
			DealerScore: 9,
			Outcome:     game.StatusPlayerWin,
			ChipsChange: decimal.NewFromInt(int64(i + 1)),
		})
		require.NoError(t, err)
	}

	records, err := s.PlayerHistory(ctx, "p1", HistoryPageSize)
	require.NoError(t, err)
	require.Len(t, records, HistoryPageSize)

	// Most recent first: bets 60, 59, ...
	for i, rec := range records {
		want := decimal.NewFromInt(int64(60 - i))
		assert.True(t, rec.BetAmount.Equal(want),
			fmt.Sprintf("record %d: want bet %s, got %s", i, want, rec.BetAmount))
	}

	other, err := s.PlayerHistory(ctx, "p2", HistoryPageSize)
	require.NoError(t, err)
	assert.Empty(t, other)
}
