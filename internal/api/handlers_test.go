package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blackjack-server/internal/game"
	"blackjack-server/internal/store"
)

// stackedDeck deals the given cards in the listed order.
func stackedDeck(cards ...game.Card) func() *game.Deck {
	return func() *game.Deck {
		d := &game.Deck{Cards: make([]game.Card, len(cards))}
		for i, c := range cards {
			d.Cards[len(cards)-1-i] = c
		}
		return d
	}
}

func newTestRouter(cards ...game.Card) (*mux.Router, *store.MemoryStore) {
	st := store.NewMemoryStore()
	opts := []game.Option{}
	if len(cards) > 0 {
		opts = append(opts, game.WithDeckSource(stackedDeck(cards...)))
	}
	engine := game.NewEngine(st, st, zap.NewNop(), opts...)
	handlers := NewHandlers(st, engine, nil, zap.NewNop())

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	return r, st
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

type playerResponse struct {
	Message string      `json:"message"`
	Player  game.Player `json:"player"`
}

type roundResponse struct {
	Message   string         `json:"message"`
	GameState game.RoundView `json:"gameState"`
}

func TestPlayerEndpoints(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "alice", "chips": 1000})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created playerResponse
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.Player.ID)
	assert.True(t, created.Player.Chips.Equal(decimal.NewFromInt(1000)))

	rec = doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "alice", "chips": 500})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "chips are required")

	rec = doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "bob", "chips": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/players/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/players", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var players []game.Player
	decodeBody(t, rec, &players)
	assert.Len(t, players, 1)

	rec = doJSON(t, r, http.MethodPut, "/api/players/alice",
		map[string]interface{}{"chips": 250})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated playerResponse
	decodeBody(t, rec, &updated)
	assert.True(t, updated.Player.Chips.Equal(decimal.NewFromInt(250)))

	rec = doJSON(t, r, http.MethodDelete, "/api/players/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/players/alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameFlow(t *testing.T) {
	// Deal order: player 10♠ 5♥, dealer 9♦ 8♣, then the hit card 4♣.
	r, _ := newTestRouter(
		game.Card{Rank: game.Ten, Suit: game.Spades},
		game.Card{Rank: game.Five, Suit: game.Hearts},
		game.Card{Rank: game.Nine, Suit: game.Diamonds},
		game.Card{Rank: game.Eight, Suit: game.Clubs},
		game.Card{Rank: game.Four, Suit: game.Clubs},
	)

	rec := doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "alice", "chips": 100})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created playerResponse
	decodeBody(t, rec, &created)
	playerID := created.Player.ID

	// Hitting before any game exists is rejected.
	rec = doJSON(t, r, http.MethodPost, "/api/game/hit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown player cannot start.
	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": "nobody", "betAmount": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bet over the balance is rejected.
	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": playerID, "betAmount": 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": playerID, "betAmount": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	var started roundResponse
	decodeBody(t, rec, &started)
	assert.Equal(t, game.StatusPlaying, started.GameState.Status)
	assert.Equal(t, 15, started.GameState.PlayerScore)
	assert.Equal(t, 9, started.GameState.DealerScore)
	require.Len(t, started.GameState.DealerHand, 2)
	assert.Equal(t, game.HiddenCard, started.GameState.DealerHand[1])

	// Starting again while the round is live is rejected.
	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": playerID, "betAmount": 10})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/game/hit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var afterHit roundResponse
	decodeBody(t, rec, &afterHit)
	assert.Equal(t, game.StatusPlaying, afterHit.GameState.Status)
	assert.Equal(t, 19, afterHit.GameState.PlayerScore)
	assert.Equal(t, game.HiddenCard, afterHit.GameState.DealerHand[1])

	rec = doJSON(t, r, http.MethodPost, "/api/game/stand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var final roundResponse
	decodeBody(t, rec, &final)
	assert.Equal(t, game.StatusPlayerWin, final.GameState.Status)
	assert.Equal(t, 17, final.GameState.DealerScore)
	require.NotNil(t, final.GameState.PlayerChipsChange)
	assert.True(t, final.GameState.PlayerChipsChange.Equal(decimal.NewFromInt(10)))

	// Balance settled, history recorded.
	rec = doJSON(t, r, http.MethodGet, "/api/players/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var player game.Player
	decodeBody(t, rec, &player)
	assert.True(t, player.Chips.Equal(decimal.NewFromInt(110)), "got %s", player.Chips)

	rec = doJSON(t, r, http.MethodGet, "/api/game/history/"+playerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []game.HistoryRecord
	decodeBody(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, game.StatusPlayerWin, history[0].Outcome)
	assert.True(t, history[0].ChipsChange.Equal(decimal.NewFromInt(10)))

	// The slot is clear again.
	rec = doJSON(t, r, http.MethodPost, "/api/game/stand", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartImmediateBlackjackResponse(t *testing.T) {
	r, _ := newTestRouter(
		game.Card{Rank: game.Ten, Suit: game.Spades},
		game.Card{Rank: game.Ace, Suit: game.Hearts},
		game.Card{Rank: game.Nine, Suit: game.Diamonds},
		game.Card{Rank: game.Eight, Suit: game.Clubs},
	)

	rec := doJSON(t, r, http.MethodPost, "/api/players",
		map[string]interface{}{"username": "alice", "chips": 100})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created playerResponse
	decodeBody(t, rec, &created)

	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": created.Player.ID, "betAmount": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp roundResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Blackjack! Player wins!", resp.Message)
	assert.Equal(t, game.StatusPlayerWin, resp.GameState.Status)
	assert.Equal(t, 21, resp.GameState.PlayerScore)
	require.Len(t, resp.GameState.DealerHand, 2)
	assert.NotEqual(t, game.HiddenCard, resp.GameState.DealerHand[1], "hole card revealed on blackjack")

	rec = doJSON(t, r, http.MethodGet, "/api/players/alice", nil)
	var player game.Player
	decodeBody(t, rec, &player)
	assert.True(t, player.Chips.Equal(decimal.NewFromInt(115)), "3:2 payout, got %s", player.Chips)
}

func TestStartValidationResponses(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": "", "betAmount": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": "p1", "betAmount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/game/start",
		map[string]interface{}{"playerId": "p1", "betAmount": -10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
