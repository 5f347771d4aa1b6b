package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"blackjack-server/internal/game"
	"blackjack-server/internal/metrics"
	"blackjack-server/internal/store"
)

// Handlers contains all the API handlers.
type Handlers struct {
	store  store.Store
	engine *game.Engine
	hub    *Hub
	log    *zap.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(st store.Store, engine *game.Engine, hub *Hub, log *zap.Logger) *Handlers {
	return &Handlers{
		store:  st,
		engine: engine,
		hub:    hub,
		log:    log,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Game endpoints
	r.HandleFunc("/api/game/start", h.StartGame).Methods("POST")
	r.HandleFunc("/api/game/hit", h.Hit).Methods("POST")
	r.HandleFunc("/api/game/stand", h.Stand).Methods("POST")
	r.HandleFunc("/api/game/history/{playerId}", h.GameHistory).Methods("GET")

	// Player endpoints
	r.HandleFunc("/api/players", h.ListPlayers).Methods("GET")
	r.HandleFunc("/api/players", h.CreatePlayer).Methods("POST")
	r.HandleFunc("/api/players/{username}", h.GetPlayer).Methods("GET")
	r.HandleFunc("/api/players/{username}", h.UpdatePlayerChips).Methods("PUT")
	r.HandleFunc("/api/players/{username}", h.DeletePlayer).Methods("DELETE")

	// WebSocket event feed
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.Handler)
	}

	r.HandleFunc("/", h.Root).Methods("GET")
}

// response helper function to send JSON responses.
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function.
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"message": message})
}

// Root is a basic liveness endpoint.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Blackjack Backend API is running!"))
}

type gameResponse struct {
	Message   string          `json:"message"`
	GameState *game.RoundView `json:"gameState"`
}

// StartGame starts a new round for a player.
func (h *Handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID  string          `json:"playerId"`
		BetAmount decimal.Decimal `json:"betAmount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.PlayerID == "" || !req.BetAmount.IsPositive() {
		errorResponse(w, http.StatusBadRequest, "Player ID and a positive bet amount are required.")
		return
	}

	view, err := h.engine.Start(r.Context(), req.PlayerID, req.BetAmount)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrPlayerNotFound):
			errorResponse(w, http.StatusNotFound, "Player not found.")
		case errors.Is(err, game.ErrInsufficientChips):
			errorResponse(w, http.StatusBadRequest, "Not enough chips to place this bet.")
		case errors.Is(err, game.ErrGameInProgress):
			errorResponse(w, http.StatusConflict, "A game is already in progress.")
		case errors.Is(err, game.ErrInvalidBet):
			errorResponse(w, http.StatusBadRequest, "Player ID and a positive bet amount are required.")
		default:
			h.log.Error("failed to start game", zap.Error(err))
			errorResponse(w, http.StatusInternalServerError, "Server error starting game.")
		}
		return
	}

	message := "Game started!"
	switch view.Status {
	case game.StatusPlayerWin:
		message = "Blackjack! Player wins!"
	case game.StatusPush:
		message = "Both have Blackjack! Push!"
	}

	h.finishOrBroadcast(req.PlayerID, view)
	response(w, http.StatusOK, gameResponse{Message: message, GameState: view})
}

// Hit draws a card for the player.
func (h *Handlers) Hit(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Hit(r.Context())
	if err != nil {
		if errors.Is(err, game.ErrNoActiveGame) {
			errorResponse(w, http.StatusBadRequest, "No active game or game is over.")
			return
		}
		h.log.Error("failed to handle hit", zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error handling hit.")
		return
	}

	message := "Player hits!"
	if view.Status == game.StatusPlayerBust {
		message = "Player busts! Dealer wins."
	}

	h.finishOrBroadcast("", view)
	response(w, http.StatusOK, gameResponse{Message: message, GameState: view})
}

// Stand ends the player's turn and plays out the dealer.
func (h *Handlers) Stand(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Stand(r.Context())
	if err != nil {
		if errors.Is(err, game.ErrNoActiveGame) {
			errorResponse(w, http.StatusBadRequest, "No active game or game is over.")
			return
		}
		h.log.Error("failed to handle stand", zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error handling stand.")
		return
	}

	var message string
	switch view.Status {
	case game.StatusPlayerBust:
		message = "Player busts! Dealer wins."
	case game.StatusDealerBust:
		message = "Dealer busts! Player wins."
	case game.StatusPlayerWin:
		message = "Player wins!"
	case game.StatusDealerWin:
		message = "Dealer wins!"
	default:
		message = "Push!"
	}

	h.finishOrBroadcast("", view)
	response(w, http.StatusOK, gameResponse{Message: message, GameState: view})
}

// finishOrBroadcast publishes the round event and, for terminal views,
// records round metrics.
func (h *Handlers) finishOrBroadcast(playerID string, view *game.RoundView) {
	eventType := "roundUpdated"
	if playerID != "" {
		eventType = "roundStarted"
	}

	if view.Status.Terminal() {
		eventType = "roundFinished"
		delta := 0.0
		if view.PlayerChipsChange != nil {
			delta = view.PlayerChipsChange.InexactFloat64()
		}
		metrics.RecordRound(string(view.Status), delta)
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{Type: eventType, PlayerID: playerID, Data: view})
	}
}

// GameHistory returns a player's finished rounds, most recent first.
func (h *Handlers) GameHistory(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	records, err := h.store.PlayerHistory(r.Context(), playerID, store.HistoryPageSize)
	if err != nil {
		h.log.Error("failed to fetch game history", zap.String("playerId", playerID), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error fetching game history.")
		return
	}

	response(w, http.StatusOK, records)
}

// ListPlayers returns all registered players.
func (h *Handlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.store.ListPlayers(r.Context())
	if err != nil {
		h.log.Error("failed to list players", zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error fetching players.")
		return
	}

	response(w, http.StatusOK, players)
}

// CreatePlayer registers a new player.
func (h *Handlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string           `json:"username"`
		Chips    *decimal.Decimal `json:"chips"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Chips == nil {
		errorResponse(w, http.StatusBadRequest, "Username and chips are required.")
		return
	}
	if req.Chips.IsNegative() {
		errorResponse(w, http.StatusBadRequest, "Chips must be a non-negative number.")
		return
	}

	player, err := h.store.CreatePlayer(r.Context(), req.Username, *req.Chips)
	if err != nil {
		if errors.Is(err, game.ErrUsernameTaken) {
			errorResponse(w, http.StatusConflict, "Username already exists.")
			return
		}
		h.log.Error("failed to create player", zap.String("username", req.Username), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error adding player.")
		return
	}

	response(w, http.StatusCreated, map[string]interface{}{
		"message": "Player added successfully",
		"player":  player,
	})
}

// GetPlayer returns a single player by username.
func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	player, err := h.store.GetPlayerByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, game.ErrPlayerNotFound) {
			errorResponse(w, http.StatusNotFound, "Player not found.")
			return
		}
		h.log.Error("failed to fetch player", zap.String("username", username), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error fetching player.")
		return
	}

	response(w, http.StatusOK, player)
}

// UpdatePlayerChips overwrites a player's chip balance.
func (h *Handlers) UpdatePlayerChips(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req struct {
		Chips *decimal.Decimal `json:"chips"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Chips == nil || req.Chips.IsNegative() {
		errorResponse(w, http.StatusBadRequest, "Chips must be a non-negative number.")
		return
	}

	player, err := h.store.SetChips(r.Context(), username, *req.Chips)
	if err != nil {
		if errors.Is(err, game.ErrPlayerNotFound) {
			errorResponse(w, http.StatusNotFound, "Player not found.")
			return
		}
		h.log.Error("failed to update chips", zap.String("username", username), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error updating player chips.")
		return
	}

	response(w, http.StatusOK, map[string]interface{}{
		"message": "Player chips updated successfully",
		"player":  player,
	})
}

// DeletePlayer removes a player.
func (h *Handlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	player, err := h.store.DeletePlayer(r.Context(), username)
	if err != nil {
		if errors.Is(err, game.ErrPlayerNotFound) {
			errorResponse(w, http.StatusNotFound, "Player not found.")
			return
		}
		h.log.Error("failed to delete player", zap.String("username", username), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Server error deleting player.")
		return
	}

	response(w, http.StatusOK, map[string]interface{}{
		"message": "Player deleted successfully",
		"player":  player,
	})
}
