package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"blackjack-server/internal/game"
)

// MemoryStore is an in-memory Store. It backs the server when no
// database is configured and doubles as the test fixture.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]*game.Player // keyed by id
	byName  map[string]string       // username -> id
	history map[string][]*game.HistoryRecord
	nextRec int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*game.Player),
		byName:  make(map[string]string),
		history: make(map[string][]*game.HistoryRecord),
	}
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[username]; exists {
		return nil, game.ErrUsernameTaken
	}

	p := &game.Player{
		ID:        uuid.New().String(),
		Username:  username,
		Chips:     chips,
		CreatedAt: time.Now(),
	}
	s.players[p.ID] = p
	s.byName[username] = p.ID

	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetPlayerByID(ctx context.Context, id string) (*game.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.players[id]
	if !exists {
		return nil, game.ErrPlayerNotFound
	}

	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetPlayerByUsername(ctx context.Context, username string) (*game.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byName[username]
	if !exists {
		return nil, game.ErrPlayerNotFound
	}

	cp := *s.players[id]
	return &cp, nil
}

func (s *MemoryStore) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*game.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	return players, nil
}

func (s *MemoryStore) SetChips(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byName[username]
	if !exists {
		return nil, game.ErrPlayerNotFound
	}

	s.players[id].Chips = chips
	cp := *s.players[id]
	return &cp, nil
}

func (s *MemoryStore) DeletePlayer(ctx context.Context, username string) (*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byName[username]
	if !exists {
		return nil, game.ErrPlayerNotFound
	}

	cp := *s.players[id]
	delete(s.players, id)
	delete(s.byName, username)
	return &cp, nil
}

func (s *MemoryStore) LookupPlayer(ctx context.Context, id string) (string, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.players[id]
	if !exists {
		return "", decimal.Zero, game.ErrPlayerNotFound
	}
	return p.Username, p.Chips, nil
}

func (s *MemoryStore) AdjustChips(ctx context.Context, id string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.players[id]
	if !exists {
		return game.ErrPlayerNotFound
	}

	p.Chips = p.Chips.Add(delta)
	return nil
}

func (s *MemoryStore) AppendResult(ctx context.Context, res *game.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRec++
	rec := &game.HistoryRecord{
		ID:          s.nextRec,
		PlayerID:    res.PlayerID,
		Username:    res.Username,
		BetAmount:   res.BetAmount,
		PlayerHand:  append([]game.Card(nil), res.PlayerHand...),
		DealerHand:  append([]game.Card(nil), res.DealerHand...),
		PlayerScore: res.PlayerScore,
		DealerScore: res.DealerScore,
		Outcome:     res.Outcome,
		ChipsChange: res.ChipsChange,
		Timestamp:   time.Now(),
	}
	s.history[res.PlayerID] = append(s.history[res.PlayerID], rec)
	return nil
}

func (s *MemoryStore) PlayerHistory(ctx context.Context, playerID string, limit int) ([]*game.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.history[playerID]

	// Most recent first.
	out := make([]*game.HistoryRecord, 0, len(records))
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}
