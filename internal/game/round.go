package game

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Status string

const (
	StatusPlaying    Status = "playing"
	StatusPlayerWin  Status = "player_win"
	StatusDealerWin  Status = "dealer_win"
	StatusPush       Status = "push"
	StatusPlayerBust Status = "player_bust"
	StatusDealerBust Status = "dealer_bust"
)

// Terminal reports whether the status ends a round. "playing" is the
// only non-terminal status.
func (s Status) Terminal() bool {
	return s != StatusPlaying
}

// Dealer stands on 17 and above, no soft-17 distinction.
const dealerStandScore = 17

// blackjackPayout is the 3:2 multiplier for a natural 21.
var blackjackPayout = decimal.NewFromFloat(1.5)

// Round is the single in-progress game. The engine owns exactly one at
// a time and clears it as soon as a terminal status is reached.
type Round struct {
	PlayerID    string
	Username    string
	Bet         decimal.Decimal
	PlayerHand  []Card
	DealerHand  []Card
	PlayerScore int
	DealerScore int
	Deck        *Deck
	Status      Status
}

// Result is the snapshot of a finished round handed to persistence.
type Result struct {
	PlayerID    string
	Username    string
	BetAmount   decimal.Decimal
	PlayerHand  []Card
	DealerHand  []Card
	PlayerScore int
	DealerScore int
	Outcome     Status
	ChipsChange decimal.Decimal
}

// Accounts is the player-account boundary the engine consumes. The
// balance check on start and the delta on finalize go through here.
type Accounts interface {
	LookupPlayer(ctx context.Context, id string) (username string, chips decimal.Decimal, err error)
	AdjustChips(ctx context.Context, id string, delta decimal.Decimal) error
}

// History appends immutable finished-round records.
type History interface {
	AppendResult(ctx context.Context, res *Result) error
}

// Engine drives the hit/stand state machine for one round at a time.
// All operations serialize on the engine mutex so concurrent requests
// can never interleave reads and writes of the active round.
type Engine struct {
	mu       sync.Mutex
	round    *Round
	accounts Accounts
	history  History
	log      *zap.Logger
	newDeck  func() *Deck
}

type Option func(*Engine)

// WithDeckSource replaces the shuffled-deck constructor, mainly so
// tests can stack the deal order.
func WithDeckSource(fn func() *Deck) Option {
	return func(e *Engine) {
		e.newDeck = fn
	}
}

func NewEngine(accounts Accounts, history History, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		accounts: accounts,
		history:  history,
		log:      log,
		newDeck:  NewShuffledDeck,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start validates the bet against the player's balance, deals two cards
// each and either resolves an immediate blackjack or leaves the round
// in play. Starting while a round is active is rejected rather than
// silently replacing the in-flight round.
func (e *Engine) Start(ctx context.Context, playerID string, bet decimal.Decimal) (*RoundView, error) {
	if !bet.IsPositive() {
		return nil, ErrInvalidBet
	}

	e.mu.Lock()
	if e.round != nil {
		e.mu.Unlock()
		return nil, ErrGameInProgress
	}

	username, chips, err := e.accounts.LookupPlayer(ctx, playerID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if chips.LessThan(bet) {
		e.mu.Unlock()
		return nil, ErrInsufficientChips
	}

	deck := e.newDeck()
	r := &Round{
		PlayerID: playerID,
		Username: username,
		Bet:      bet,
		Deck:     deck,
		Status:   StatusPlaying,
	}

	// Deal order: player, player, dealer, dealer.
	for i := 0; i < 2; i++ {
		card, err := deck.Draw()
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		r.PlayerHand = append(r.PlayerHand, card)
	}
	for i := 0; i < 2; i++ {
		card, err := deck.Draw()
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		r.DealerHand = append(r.DealerHand, card)
	}
	r.PlayerScore = Score(r.PlayerHand)
	r.DealerScore = Score(r.DealerHand)

	// Immediate blackjack resolves without further player action. The
	// hole card is revealed for this check only.
	if r.PlayerScore == 21 {
		delta := decimal.Zero
		if r.DealerScore == 21 {
			r.Status = StatusPush
		} else {
			r.Status = StatusPlayerWin
			delta = r.Bet.Mul(blackjackPayout)
		}

		res := r.result(delta)
		view := ResolvedView(r)
		view.PlayerChipsChange = &res.ChipsChange
		e.mu.Unlock()

		e.settle(ctx, res)
		return &view, nil
	}

	e.round = r
	view := VisibleView(r)
	e.mu.Unlock()
	return &view, nil
}

// Hit draws one card into the player hand. A bust finalizes the round
// with delta -bet; otherwise the round stays in play with the dealer's
// hole card still masked.
func (e *Engine) Hit(ctx context.Context) (*RoundView, error) {
	e.mu.Lock()
	r := e.round
	if r == nil || r.Status != StatusPlaying {
		e.mu.Unlock()
		return nil, ErrNoActiveGame
	}

	card, err := r.Deck.Draw()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	r.PlayerHand = append(r.PlayerHand, card)
	r.PlayerScore = Score(r.PlayerHand)

	if r.PlayerScore > 21 {
		r.Status = StatusPlayerBust
		r.DealerScore = Score(r.DealerHand)

		delta := r.Bet.Neg()
		res := r.result(delta)
		view := ResolvedView(r)
		view.PlayerChipsChange = &res.ChipsChange
		e.round = nil
		e.mu.Unlock()

		e.settle(ctx, res)
		return &view, nil
	}

	view := VisibleView(r)
	e.mu.Unlock()
	return &view, nil
}

// Stand plays out the dealer (draw while under 17), determines the
// outcome and finalizes the round. The returned view carries the
// realized chip delta.
func (e *Engine) Stand(ctx context.Context) (*RoundView, error) {
	e.mu.Lock()
	r := e.round
	if r == nil || r.Status != StatusPlaying {
		e.mu.Unlock()
		return nil, ErrNoActiveGame
	}

	for Score(r.DealerHand) < dealerStandScore {
		card, err := r.Deck.Draw()
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		r.DealerHand = append(r.DealerHand, card)
	}
	r.DealerScore = Score(r.DealerHand)

	var delta decimal.Decimal
	switch {
	case r.PlayerScore > 21:
		// Defensive: Hit already finalizes busts before a stand can land.
		r.Status = StatusPlayerBust
		delta = r.Bet.Neg()
	case r.DealerScore > 21:
		r.Status = StatusDealerBust
		delta = r.Bet
	case r.PlayerScore > r.DealerScore:
		r.Status = StatusPlayerWin
		delta = r.Bet
	case r.DealerScore > r.PlayerScore:
		r.Status = StatusDealerWin
		delta = r.Bet.Neg()
	default:
		r.Status = StatusPush
		delta = decimal.Zero
	}

	res := r.result(delta)
	view := ResolvedView(r)
	view.PlayerChipsChange = &res.ChipsChange
	e.round = nil
	e.mu.Unlock()

	e.settle(ctx, res)
	return &view, nil
}

// result snapshots a terminal round for persistence. Hands are copied
// so the record stays immutable once the slot is cleared.
func (r *Round) result(delta decimal.Decimal) *Result {
	return &Result{
		PlayerID:    r.PlayerID,
		Username:    r.Username,
		BetAmount:   r.Bet,
		PlayerHand:  append([]Card(nil), r.PlayerHand...),
		DealerHand:  append([]Card(nil), r.DealerHand...),
		PlayerScore: r.PlayerScore,
		DealerScore: r.DealerScore,
		Outcome:     r.Status,
		ChipsChange: delta,
	}
}

// settle applies the chip delta and records history outside the lock.
// The outcome already returned to the caller is a gameplay fact, so
// bookkeeping failures are logged and the response stands.
func (e *Engine) settle(ctx context.Context, res *Result) {
	if err := e.accounts.AdjustChips(ctx, res.PlayerID, res.ChipsChange); err != nil {
		e.log.Warn("failed to apply chip delta",
			zap.String("playerId", res.PlayerID),
			zap.String("delta", res.ChipsChange.String()),
			zap.Error(err))
	}
	if err := e.history.AppendResult(ctx, res); err != nil {
		e.log.Warn("failed to record game history",
			zap.String("playerId", res.PlayerID),
			zap.String("outcome", string(res.Outcome)),
			zap.Error(err))
	}
}
