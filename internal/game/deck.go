package game

import (
	"errors"
	"math/rand"
	"time"
)

// ErrDeckExhausted is returned when a card is drawn from an empty deck.
// A single round of heads-up blackjack can never run a 52-card deck dry,
// so callers treat this as an internal failure, not a game outcome.
var ErrDeckExhausted = errors.New("deck exhausted")

type Deck struct {
	Cards []Card
}

// NewDeck returns the full 52-card catalogue in suit/rank order.
func NewDeck() *Deck {
	suits := []Suit{Spades, Hearts, Diamonds, Clubs}
	ranks := []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

	deck := &Deck{Cards: make([]Card, 0, len(suits)*len(ranks))}
	for _, suit := range suits {
		for _, rank := range ranks {
			deck.Cards = append(deck.Cards, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// NewShuffledDeck returns a freshly shuffled 52-card deck.
func NewShuffledDeck() *Deck {
	d := NewDeck()
	d.Shuffle()
	return d
}

// Shuffle randomizes the deck in place with a Fisher-Yates shuffle.
func (d *Deck) Shuffle() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := len(d.Cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw removes and returns the top card. The end of the slice is the top.
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, ErrDeckExhausted
	}

	card := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
