package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"empty hand", nil, 0},
		{"single ace", []Card{{Ace, Spades}}, 11},
		{"blackjack", []Card{{Ace, Spades}, {King, Hearts}}, 21},
		{"two aces", []Card{{Ace, Spades}, {Ace, Hearts}}, 12},
		{"two aces and nine", []Card{{Ace, Spades}, {Ace, Hearts}, {Nine, Clubs}}, 21},
		{"three aces", []Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}}, 13},
		{"face cards", []Card{{Jack, Spades}, {Queen, Hearts}}, 20},
		{"numeric", []Card{{Ten, Spades}, {Five, Hearts}}, 15},
		{"bust", []Card{{Ten, Spades}, {Nine, Hearts}, {Five, Clubs}}, 24},
		{"soft ace hardens", []Card{{Ace, Spades}, {Five, Hearts}, {Ten, Clubs}}, 16},
		{"soft seventeen", []Card{{Ace, Spades}, {Six, Hearts}}, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.hand))
		})
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	hand := []Card{{Ace, Spades}, {Ten, Clubs}, {Five, Hearts}}
	want := Score(hand)

	perms := [][]Card{
		{hand[0], hand[2], hand[1]},
		{hand[1], hand[0], hand[2]},
		{hand[1], hand[2], hand[0]},
		{hand[2], hand[0], hand[1]},
		{hand[2], hand[1], hand[0]},
	}
	for _, p := range perms {
		assert.Equal(t, want, Score(p))
	}
}

func TestScoreNeverDoubleCountsAces(t *testing.T) {
	// Four aces: exactly one may stay soft, 11+1+1+1 = 14.
	hand := []Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {Ace, Clubs}}
	assert.Equal(t, 14, Score(hand))

	// With a ten on top every ace hardens.
	hand = append(hand, Card{Ten, Spades})
	assert.Equal(t, 14, Score(hand))
}
