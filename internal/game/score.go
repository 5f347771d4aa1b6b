package game

// Score calculates the blackjack value of a hand, accounting for aces.
// It is a pure function of the hand's contents: every ace is counted as
// 11 first, then downgraded to 1 one at a time while the total busts.
func Score(hand []Card) int {
	score := 0
	aces := 0

	for _, card := range hand {
		if card.Rank == Ace {
			aces++
		}
		score += card.Value()
	}

	for aces > 0 && score > 21 {
		score -= 10
		aces--
	}

	return score
}
