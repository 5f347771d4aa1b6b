package game

import "github.com/shopspring/decimal"

// RoundView is the caller-facing shape of a round. While the round is
// in play the dealer's hole card is masked and the dealer score covers
// the visible card only; terminal views reveal everything.
type RoundView struct {
	PlayerHand        []Card           `json:"playerHand"`
	DealerHand        []Card           `json:"dealerHand"`
	PlayerScore       int              `json:"playerScore"`
	DealerScore       int              `json:"dealerScore"`
	Status            Status           `json:"status"`
	PlayerChipsChange *decimal.Decimal `json:"playerChipsChange,omitempty"`
}

// VisibleView projects an in-play round with the dealer's second card
// masked. Masking is presentation only; the round keeps the true
// two-card dealer score internally.
func VisibleView(r *Round) RoundView {
	dealerHand := []Card{HiddenCard}
	dealerScore := 0
	if len(r.DealerHand) > 0 {
		dealerHand = []Card{r.DealerHand[0], HiddenCard}
		dealerScore = Score(r.DealerHand[:1])
	}

	return RoundView{
		PlayerHand:  append([]Card(nil), r.PlayerHand...),
		DealerHand:  dealerHand,
		PlayerScore: r.PlayerScore,
		DealerScore: dealerScore,
		Status:      r.Status,
	}
}

// ResolvedView projects a terminal round with the full dealer hand and
// score revealed.
func ResolvedView(r *Round) RoundView {
	return RoundView{
		PlayerHand:  append([]Card(nil), r.PlayerHand...),
		DealerHand:  append([]Card(nil), r.DealerHand...),
		PlayerScore: r.PlayerScore,
		DealerScore: r.DealerScore,
		Status:      r.Status,
	}
}
