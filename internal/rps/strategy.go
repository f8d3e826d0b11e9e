package rps

// Resolution is the AI move plus how it was picked.
type Resolution struct {
	Move     Move
	Optimal  Move
	Followed bool
}

// ResolveAIMove plays the counter of the prediction, or a uniform random
// move when the tier roll fails. The random move may equal the counter.
func ResolveAIMove(pred Prediction, tier Tier, policy DifficultyPolicy, src Source) Resolution {
	optimal := Counter(pred.PredictedMove)
	if !optimal.Valid() {
		return Resolution{Move: RandomMove(src), Optimal: optimal}
	}
	if policy.ShouldFollow(tier, src) {
		return Resolution{Move: optimal, Optimal: optimal, Followed: true}
	}
	return Resolution{Move: RandomMove(src), Optimal: optimal}
}
