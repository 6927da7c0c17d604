package pasur

// ChooseCard is how the computer plays: the first card of the hand that takes something,
// otherwise the first card of the hand. hand must not be empty.
func ChooseCard(hand, table []Card) Card {
	for _, c := range hand {
		if len(Captures(c, table)) > 0 {
			return c
		}
	}
	return hand[0]
}
