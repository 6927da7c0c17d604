package pasur

// Eleven is the sum a number card must reach together with the cards it takes.
const Eleven = 11

// Captures returns the table cards that played takes, or nil when it takes nothing.
// The played card itself must not be part of table.
//
//   - A Jack takes every table card that is not a King or a Queen.
//   - A King takes the first King found on the table, a Queen the first Queen.
//   - A number card (Ace included) takes the first combination of summable table cards that
//     brings its value up to exactly eleven.
func Captures(played Card, table []Card) []Card {
	if len(table) == 0 {
		return nil
	}

	switch played.Rank {
	case Jack:
		var out []Card
		for _, c := range table {
			if c.Rank != King && c.Rank != Queen {
				out = append(out, c)
			}
		}
		return out
	case King, Queen:
		for _, c := range table {
			if c.Rank == played.Rank {
				return []Card{c}
			}
		}
		return nil
	}

	var candidates []Card
	for _, c := range table {
		if c.summable() {
			candidates = append(candidates, c)
		}
	}
	picked := make([]int, 0, len(candidates))
	if combo, ok := elevenFrom(candidates, 0, played.Value, picked); ok && len(combo) > 0 {
		out := make([]Card, len(combo))
		for i, idx := range combo {
			out[i] = candidates[idx]
		}
		return out
	}
	return nil
}

// elevenFrom is a depth first search over candidates[start:]. sum already includes the played
// card. The earliest card is always tried first, so the result is the first combination in that
// order, not the largest or the smallest one.
func elevenFrom(candidates []Card, start, sum int, picked []int) ([]int, bool) {
	if sum == Eleven {
		return picked, true
	}
	if sum > Eleven {
		return nil, false
	}
	for i := start; i < len(candidates); i++ {
		if combo, ok := elevenFrom(candidates, i+1, sum+candidates[i].Value, append(picked, i)); ok {
			return combo, true
		}
	}
	return nil, false
}
