package pasur

import (
	"math/rand"
)

// DeckSize is the number of cards in the standard deck.
const DeckSize = 52

// BuildDeck constructs one card per suit/rank pair, suit major.
func BuildDeck(suits []Suit, ranks []Rank, values map[Rank]int) []Card {
	d := make([]Card, 0, len(suits)*len(ranks))
	for _, s := range suits {
		for _, r := range ranks {
			d = append(d, Card{Suit: s, Rank: r, Value: values[r]})
		}
	}
	return d
}

// Shuffle permutes cards in place with Fisher-Yates using rng.
func Shuffle(rng *rand.Rand, cards []Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// NewDeck creates a newly shuffled standard deck.
func NewDeck(rng *rand.Rand) []Card {
	d := BuildDeck(Suits, Ranks, Values)
	Shuffle(rng, d)
	return d
}

// StackedDeck returns a standard deck whose first cards are top, followed by the rest of the
// deck in canonical order. Handy for replaying a known deal.
func StackedDeck(top ...Card) []Card {
	return append(append([]Card{}, top...), without(BuildDeck(Suits, Ranks, Values), top...)...)
}

// draw removes n cards from the front of the deck. It returns fewer when the deck runs out.
func draw(deck *[]Card, n int) []Card {
	if n > len(*deck) {
		n = len(*deck)
	}
	out := append([]Card{}, (*deck)[:n]...)
	*deck = (*deck)[n:]
	return out
}
