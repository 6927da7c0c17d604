// Package pasur implements the rules of a four card "clear the table" game: Jacks sweep the
// small cards, Kings take Kings, Queens take Queens and number cards take combinations that add
// up to eleven.
package pasur

import (
	"encoding/json"
	"fmt"
)

// Suit of a card.
type Suit string

// The different Card Suits.
const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

// Symbol is the printed glyph of the suit.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	}
	return "?"
}

// Rank of a card.
type Rank string

// The thirteen ranks.
const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Suits and Ranks of the standard deck, in canonical order.
var (
	Suits = []Suit{Clubs, Diamonds, Hearts, Spades}
	Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Values maps a rank to the number used when adding cards up to eleven.
// Royals are 11 and above and never take part in a sum.
var Values = map[Rank]int{
	Ace:   1,
	Two:   2,
	Three: 3,
	Four:  4,
	Five:  5,
	Six:   6,
	Seven: 7,
	Eight: 8,
	Nine:  9,
	Ten:   10,
	Jack:  11,
	Queen: 12,
	King:  13,
}

// Card is a Card that is in the game.
type Card struct {
	Suit  Suit
	Rank  Rank
	Value int
}

// NewCard builds a card of the standard deck.
func NewCard(r Rank, s Suit) Card {
	return Card{Suit: s, Rank: r, Value: Values[r]}
}

// String is the human readable representation of the card, e.g. "10♦".
func (c Card) String() string {
	return string(c.Rank) + c.Suit.Symbol()
}

// summable is true for the cards that can be part of an eleven.
func (c Card) summable() bool {
	return c.Value < 11
}

// MarshalJSON customizes the Card JSON representation to include a "Name" field.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Suit  Suit
		Rank  Rank
		Value int
		Name  string
	}{
		c.Suit,
		c.Rank,
		c.Value,
		c.String(),
	})
}

// UnmarshalJSON accepts the MarshalJSON form; Name is ignored and Value is derived from Rank
// when it is missing. A Value that doesn't match the Rank is an error.
func (c *Card) UnmarshalJSON(b []byte) error {
	var v struct {
		Suit  Suit
		Rank  Rank
		Value int
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if _, ok := Values[v.Rank]; !ok {
		return fmt.Errorf("unknown rank %q", v.Rank)
	}
	if v.Suit.Symbol() == "?" {
		return fmt.Errorf("unknown suit %q", v.Suit)
	}
	if v.Value == 0 {
		v.Value = Values[v.Rank]
	}
	if v.Value != Values[v.Rank] {
		return fmt.Errorf("%s%s is worth %d, not %d", v.Rank, v.Suit.Symbol(), Values[v.Rank], v.Value)
	}
	*c = Card{Suit: v.Suit, Rank: v.Rank, Value: v.Value}
	return nil
}

func contains(c Card, s []Card) bool {
	return index(c, s) >= 0
}

func index(c Card, s []Card) int {
	for i, x := range s {
		if x == c {
			return i
		}
	}
	return -1
}

// without returns a copy of s with every card of drop removed.
func without(s []Card, drop ...Card) []Card {
	out := make([]Card, 0, len(s))
	for _, c := range s {
		if !contains(c, drop) {
			out = append(out, c)
		}
	}
	return out
}
