package pasur

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// c is shorthand for NewCard.
func c(r Rank, s Suit) Card {
	return NewCard(r, s)
}

func TestCaptures(t *testing.T) {
	tests := []struct {
		name   string
		played Card
		table  []Card
		want   []Card
	}{
		{
			name:   "jack leaves the royals",
			played: c(Jack, Spades),
			table:  []Card{c(Five, Diamonds), c(King, Hearts), c(Queen, Clubs), c(Six, Spades)},
			want:   []Card{c(Five, Diamonds), c(Six, Spades)},
		},
		{
			name:   "jack takes other jacks",
			played: c(Jack, Spades),
			table:  []Card{c(Jack, Hearts), c(Ace, Clubs)},
			want:   []Card{c(Jack, Hearts), c(Ace, Clubs)},
		},
		{
			name:   "jack with only royals",
			played: c(Jack, Hearts),
			table:  []Card{c(King, Clubs), c(Queen, Diamonds)},
			want:   nil,
		},
		{
			name:   "king takes king",
			played: c(King, Diamonds),
			table:  []Card{c(King, Hearts), c(Three, Clubs)},
			want:   []Card{c(King, Hearts)},
		},
		{
			name:   "king takes only the first king",
			played: c(King, Spades),
			table:  []Card{c(Two, Hearts), c(King, Clubs), c(King, Diamonds)},
			want:   []Card{c(King, Clubs)},
		},
		{
			name:   "queen does not take king",
			played: c(Queen, Spades),
			table:  []Card{c(King, Clubs), c(Two, Diamonds)},
			want:   nil,
		},
		{
			name:   "queen takes queen",
			played: c(Queen, Spades),
			table:  []Card{c(Queen, Clubs), c(Queen, Hearts)},
			want:   []Card{c(Queen, Clubs)},
		},
		{
			name:   "seven and four",
			played: c(Seven, Clubs),
			table:  []Card{c(Four, Diamonds), c(Five, Hearts), c(Nine, Spades)},
			want:   []Card{c(Four, Diamonds)},
		},
		{
			name:   "nine and two",
			played: c(Nine, Diamonds),
			table:  []Card{c(Two, Clubs), c(Three, Hearts)},
			want:   []Card{c(Two, Clubs)},
		},
		{
			name:   "first combination in search order, not the smallest",
			played: c(Five, Spades),
			table:  []Card{c(Ace, Diamonds), c(Three, Clubs), c(Six, Hearts), c(Two, Spades)},
			want:   []Card{c(Ace, Diamonds), c(Three, Clubs), c(Two, Spades)},
		},
		{
			name:   "skips a card that overshoots",
			played: c(Six, Clubs),
			table:  []Card{c(Nine, Diamonds), c(Three, Spades), c(Two, Hearts)},
			want:   []Card{c(Three, Spades), c(Two, Hearts)},
		},
		{
			name:   "ace clears four cards",
			played: c(Ace, Spades),
			table:  []Card{c(Two, Hearts), c(Three, Hearts), c(Four, Hearts), c(Ace, Diamonds)},
			want:   []Card{c(Two, Hearts), c(Three, Hearts), c(Four, Hearts), c(Ace, Diamonds)},
		},
		{
			name:   "royals never count towards eleven",
			played: c(Eight, Clubs),
			table:  []Card{c(Jack, Hearts), c(Queen, Hearts), c(King, Hearts), c(Three, Diamonds)},
			want:   []Card{c(Three, Diamonds)},
		},
		{
			name:   "ten and ace",
			played: c(Ten, Clubs),
			table:  []Card{c(Ace, Diamonds)},
			want:   []Card{c(Ace, Diamonds)},
		},
		{
			name:   "no eleven",
			played: c(Ten, Clubs),
			table:  []Card{c(Two, Diamonds), c(Five, Hearts)},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Captures(tt.played, tt.table)
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("Captures(%s, %v) mismatch (-got, +wanted):\n%s", tt.played, tt.table, diff)
			}
		})
	}
}

func TestCapturesEmptyTable(t *testing.T) {
	for _, played := range BuildDeck(Suits, Ranks, Values) {
		if got := Captures(played, nil); got != nil {
			t.Errorf("Captures(%s, []) = %v, want nothing", played, got)
		}
	}
}

func TestCapturesDoesNotTouchTable(t *testing.T) {
	table := []Card{c(Two, Hearts), c(Three, Hearts), c(Four, Hearts), c(Ace, Diamonds)}
	before := append([]Card{}, table...)
	Captures(c(Ace, Spades), table)
	Captures(c(Jack, Spades), table)
	if diff := cmp.Diff(table, before); diff != "" {
		t.Errorf("table changed (-got, +wanted):\n%s", diff)
	}
}

func TestChooseCard(t *testing.T) {
	table := []Card{c(Four, Diamonds), c(King, Clubs)}
	tests := []struct {
		name string
		hand []Card
		want Card
	}{
		{"first card that takes", []Card{c(Two, Hearts), c(King, Hearts), c(Seven, Spades)}, c(King, Hearts)},
		{"nothing takes", []Card{c(Two, Hearts), c(Queen, Hearts)}, c(Two, Hearts)},
		{"single card", []Card{c(Ace, Hearts)}, c(Ace, Hearts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseCard(tt.hand, table); got != tt.want {
				t.Errorf("ChooseCard(%v, %v) = %s, want %s", tt.hand, table, got, tt.want)
			}
		})
	}
}
