package pasur

// Point values.
const (
	TenOfDiamondsPoints = 3
	TwoOfClubsPoints    = 2
	AcePoints           = 1
	JackPoints          = 1
	SurPoints           = 5
	ClubsMajorityPoints = 7
)

var (
	tenOfDiamonds = NewCard(Ten, Diamonds)
	twoOfClubs    = NewCard(Two, Clubs)
)

// PointValue is what a set of cards is worth as soon as it is taken.
func PointValue(cards []Card) int {
	pts := 0
	for _, c := range cards {
		switch {
		case c == tenOfDiamonds:
			pts += TenOfDiamondsPoints
		case c == twoOfClubs:
			pts += TwoOfClubsPoints
		case c.Rank == Ace:
			pts += AcePoints
		case c.Rank == Jack:
			pts += JackPoints
		}
	}
	return pts
}

// Breakdown is a player's score for the hand, item by item.
type Breakdown struct {
	TenDiamonds   int
	TwoClubs      int
	Aces          int
	Jacks         int
	Surs          int
	ClubsMajority int
	Total         int
}

// ScoreBreakdown scores the captured pile of players[id]. The seven points for the most clubs
// are only counted when final is set, and only when a single player has the most.
func ScoreBreakdown(players []Player, id int, final bool) Breakdown {
	p := players[id]
	var b Breakdown
	for _, c := range p.Captured {
		switch {
		case c == tenOfDiamonds:
			b.TenDiamonds = TenOfDiamondsPoints
		case c == twoOfClubs:
			b.TwoClubs = TwoOfClubsPoints
		case c.Rank == Ace:
			b.Aces += AcePoints
		case c.Rank == Jack:
			b.Jacks += JackPoints
		}
	}
	b.Surs = SurPoints * p.Surs

	if final {
		most, holders := 0, 0
		for _, pl := range players {
			n := clubs(pl.Captured)
			switch {
			case n > most:
				most, holders = n, 1
			case n == most:
				holders++
			}
		}
		if most > 0 && holders == 1 && clubs(p.Captured) == most {
			b.ClubsMajority = ClubsMajorityPoints
		}
	}

	b.Total = b.TenDiamonds + b.TwoClubs + b.Aces + b.Jacks + b.Surs + b.ClubsMajority
	return b
}

func clubs(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.Suit == Clubs {
			n++
		}
	}
	return n
}
