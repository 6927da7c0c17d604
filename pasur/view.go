package pasur

import (
	"encoding/json"
)

// Seat is what everybody at the table knows about a player.
type Seat struct {
	ID         int
	Name       string
	Bot        bool
	HandSize   int
	Hand       []Card `json:",omitempty"` // only filled in for the player the view is for
	Captured   int
	Surs       int
	TotalScore int
	Score      Breakdown
}

// View is a game as seen from one seat: the other players' hands are hidden.
type View struct {
	You        int
	Phase      Phase
	Hand       int
	Turn       int
	LastTaker  int
	DeckSize   int
	Table      []Card
	ActiveCard *Card
	Paused     bool
	Over       bool
	Players    []Seat
	LastHand   []Breakdown `json:",omitempty"`
	Standings  []Standing  `json:",omitempty"`
}

// ViewFor redacts the game for player. Pass NoPlayer for a spectator view without any hand.
func (g *Game) ViewFor(player int) View {
	v := View{
		You:       player,
		Phase:     g.Phase,
		Hand:      g.Hand,
		Turn:      g.Turn,
		LastTaker: g.LastTaker,
		DeckSize:  len(g.Deck),
		Table:     append([]Card{}, g.Table...),
		Paused:    g.paused,
		Over:      g.Phase == PhaseGameOver,
		LastHand:  g.LastHand(),
	}
	if g.ActiveCard != nil {
		c := *g.ActiveCard
		v.ActiveCard = &c
	}
	for i, p := range g.Players {
		s := Seat{
			ID:         p.ID,
			Name:       p.Name,
			Bot:        p.Bot,
			HandSize:   len(p.Hand),
			Captured:   len(p.Captured),
			Surs:       p.Surs,
			TotalScore: p.TotalScore,
			Score:      g.Breakdown(i),
		}
		if i == player {
			s.Hand = append([]Card{}, p.Hand...)
		}
		v.Players = append(v.Players, s)
	}
	if v.Over {
		v.Standings = g.Standings()
	}
	return v
}

// JSONForPlayer is the JSON encoding of ViewFor(player).
func (g *Game) JSONForPlayer(player int) ([]byte, error) {
	return json.Marshal(g.ViewFor(player))
}
