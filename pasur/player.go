package pasur

import (
	"fmt"
)

// HandSize is how many cards each deal puts in a hand, and on the table at the start of a hand.
const HandSize = 4

// NoPlayer is the LastTaker of a hand in which nobody has taken anything yet.
const NoPlayer = -1

// Player is a participant in the game.
type Player struct {
	ID         int
	Name       string
	Hand       []Card
	Captured   []Card
	TotalScore int
	Surs       int
	Bot        bool
	Difficulty Difficulty
}

func (p Player) holds(card Card) error {
	if contains(card, p.Hand) {
		return nil
	}
	return moveErrorf("%s doesn't have %s in their hand: %v", p.Name, card, p.Hand)
}

func (p Player) clone() Player {
	p.Hand = append([]Card(nil), p.Hand...)
	p.Captured = append([]Card(nil), p.Captured...)
	return p
}

func clonePlayers(ps []Player) []Player {
	out := make([]Player, len(ps))
	for i, p := range ps {
		out[i] = p.clone()
	}
	return out
}

// MoveError is used when a player is attempting a move that the game won't accept.
type MoveError struct {
	Message string
}

func (e *MoveError) Error() string {
	return e.Message
}

func moveErrorf(format string, a ...interface{}) error {
	return &MoveError{fmt.Sprintf(format, a...)}
}
