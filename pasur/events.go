package pasur

// EventKind identifies what happened in a game.
type EventKind string

// Event kinds, one per notification a view needs.
const (
	EventStateChanged EventKind = "state_changed"
	EventCapture      EventKind = "capture"
	EventSur          EventKind = "sur"
	EventSurCancelled EventKind = "sur_cancelled"
	EventHandEnd      EventKind = "hand_end"
	EventGameEnd      EventKind = "game_end"
)

// Event is sent to subscribers after the game state it describes is in place.
//
//   - capture: Player took Cards (the played card first) and gained Points, sur included.
//   - sur: Player cleared the table.
//   - sur_cancelled: Player lost one of their surs, Points is the (negative) change.
//   - hand_end: Players with their final captured piles and updated totals.
//   - game_end: Standings.
type Event struct {
	Kind      EventKind
	Player    int
	Cards     []Card
	Points    int
	Players   []Player
	Standings []Standing
}

// Standing is a player's place in the final results.
type Standing struct {
	ID         int
	Name       string
	TotalScore int
}
