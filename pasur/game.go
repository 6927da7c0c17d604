package pasur

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Phase is where a game is in its deal, play, score cycle.
type Phase int

// The game phases.
const (
	PhaseIdle Phase = iota
	PhaseDealing
	PhaseAwaitingPlay
	PhaseResolving
	PhaseRedealing
	PhaseHandEnding
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDealing:
		return "dealing"
	case PhaseAwaitingPlay:
		return "awaiting play"
	case PhaseResolving:
		return "resolving"
	case PhaseRedealing:
		return "redealing"
	case PhaseHandEnding:
		return "hand ending"
	case PhaseGameOver:
		return "game over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText makes phases readable in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Option customizes NewGame.
type Option func(*Game)

// WithScheduler sets what paces the game. The default is a VirtualClock that nobody advances,
// which is only useful to callers that drive every step themselves.
func WithScheduler(s Scheduler) Option {
	return func(g *Game) { g.clock = s }
}

// WithRand sets the source the decks are shuffled with.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithDeck replaces the shuffled deck of every hand with the one next returns.
// next must return a full 52 card deck; its first cards are dealt first.
func WithDeck(next func() []Card) Option {
	return func(g *Game) { g.newDeck = next }
}

// WithLogger sets the logger plays, captures and hand results are logged to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) { g.log = l }
}

type subscriber struct {
	id int
	fn func(Event)
}

// Game is a struct that exposes all of the state of a game: the current hand and the running
// scores. It is not safe for concurrent use; the Scheduler must run continuations one at a time
// with respect to the other calls.
type Game struct {
	Config     Config
	Pacing     Pacing
	Phase      Phase
	Hand       int // number of the current hand, starting at 1
	Deck       []Card
	Table      []Card
	Players    []Player
	Turn       int
	LastTaker  int
	ActiveCard *Card // the card that was just played, until it takes or stays

	active     bool
	paused     bool
	dealing    bool
	processing bool
	handEnding bool
	epoch      int    // bumped on Start and Stop so stale continuations do nothing
	botSeq     int
	lastHand   []Breakdown

	clock   Scheduler
	rng     *rand.Rand
	newDeck func() []Card
	log     *zap.Logger
	subs    []subscriber
	nextSub int
}

// NewGame creates a game for cfg. Nothing is dealt until Start.
func NewGame(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		Config:    cfg,
		Pacing:    PacingFor(cfg.GameSpeed),
		LastTaker: NoPlayer,
	}
	for _, o := range opts {
		o(g)
	}
	if g.clock == nil {
		g.clock = NewVirtualClock()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.newDeck == nil {
		g.newDeck = func() []Card { return NewDeck(g.rng) }
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}

	for i := 0; i < cfg.PlayerCount; i++ {
		p := Player{ID: i, Bot: i >= cfg.Humans, Difficulty: cfg.BotDifficulty}
		switch {
		case i < len(cfg.Names) && cfg.Names[i] != "":
			p.Name = cfg.Names[i]
		case p.Bot:
			p.Name = fmt.Sprintf("Robot %d", i)
		default:
			p.Name = fmt.Sprintf("Player %d", i+1)
		}
		g.Players = append(g.Players, p)
	}
	return g, nil
}

// Subscribe registers fn to be called with every event. fn runs on the goroutine that caused
// the event and must not call back into the game. The returned func unsubscribes.
func (g *Game) Subscribe(fn func(Event)) func() {
	g.nextSub++
	id := g.nextSub
	g.subs = append(g.subs, subscriber{id, fn})
	return func() {
		for i, s := range g.subs {
			if s.id == id {
				g.subs = append(g.subs[:i:i], g.subs[i+1:]...)
				return
			}
		}
	}
}

func (g *Game) emit(e Event) {
	for _, s := range g.subs {
		s.fn(e)
	}
}

func (g *Game) changed() {
	g.emit(Event{Kind: EventStateChanged, Player: g.Turn})
}

// later schedules fn unless the game has been restarted or stopped in the meantime.
func (g *Game) later(d time.Duration, fn func()) {
	epoch := g.epoch
	g.clock.After(d, func() {
		if g.epoch != epoch {
			return
		}
		fn()
	})
}

// Start begins a new game with every score at zero and deals the first hand.
func (g *Game) Start() {
	g.epoch++
	for i, p := range g.Players {
		g.Players[i] = Player{ID: p.ID, Name: p.Name, Bot: p.Bot, Difficulty: p.Difficulty}
	}
	g.Turn = 0
	g.Hand = 0
	g.lastHand = nil
	g.active = true
	g.paused = false
	g.dealing = false
	g.processing = false
	g.log.Debug("game started", zap.Int("players", len(g.Players)), zap.Int("target", g.Config.TargetScore))
	g.startHand()
}

// Stop ends the game where it is. Continuations that are still scheduled do nothing.
func (g *Game) Stop() {
	if !g.active {
		return
	}
	g.epoch++
	g.active = false
	g.dealing = false
	g.processing = false
	g.ActiveCard = nil
	g.log.Debug("game stopped", zap.Int("hand", g.Hand))
	g.changed()
}

// Pause stops bots from playing and plays from being accepted. A play whose card is still being
// shown is dropped when it would resolve: the card stays on the table and the turn does not move.
func (g *Game) Pause() {
	if !g.active || g.paused {
		return
	}
	g.paused = true
	g.changed()
}

// Resume undoes Pause.
func (g *Game) Resume() {
	if !g.active || !g.paused {
		return
	}
	g.paused = false
	g.changed()
	if g.Phase == PhaseAwaitingPlay && len(g.Players[g.Turn].Hand) == 0 {
		// The dropped play was this player's last card.
		g.processing = true
		g.advance()
		return
	}
	if g.Phase == PhaseAwaitingPlay && g.Players[g.Turn].Bot {
		g.armBot(g.Pacing.ResumeBot)
	}
}

// Live is true from Start until the game is over or stopped.
func (g *Game) Live() bool {
	return g.active
}

// Paused is true between Pause and Resume.
func (g *Game) Paused() bool {
	return g.paused
}

// Busy is true while cards are being dealt or a play is being resolved.
func (g *Game) Busy() bool {
	return g.dealing || g.processing
}

func (g *Game) startHand() {
	if !g.active {
		return
	}
	g.Hand++
	g.handEnding = false
	g.Deck = append([]Card(nil), g.newDeck()...)
	for i := range g.Players {
		g.Players[i].Hand = nil
		g.Players[i].Captured = nil
		g.Players[i].Surs = 0
	}
	g.Table = nil
	g.LastTaker = NoPlayer
	g.ActiveCard = nil

	g.Phase = PhaseDealing
	g.dealing = true
	g.Table = append(g.Table, draw(&g.Deck, HandSize)...)
	for i := range g.Players {
		g.Players[i].Hand = append(g.Players[i].Hand, draw(&g.Deck, HandSize)...)
	}
	g.dealing = false
	g.log.Debug("hand dealt", zap.Int("hand", g.Hand), zap.String("table", fmt.Sprint(g.Table)))

	g.Phase = PhaseAwaitingPlay
	g.changed()
	g.checkTurn()
}

// dealRound gives everybody another HandSize cards. The table is left alone.
func (g *Game) dealRound() {
	if !g.active {
		return
	}
	if len(g.Deck) == 0 {
		g.concludeHand()
		return
	}
	g.Phase = PhaseDealing
	g.dealing = true
	for i := range g.Players {
		g.Players[i].Hand = append(g.Players[i].Hand, draw(&g.Deck, HandSize)...)
	}
	g.dealing = false
	g.log.Debug("round dealt", zap.Int("hand", g.Hand), zap.Int("deck", len(g.Deck)))

	g.Phase = PhaseAwaitingPlay
	g.changed()
	g.checkTurn()
}

func (g *Game) checkTurn() {
	if !g.active {
		return
	}
	g.Phase = PhaseAwaitingPlay
	if g.Players[g.Turn].Bot && !g.paused {
		g.armBot(g.Pacing.BotThink)
	}
}

// armBot schedules the bot whose turn it is. Only the most recently armed bot move counts.
func (g *Game) armBot(d time.Duration) {
	g.botSeq++
	seq, seat := g.botSeq, g.Turn
	g.later(d, func() {
		if seq != g.botSeq {
			return
		}
		g.botMove(seat)
	})
}

func (g *Game) botMove(seat int) {
	if !g.active || g.paused || g.Busy() || g.Turn != seat || g.Phase != PhaseAwaitingPlay {
		return
	}
	p := g.Players[seat]
	if len(p.Hand) == 0 {
		return
	}
	g.PlayCard(seat, ChooseCard(p.Hand, g.Table))
}

// CanPlay explains why PlayCard would turn the play down, or returns nil if it would not.
func (g *Game) CanPlay(player int, card Card) error {
	switch {
	case !g.active:
		return moveErrorf("the game is not running")
	case g.paused:
		return moveErrorf("the game is paused")
	case g.dealing || g.processing || g.handEnding:
		return moveErrorf("wait for the last play to finish")
	case player < 0 || player >= len(g.Players):
		return moveErrorf("there is no player %d", player)
	case player != g.Turn:
		return moveErrorf("it is %s's turn", g.Players[g.Turn].Name)
	}
	return g.Players[player].holds(card)
}

// PlayCard puts card from player's hand on the table and, after Pacing.Reveal, takes whatever
// it can. It returns false, and changes nothing, when the play is not allowed right now; see
// CanPlay for the reason.
func (g *Game) PlayCard(player int, card Card) bool {
	if err := g.CanPlay(player, card); err != nil {
		g.log.Debug("play ignored", zap.Int("player", player), zap.Stringer("card", card), zap.Error(err))
		return false
	}

	p := &g.Players[player]
	g.processing = true
	g.Phase = PhaseResolving
	p.Hand = without(p.Hand, card)
	g.Table = append(g.Table, card)
	active := card
	g.ActiveCard = &active
	g.log.Debug("card played", zap.Int("player", player), zap.Stringer("card", card))
	g.changed()

	g.later(g.Pacing.Reveal, func() { g.resolve(player, card) })
	return true
}

// resolve takes the cards that card captures and moves the turn on.
func (g *Game) resolve(player int, card Card) {
	if !g.active {
		g.processing = false
		return
	}
	if g.paused {
		g.processing = false
		g.ActiveCard = nil
		g.Phase = PhaseAwaitingPlay
		g.log.Debug("play dropped by pause", zap.Int("player", player), zap.Stringer("card", card))
		g.changed()
		return
	}
	g.ActiveCard = nil

	takes := Captures(card, without(g.Table, card))
	if len(takes) == 0 {
		g.advance()
		return
	}

	p := &g.Players[player]
	taken := append([]Card{card}, takes...)
	p.Captured = append(p.Captured, taken...)
	g.Table = without(g.Table, taken...)
	g.LastTaker = player
	points := PointValue(taken)

	sur := g.isSur(card)
	var cancelled []int
	if sur {
		p.Surs++
		points += SurPoints
		if g.Config.CancelOpponentSur {
			for i := range g.Players {
				if i != player && g.Players[i].Surs > 0 {
					g.Players[i].Surs--
					cancelled = append(cancelled, i)
				}
			}
		}
	}
	g.log.Debug("capture",
		zap.Int("player", player),
		zap.String("cards", fmt.Sprint(taken)),
		zap.Int("points", points),
		zap.Bool("sur", sur))

	g.emit(Event{Kind: EventCapture, Player: player, Cards: taken, Points: points})
	if sur {
		g.emit(Event{Kind: EventSur, Player: player, Points: SurPoints})
		for _, i := range cancelled {
			g.emit(Event{Kind: EventSurCancelled, Player: i, Points: -SurPoints})
		}
	}
	g.changed()

	g.later(g.Pacing.CaptureHold, g.advance)
}

// isSur is called right after a capture: clearing the table is a sur, except with a Jack or
// with the very last card of the hand unless the rules allow those.
func (g *Game) isSur(card Card) bool {
	if len(g.Table) > 0 {
		return false
	}
	if card.Rank == Jack && !g.Config.AllowJackSur {
		return false
	}
	if len(g.Deck) == 0 && g.emptyHands() && !g.Config.AllowLastCardSur {
		return false
	}
	return true
}

func (g *Game) emptyHands() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// advance passes the turn on once a play has fully resolved, then deals or ends the hand when
// everybody is out of cards.
func (g *Game) advance() {
	if !g.active {
		g.processing = false
		return
	}
	g.ActiveCard = nil
	g.Turn = (g.Turn + 1) % len(g.Players)
	g.processing = false

	if g.emptyHands() {
		if len(g.Deck) == 0 {
			g.concludeHand()
			return
		}
		g.Phase = PhaseRedealing
		g.changed()
		g.later(g.Pacing.Redeal, g.dealRound)
		return
	}
	g.Phase = PhaseAwaitingPlay
	g.changed()
	g.checkTurn()
}

// concludeHand gives the table to the last player who took, adds up the hand and either ends
// the game or starts the next hand. When nobody took anything all hand, the table cards are
// left where they are and count for nobody.
func (g *Game) concludeHand() {
	if g.handEnding {
		return
	}
	g.handEnding = true
	g.Phase = PhaseHandEnding

	if g.LastTaker != NoPlayer {
		p := &g.Players[g.LastTaker]
		p.Captured = append(p.Captured, g.Table...)
		g.Table = nil
	}

	g.lastHand = make([]Breakdown, len(g.Players))
	for i := range g.Players {
		g.lastHand[i] = ScoreBreakdown(g.Players, i, true)
	}
	best := 0
	for i := range g.Players {
		g.Players[i].TotalScore += g.lastHand[i].Total
		if g.Players[i].TotalScore > best {
			best = g.Players[i].TotalScore
		}
	}
	g.log.Debug("hand over", zap.Int("hand", g.Hand), zap.Int("best", best), zap.Int("lastTaker", g.LastTaker))
	g.emit(Event{Kind: EventHandEnd, Players: clonePlayers(g.Players)})

	if best >= g.Config.TargetScore {
		g.active = false
		g.Phase = PhaseGameOver
		g.changed()
		g.emit(Event{Kind: EventGameEnd, Standings: g.Standings()})
		return
	}
	g.changed()
	g.later(g.Pacing.HandBreak, g.startHand)
}

// Standings are the players by total score, highest first. Ties keep seat order.
func (g *Game) Standings() []Standing {
	s := make([]Standing, 0, len(g.Players))
	for _, p := range g.Players {
		s = append(s, Standing{ID: p.ID, Name: p.Name, TotalScore: p.TotalScore})
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].TotalScore > s[j].TotalScore })
	return s
}

// Breakdown is the running score of a player in the current hand, without the clubs majority.
func (g *Game) Breakdown(player int) Breakdown {
	return ScoreBreakdown(g.Players, player, false)
}

// LastHand is the final breakdown of every player for the most recently finished hand.
func (g *Game) LastHand() []Breakdown {
	return append([]Breakdown(nil), g.lastHand...)
}

// Check verifies that every card of the deck is in exactly one place.
func (g *Game) Check() error {
	seen := make(map[Card]string, DeckSize)
	add := func(where string, cards []Card) error {
		for _, c := range cards {
			if prev, ok := seen[c]; ok {
				return fmt.Errorf("%s is both in %s and in %s", c, prev, where)
			}
			seen[c] = where
		}
		return nil
	}
	if err := add("the deck", g.Deck); err != nil {
		return err
	}
	if err := add("the table", g.Table); err != nil {
		return err
	}
	for _, p := range g.Players {
		if err := add(p.Name+"'s hand", p.Hand); err != nil {
			return err
		}
		if err := add(p.Name+"'s pile", p.Captured); err != nil {
			return err
		}
		if p.Surs < 0 {
			return fmt.Errorf("%s has %d surs", p.Name, p.Surs)
		}
	}
	for _, c := range BuildDeck(Suits, Ranks, Values) {
		if _, ok := seen[c]; !ok {
			return fmt.Errorf("%s is missing", c)
		}
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("failed %d card check, found %d", DeckSize, len(seen))
	}
	return nil
}
