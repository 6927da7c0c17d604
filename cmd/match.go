package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sbadame/pasur/pasur"
	"go.uber.org/zap"
)

type seat struct {
	client chan pasur.Event
	nick   string
}

// Match contains all of the state for a server coordinating a pasur match.
type Match struct {
	sync.Mutex
	ID        string
	cfg       pasur.Config
	game      *pasur.Game
	clock     pasur.Scheduler
	rng       *rand.Rand
	logs      []string
	gameStart chan struct{} // Channel is closed when the game has started.
	seats     []seat
	stopped   bool
	log       *zap.Logger
}

// wallClock runs game continuations on real timers while holding the match lock.
type wallClock struct {
	mu sync.Locker
}

func (c wallClock) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		fn()
	})
}

func newMatch(cfg pasur.Config, rng *rand.Rand, log *zap.Logger) *Match {
	m := &Match{
		ID:        uuid.NewString(),
		cfg:       cfg,
		rng:       rng,
		gameStart: make(chan struct{}),
	}
	m.log = log.With(zap.String("match", m.ID))
	m.clock = wallClock{&m.Mutex}
	return m
}

// addPlayer seats nick and returns the seat and the channel game events are pushed to.
// Joining again with the same nickname and match ID hands out a fresh channel for the same seat.
// The game starts once every human seat is taken.
func (m *Match) addPlayer(matchID, nick string) (int, chan pasur.Event, error) {
	m.Lock()
	defer m.Unlock()

	if m.stopped {
		return 0, nil, fmt.Errorf("match %s is over", m.ID)
	}
	if matchID == m.ID {
		for i, s := range m.seats {
			if s.nick == nick {
				close(s.client) // The old connection's loop returns.
				m.seats[i].client = make(chan pasur.Event, 1000)
				return i, m.seats[i].client, nil
			}
		}
	}

	if len(m.seats) >= m.cfg.Humans {
		return 0, nil, fmt.Errorf("match is full")
	}
	for _, s := range m.seats {
		if s.nick == nick {
			return 0, nil, fmt.Errorf("nickname %s is already taken", nick)
		}
	}

	updates := make(chan pasur.Event, 1000)
	m.seats = append(m.seats, seat{updates, nick})
	m.log.Info("player joined", zap.String("nick", nick), zap.Int("seat", len(m.seats)-1))

	if len(m.seats) == m.cfg.Humans {
		if err := m.start(); err != nil {
			return 0, nil, err
		}
	}
	return len(m.seats) - 1, updates, nil
}

// start must be called with the lock held.
func (m *Match) start() error {
	cfg := m.cfg
	cfg.Names = nil
	for _, s := range m.seats {
		cfg.Names = append(cfg.Names, s.nick)
	}
	g, err := pasur.NewGame(cfg,
		pasur.WithScheduler(m.clock),
		pasur.WithRand(m.rng),
		pasur.WithLogger(m.log))
	if err != nil {
		return err
	}
	m.game = g
	g.Subscribe(m.notify)
	g.Start()
	m.logs = append(m.logs, fmt.Sprintf("started: %v", cfg.Names))
	close(m.gameStart) // Broadcast that the game is ready to start to all clients.
	return nil
}

// notify runs with the lock held, from inside the game.
func (m *Match) notify(e pasur.Event) {
	switch e.Kind {
	case pasur.EventCapture:
		m.logs = append(m.logs, fmt.Sprintf("seat %d took %v for %d", e.Player, e.Cards, e.Points))
	case pasur.EventHandEnd:
		m.logs = append(m.logs, fmt.Sprintf("hand %d over", m.game.Hand))
	case pasur.EventGameEnd:
		m.logs = append(m.logs, fmt.Sprintf("game over: %v", e.Standings))
		m.log.Info("game over", zap.Any("standings", e.Standings))
	}

	// Update all of the clients, that there is some new state.
	for _, s := range m.seats {
		select {
		case s.client <- e:
		default:
			m.log.Warn("client channel full", zap.String("nick", s.nick))
		}
	}
}

func (m *Match) play(seat int, card pasur.Card) error {
	m.Lock()
	defer m.Unlock()

	if m.game == nil {
		return &pasur.MoveError{Message: "the game hasn't started"}
	}
	if err := m.game.CanPlay(seat, card); err != nil {
		m.logs = append(m.logs, fmt.Sprintf("FAIL play: seat %d, %s: %v", seat, card, err))
		return err
	}
	m.game.PlayCard(seat, card)
	m.logs = append(m.logs, fmt.Sprintf("play: seat %d, %s", seat, card))
	return nil
}

func (m *Match) pause(pause bool) error {
	m.Lock()
	defer m.Unlock()

	if m.game == nil {
		return &pasur.MoveError{Message: "the game hasn't started"}
	}
	if pause {
		m.game.Pause()
	} else {
		m.game.Resume()
	}
	return nil
}

// stop ends the game of a match that is being replaced.
func (m *Match) stop() {
	m.Lock()
	defer m.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.game != nil {
		m.game.Stop()
	} else {
		close(m.gameStart) // Release anyone waiting for a game that will never start.
	}
	for _, s := range m.seats {
		close(s.client)
	}
	m.seats = nil
}

func (m *Match) view(seat int) ([]byte, error) {
	m.Lock()
	defer m.Unlock()
	if m.game == nil {
		return nil, fmt.Errorf("match %s was stopped before it started", m.ID)
	}
	return m.game.JSONForPlayer(seat)
}

// nicknames of every seat, bots included.
func (m *Match) nicknames() map[int]string {
	m.Lock()
	defer m.Unlock()

	n := make(map[int]string)
	if m.game == nil {
		return n
	}
	for _, p := range m.game.Players {
		n[p.ID] = p.Name
	}
	return n
}
