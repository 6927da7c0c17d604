package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sbadame/pasur/autoreload"
	"github.com/sbadame/pasur/pasur"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/net/websocket"
)

var (
	httpPort    = flag.Int("http_port", 8080, "The port to listen on for http requests.")
	random      = flag.Bool("random", false, "When set to true, actually uses a random seed.")
	httpsPort   = flag.Int("https_port", 8081, "The port to listen on for https requests.")
	httpsHost   = flag.String("https_host", "", "Set this to the hostname to get a Let's Encrypt SSL certificate for.")
	rulesFile   = flag.String("rules_file", "", "TOML file with the rules of the game. Flags below override it.")
	players     = flag.Int("players", 0, "Number of seats at the table, 2 to 4.")
	humans      = flag.Int("humans", 0, "How many seats are for people, the rest are played by the computer.")
	targetScore = flag.Int("target_score", 0, "The game ends after the hand in which somebody reaches this score.")
	gameSpeed   = flag.Int("game_speed", 0, "1 (slow), 2 or 3 (fast).")
	tokenSecret = flag.String("token_secret", "", "Key the seat tokens are signed with. Random when empty.")
	debug       = flag.Bool("debug", false, "Log at debug level in a human readable format.")
	reload      = flag.Bool("autoreload", false, "Restart when the binary is replaced.")

	// Populated at compile time with `go build/run -ldflags "-X main.gitCommit=$(git rev-parse HEAD)"`
	gitCommit string
)

type errorMessage struct {
	Message string
}

type playRequest struct {
	Card pasur.Card
}

type server struct {
	mu       sync.Mutex
	m        *Match
	cfg      pasur.Config
	secret   []byte
	tokenTTL time.Duration
	seed     func() int64
	log      *zap.Logger
}

func newServer(cfg pasur.Config, secret []byte, seed func() int64, log *zap.Logger) *server {
	s := &server{cfg: cfg, secret: secret, tokenTTL: 12 * time.Hour, seed: seed, log: log}
	s.m = s.freshMatch()
	return s
}

func (s *server) freshMatch() *Match {
	return newMatch(s.cfg, rand.New(rand.NewSource(s.seed())), s.log)
}

func (s *server) current() *Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

// replace swaps in a new match if the current one is old, or unconditionally when old is "".
func (s *server) replace(old string) {
	s.mu.Lock()
	prev := s.m
	if old != "" && old != prev.ID {
		s.mu.Unlock()
		return
	}
	next := s.freshMatch()
	s.m = next
	s.mu.Unlock()

	prev.stop()
	s.log.Info("new match", zap.String("old", prev.ID), zap.String("match", next.ID))
}

func (s *server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	// Serve resources.
	e.Static("/", "web")
	e.GET("/join", echo.WrapHandler(websocket.Handler(s.join)))
	e.GET("/debug", s.debug)
	e.GET("/matchID", s.matchID)
	e.POST("/play", s.play)
	e.POST("/pause", s.pause)
	e.POST("/resume", s.resume)
	e.POST("/newMatch", s.newMatch)
	e.POST("/reset", s.reset)
	return e
}

// Wrap error messages into json so that javascript client code can always expect json.
func (s *server) errorHandler(err error, c echo.Context) {
	code, msg := http.StatusInternalServerError, err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, msg = he.Code, fmt.Sprint(he.Message)
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, errorMessage{msg}); err != nil {
		s.log.Warn("couldn't write error response", zap.Error(err))
	}
}

func (s *server) debug(c echo.Context) error {
	var b strings.Builder
	if len(gitCommit) > 0 {
		fmt.Fprintf(&b, "Version: git checkout %s\n", gitCommit)
	} else {
		b.WriteString("Built with an unknown git version (-X main.gitCommit was not set)\n")
	}

	m := s.current()
	m.Lock()
	defer m.Unlock()

	fmt.Fprintf(&b, "MatchID: %s\n", m.ID)
	for i, p := range m.seats {
		fmt.Fprintf(&b, "Seat %d: %s\n", i, p.nick)
	}
	if m.game != nil {
		fmt.Fprintf(&b, "Phase: %v, hand %d, turn %d\n", m.game.Phase, m.game.Hand, m.game.Turn)
	}
	for _, n := range m.logs {
		b.WriteString(n)
		b.WriteString("\n")
	}
	return c.String(http.StatusOK, b.String())
}

func (s *server) join(ws *websocket.Conn) {
	match := s.current()
	errorf := func(format string, a ...interface{}) {
		websocket.JSON.Send(ws, errorMessage{fmt.Sprintf(format, a...)})
		ws.Close()
	}

	matchID := ws.Request().FormValue("MatchID")
	if matchID == "null" || matchID == "undefined" {
		matchID = ""
	}

	nick := ws.Request().FormValue("Nickname")
	if nick == "" {
		errorf("Nickname field needs to be set.")
		return
	}

	seat, updates, err := match.addPlayer(matchID, nick)
	if err != nil {
		errorf("%s", err)
		return
	}

	token, err := s.issueToken(seatClaims{MatchID: match.ID, Seat: seat, Nick: nick})
	if err != nil {
		errorf("Couldn't sign the seat token: %v", err)
		return
	}
	joined := struct {
		MatchID string
		Seat    int
		Token   string
	}{match.ID, seat, token}
	if err := websocket.JSON.Send(ws, joined); err != nil {
		s.log.Warn("failed to send the MatchID message", zap.String("nick", nick), zap.Error(err))
		return
	}

	// Block until all players have joined and the game is ready to start.
	<-match.gameStart

	hello := struct {
		Nicknames map[int]string
	}{match.nicknames()}
	if err := websocket.JSON.Send(ws, hello); err != nil {
		s.log.Warn("failed to send the Nicknames message", zap.String("nick", nick), zap.Error(err))
		return
	}

	// Push the initial state, then keep pushing the full state with every change.
	var last *pasur.Event
	for {
		b, err := match.view(seat)
		if err != nil {
			errorf("state json send error: %v", err)
			return
		}
		update := struct {
			State json.RawMessage
			Event *pasur.Event `json:",omitempty"`
		}{b, last}
		if err := websocket.JSON.Send(ws, update); err != nil {
			s.log.Debug("client went away", zap.String("nick", nick), zap.Error(err))
			return
		}

		// Wait for an update...
		e, ok := <-updates
		if !ok {
			ws.Close()
			return
		}
		last = &e
	}
}

// moveStatus maps the error of a move to the status code sent back.
func moveStatus(err error) error {
	var me *pasur.MoveError
	if errors.As(err, &me) {
		return echo.NewHTTPError(http.StatusBadRequest, me.Message)
	}
	return err
}

// seatIn authenticates the request and checks that it is for the current match.
func (s *server) seatIn(c echo.Context) (*Match, seatClaims, error) {
	claims, err := s.seatFor(c)
	if err != nil {
		return nil, claims, err
	}
	m := s.current()
	if claims.MatchID != m.ID {
		return nil, claims, echo.NewHTTPError(http.StatusConflict, "that match is over")
	}
	return m, claims, nil
}

func (s *server) play(c echo.Context) error {
	m, claims, err := s.seatIn(c)
	if err != nil {
		return err
	}

	var p playRequest
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Error parsing json: %v", err))
	}
	if err := m.play(claims.Seat, p.Card); err != nil {
		return moveStatus(err)
	}
	return c.JSON(http.StatusOK, struct{}{})
}

func (s *server) pause(c echo.Context) error {
	m, _, err := s.seatIn(c)
	if err != nil {
		return err
	}
	if err := m.pause(true); err != nil {
		return moveStatus(err)
	}
	return c.JSON(http.StatusOK, struct{}{})
}

func (s *server) resume(c echo.Context) error {
	m, _, err := s.seatIn(c)
	if err != nil {
		return err
	}
	if err := m.pause(false); err != nil {
		return moveStatus(err)
	}
	return c.JSON(http.StatusOK, struct{}{})
}

// Reset the match, no qustions asked, power users only...
func (s *server) reset(c echo.Context) error {
	s.replace("")
	return c.JSON(http.StatusOK, struct{ MatchID string }{s.current().ID})
}

// This will create a new match if the one asked about is still the current one.
func (s *server) newMatch(c echo.Context) error {
	p := struct{ OldMatchID string }{}
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Error parsing json: %v", err))
	}
	if p.OldMatchID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "OldMatchID needs to be set")
	}
	s.replace(p.OldMatchID)
	return c.JSON(http.StatusOK, struct{ MatchID string }{s.current().ID})
}

func (s *server) matchID(c echo.Context) error {
	return c.JSON(http.StatusOK, struct{ MatchID string }{s.current().ID})
}

// rules reads the rules file, if any, then applies the flags that were set.
func rules() (pasur.Config, error) {
	cfg := pasur.DefaultConfig()
	cfg.Humans = 2
	if *rulesFile != "" {
		var err error
		if cfg, err = pasur.LoadConfig(*rulesFile); err != nil {
			return cfg, err
		}
	}
	if *players != 0 {
		cfg.PlayerCount = *players
	}
	if *humans != 0 {
		cfg.Humans = *humans
	}
	if *targetScore != 0 {
		cfg.TargetScore = *targetScore
	}
	if *gameSpeed != 0 {
		cfg.GameSpeed = *gameSpeed
	}
	if cfg.Humans < 1 {
		return cfg, fmt.Errorf("%w: the server needs at least one human seat", pasur.ErrInvalidConfig)
	}
	return cfg, cfg.Validate()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\nBuilt at version: %s\n", os.Args[0], gitCommit)
		flag.PrintDefaults()
	}
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := rules()
	if err != nil {
		log.Fatal("bad rules", zap.Error(err))
	}

	if *reload {
		go autoreload.Watch(context.Background(), log, time.Second)
	}

	seed := func() int64 { return 1 }
	if *random {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	secret := []byte(*tokenSecret)
	if len(secret) == 0 {
		secret = []byte(uuid.NewString())
	}

	s := newServer(cfg, secret, seed, log)
	e := s.routes()
	log.Info("serving",
		zap.Int("players", cfg.PlayerCount),
		zap.Int("humans", cfg.Humans),
		zap.Int("target", cfg.TargetScore),
		zap.String("match", s.current().ID))

	if *httpsHost != "" {
		// Still create an http server, but make it always redirect to https
		redirect := http.Server{
			Addr:    ":" + strconv.Itoa(*httpPort),
			Handler: http.RedirectHandler("https://"+*httpsHost, http.StatusMovedPermanently),
		}
		go func() { log.Fatal("http redirect server", zap.Error(redirect.ListenAndServe())) }()

		// To avoid the need to bind to 80/443 directly (and thus requiring the server to run as root)
		// we need to create our own autocert.Manager instead of using autocert.NewListener()
		m := autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache("golang-autocert"),
			HostPolicy: autocert.HostWhitelist(*httpsHost),
		}
		ss := &http.Server{
			Addr:      ":" + strconv.Itoa(*httpsPort),
			Handler:   e,
			TLSConfig: m.TLSConfig(),
		}
		// The https server does all of the work and blocks until it's closed.
		log.Fatal("https server", zap.Error(ss.ListenAndServeTLS("", "")))
	} else {
		// Don't do any SSL stuff (useful for development)
		log.Fatal("http server", zap.Error(http.ListenAndServe(":"+strconv.Itoa(*httpPort), e)))
	}
}
