// Command pasur plays a whole game between computer players and prints how it went.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sbadame/pasur/pasur"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	seed        = flag.Int64("seed", 1, "Seed for the shuffles. The same seed plays the same game.")
	players     = flag.Int("players", 0, "Number of bots at the table, 2 to 4.")
	targetScore = flag.Int("target", 0, "The game ends after the hand in which somebody reaches this score.")
	rulesFile   = flag.String("rules_file", "", "TOML file with the rules of the game. Flags override it.")
	speed       = flag.Int("speed", 0, "Game speed, 1 to 3. Only changes the virtual time the game takes.")
	jackSur     = flag.Bool("jack_sur", false, "A Jack that clears the table counts as a sur.")
	lastCardSur = flag.Bool("last_card_sur", false, "Clearing the table with the last card of the deal counts as a sur.")
	cancelSur   = flag.Bool("cancel_sur", false, "A sur takes one back from every opponent that has one.")
	dumpJSON    = flag.Bool("json", false, "Print the final state of the game as json.")
	lang        = flag.String("lang", "en", "Language tag used to format numbers.")
	debug       = flag.Bool("debug", false, "Log every step of the game.")
)

// maxSteps bounds a simulation that, through a bug, would never end.
const maxSteps = 100000

var errUnfinished = errors.New("the game did not finish")

// rules reads the rules file, if any, then applies the flags that were set.
func rules() (pasur.Config, error) {
	cfg := pasur.DefaultConfig()
	if *rulesFile != "" {
		var err error
		if cfg, err = pasur.LoadConfig(*rulesFile); err != nil {
			return cfg, err
		}
	}
	cfg.Humans = 0
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "players":
			cfg.PlayerCount = *players
		case "target":
			cfg.TargetScore = *targetScore
		case "speed":
			cfg.GameSpeed = *speed
		case "jack_sur":
			cfg.AllowJackSur = *jackSur
		case "last_card_sur":
			cfg.AllowLastCardSur = *lastCardSur
		case "cancel_sur":
			cfg.CancelOpponentSur = *cancelSur
		}
	})
	if len(cfg.Names) > cfg.PlayerCount {
		cfg.Names = cfg.Names[:cfg.PlayerCount]
	}
	return cfg, cfg.Validate()
}

// simulate plays cfg to the end on a virtual clock, calling onEvent with everything that happens.
func simulate(cfg pasur.Config, seed int64, log *zap.Logger, onEvent func(*pasur.Game, pasur.Event)) (*pasur.Game, *pasur.VirtualClock, error) {
	clock := pasur.NewVirtualClock()
	g, err := pasur.NewGame(cfg,
		pasur.WithScheduler(clock),
		pasur.WithRand(rand.New(rand.NewSource(seed))),
		pasur.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	g.Subscribe(func(e pasur.Event) { onEvent(g, e) })
	g.Start()

	for steps := 0; g.Live(); steps++ {
		if steps == maxSteps || clock.Drain(1) == 0 {
			return g, clock, fmt.Errorf("%w after %d steps in phase %v", errUnfinished, steps, g.Phase)
		}
	}
	return g, clock, g.Check()
}

func cards(cs []pasur.Card) string {
	var parts []string
	for _, c := range cs {
		s := c.String()
		if c.Suit == pasur.Diamonds || c.Suit == pasur.Hearts {
			s = pterm.LightRed(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// reporter prints a game as it is played.
type reporter struct {
	p     *message.Printer
	w     io.Writer
	shown int // last hand a heading was printed for
}

func (r *reporter) event(g *pasur.Game, e pasur.Event) {
	name := func(id int) string { return g.Players[id].Name }
	switch e.Kind {
	case pasur.EventCapture:
		pterm.Fprintln(r.w, r.p.Sprintf("  %s takes %s for %d", name(e.Player), cards(e.Cards), e.Points))
	case pasur.EventSur:
		pterm.Fprintln(r.w, pterm.Green(r.p.Sprintf("  %s clears the table: sur (+%d)", name(e.Player), e.Points)))
	case pasur.EventSurCancelled:
		pterm.Fprintln(r.w, pterm.Yellow(r.p.Sprintf("  %s loses a sur (%d)", name(e.Player), e.Points)))
	case pasur.EventHandEnd:
		r.hand(g)
	case pasur.EventGameEnd:
		r.standings(e.Standings)
	case pasur.EventStateChanged:
		if g.Phase == pasur.PhaseAwaitingPlay && g.Hand != r.shown {
			r.shown = g.Hand
			pterm.Fprint(r.w, pterm.DefaultSection.Sprintln(r.p.Sprintf("Hand %d", g.Hand)))
			pterm.Fprintln(r.w, "  table: "+cards(g.Table))
		}
	}
}

func (r *reporter) table(data pterm.TableData) {
	t, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	pterm.Fprintln(r.w, t)
}

func (r *reporter) hand(g *pasur.Game) {
	data := pterm.TableData{{"Player", "10♦", "2♣", "Aces", "Jacks", "Surs", "Clubs", "Hand", "Total"}}
	for i, b := range g.LastHand() {
		p := g.Players[i]
		data = append(data, []string{
			p.Name,
			r.p.Sprint(b.TenDiamonds),
			r.p.Sprint(b.TwoClubs),
			r.p.Sprint(b.Aces),
			r.p.Sprint(b.Jacks),
			r.p.Sprint(b.Surs),
			r.p.Sprint(b.ClubsMajority),
			r.p.Sprint(b.Total),
			r.p.Sprint(p.TotalScore),
		})
	}
	r.table(data)
}

func (r *reporter) standings(s []pasur.Standing) {
	pterm.Fprint(r.w, pterm.DefaultSection.Sprintln("Final standings"))
	data := pterm.TableData{{"#", "Player", "Score"}}
	for i, st := range s {
		data = append(data, []string{r.p.Sprint(i + 1), st.Name, r.p.Sprint(st.TotalScore)})
	}
	r.table(data)
}

func main() {
	flag.Parse()

	cfg, err := rules()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	tag, err := language.Parse(*lang)
	if err != nil {
		pterm.Warning.Printfln("unknown language %q, using English", *lang)
		tag = language.English
	}

	log := zap.NewNop()
	if *debug {
		if log, err = zap.NewDevelopment(); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	out := io.Writer(os.Stdout)
	if *dumpJSON {
		out = io.Discard
		pterm.DisableStyling()
	}
	r := &reporter{p: message.NewPrinter(tag), w: out}
	if !*dumpJSON {
		pterm.DefaultHeader.WithFullWidth().Println(r.p.Sprintf("Pasur: %d players to %d points", cfg.PlayerCount, cfg.TargetScore))
	}

	g, clock, err := simulate(cfg, *seed, log, r.event)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Fprintln(out, r.p.Sprintf("%d hands, %v of play", g.Hand, clock.Now()))

	if *dumpJSON {
		j, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		fmt.Println(string(j))
	}
}
