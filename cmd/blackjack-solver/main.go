// Command blackjack-solver evaluates blackjack hands against the
// reward-distribution engine, either one hand at a time (solve) or in
// bulk from a JSON scenario file (batch).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/behrlich/blackjack-solver/internal/batch"
	"github.com/behrlich/blackjack-solver/pkg/bettor"
	"github.com/behrlich/blackjack-solver/pkg/report"
	"github.com/behrlich/blackjack-solver/pkg/rules"
	"github.com/behrlich/blackjack-solver/pkg/shoe"
	"github.com/behrlich/blackjack-solver/pkg/solver"
	"github.com/behrlich/blackjack-solver/pkg/strategist"
)

var (
	styleGood = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleBad  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleKey  = lipgloss.NewStyle().Faint(true)
)

func identity(w float64) float64 { return w }

// rulesFlags is embedded by both subcommands; it's the set of rule
// variations a caller can toggle on the command line.
type rulesFlags struct {
	HitSoft17              bool `help:"Dealer hits on soft 17."`
	NoDoubleAfterSplit     bool `help:"Disallow doubling on post-split hands."`
	HitAfterSplitAces      bool `help:"Allow drawing further cards after splitting aces."`
	BlackjackWithSplitAces bool `help:"Credit a ten drawn on a split ace as blackjack."`
	SplitAnyEqualValue     bool `help:"Allow splitting any two cards of equal value, not just identical ranks."`
}

func (f rulesFlags) toConfig(decks int) rules.Config {
	cfg := rules.Default()
	cfg.HitSoft17 = f.HitSoft17
	cfg.DoubleAfterSplit = !f.NoDoubleAfterSplit
	cfg.HitAfterSplitAces = f.HitAfterSplitAces
	cfg.BlackjackWithSplitAces = f.BlackjackWithSplitAces
	cfg.SplitAnyEqualValue = f.SplitAnyEqualValue
	cfg.ShoeSize = decks
	return cfg
}

// SolveCmd evaluates a single hand against a dealer up-card.
type SolveCmd struct {
	rulesFlags

	PlayerTotal int     `required:"" help:"Player's hard or soft total before acting."`
	PlayerAces  int     `help:"Number of soft (currently-11) aces in the player's total." default:"0"`
	DealerShown int     `required:"" help:"Dealer's up-card value (2-11, ace counted as 11)."`
	Decks       int     `default:"6" help:"Number of decks in the shoe."`
	Bankroll    float64 `default:"100" help:"Bankroll used for Kelly bet sizing."`
}

func (c *SolveCmd) Run(logger *log.Logger) error {
	cfg := c.rulesFlags.toConfig(c.Decks)
	s, err := solver.New(cfg, identity)
	if err != nil {
		return fmt.Errorf("building solver: %w", err)
	}
	defer s.Close()

	counts := shoe.Standard(c.Decks)
	strat := strategist.New(s)

	hit := strat.ShouldHit(c.PlayerTotal, c.PlayerAces, c.DealerShown, counts)
	double := strat.ShouldDouble(c.PlayerTotal, c.PlayerAces, c.DealerShown, counts)
	split := strat.ShouldSplit(c.PlayerTotal, c.PlayerAces, c.DealerShown, counts)

	s.SetShoe(counts)
	d := s.DistrHitStandDouble(c.PlayerTotal, c.PlayerAces, c.DealerShown)
	s.FreeMem()

	bet := bettor.BetSize(s, bettor.Config{Rules: cfg, DealerBlackjackBasis: bettor.BasisPreDeal}, counts, c.Bankroll)

	logger.Info("solved hand",
		"playerTotal", c.PlayerTotal,
		"playerAces", c.PlayerAces,
		"dealerShown", c.DealerShown,
		"decks", c.Decks)

	fmt.Println(renderBool("hit", hit))
	fmt.Println(renderBool("double", double))
	fmt.Println(renderBool("split", split))
	fmt.Printf("%s %.4f\n", styleKey.Render("expected value:"), s.Value(d))
	fmt.Printf("%s %.2f\n", styleKey.Render("bet size:"), bet)
	return nil
}

func renderBool(label string, v bool) string {
	style := styleBad
	word := "no"
	if v {
		style = styleGood
		word = "yes"
	}
	return fmt.Sprintf("%s %s", styleKey.Render(label+":"), style.Render(word))
}

// batchEntry is the JSON shape of one line item in a batch input file.
type batchEntry struct {
	PlayerTotal int     `json:"player_total"`
	PlayerAces  int     `json:"player_aces"`
	DealerShown int     `json:"dealer_shown"`
	Decks       int     `json:"decks"`
	Bankroll    float64 `json:"bankroll"`
}

// BatchCmd evaluates every scenario in a JSON input file concurrently
// and writes a report.Run, either to stdout or to --out.
type BatchCmd struct {
	rulesFlags

	File string `arg:"" help:"JSON file containing an array of scenarios."`
	Out  string `help:"Write the report here instead of stdout."`
}

func (c *BatchCmd) Run(logger *log.Logger) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	var entries []batchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}

	jobs := make([]batch.Job, 0, len(entries))
	for _, e := range entries {
		decks := e.Decks
		if decks == 0 {
			decks = 6
		}
		bankroll := e.Bankroll
		if bankroll == 0 {
			bankroll = 100
		}
		jobs = append(jobs, batch.Job{
			Scenario: report.Scenario{
				PlayerTotal: e.PlayerTotal,
				PlayerAces:  e.PlayerAces,
				DealerShown: e.DealerShown,
				Shoe:        shoe.Standard(decks),
			},
			Bankroll: bankroll,
		})
	}

	cfg := c.rulesFlags.toConfig(6)
	runner := batch.New(cfg, bettor.DefaultConfig(), logger)

	logger.Info("starting batch run", "scenarios", len(jobs))
	results, err := runner.Run(context.Background(), jobs)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	run := report.NewRun(results)
	out, err := run.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}

	if c.Out == "" {
		fmt.Println(string(out))
		return nil
	}
	return run.SaveToFile(c.Out)
}

var cli struct {
	Solve SolveCmd `cmd:"" help:"Evaluate a single hand against a dealer up-card."`
	Batch BatchCmd `cmd:"" help:"Evaluate a batch of scenarios from a JSON file."`
}

func main() {
	logger := log.New(os.Stderr)

	ctx := kong.Parse(&cli,
		kong.Name("blackjack-solver"),
		kong.Description("Reward-distribution blackjack solver, strategist, and Kelly bettor."),
	)
	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
