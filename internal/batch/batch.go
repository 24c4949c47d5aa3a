// Package batch runs the strategist and bettor concurrently over many
// scenarios, one Solver instance per worker, the way the wider example
// pack distributes independent Monte Carlo work across goroutines.
package batch

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/behrlich/blackjack-solver/pkg/bettor"
	"github.com/behrlich/blackjack-solver/pkg/report"
	"github.com/behrlich/blackjack-solver/pkg/rules"
	"github.com/behrlich/blackjack-solver/pkg/solver"
	"github.com/behrlich/blackjack-solver/pkg/strategist"
)

// Job is one scenario to evaluate: a hand against a dealer up-card on a
// given shoe, plus the bankroll the bettor should size against.
type Job struct {
	Scenario report.Scenario
	Bankroll float64
}

// Runner evaluates Jobs concurrently. Each worker owns its own Solver,
// since Solver's memoization cache is not safe for concurrent use.
type Runner struct {
	cfg     rules.Config
	bettor  bettor.Config
	workers int
	logger  *log.Logger
}

// New builds a Runner with up to runtime.NumCPU() workers, capped at 8
// for diminishing returns past that.
func New(cfg rules.Config, betCfg bettor.Config, logger *log.Logger) *Runner {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return &Runner{cfg: cfg, bettor: betCfg, workers: workers, logger: logger}
}

// Run evaluates every Job and returns one Result per Job, in the same
// order the Jobs were given. A solver construction failure (an invalid
// rules.Config) aborts the whole run.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]report.Result, error) {
	results := make([]report.Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	indices := make(chan int)

	g.Go(func() error {
		defer close(indices)
		for i := range jobs {
			select {
			case indices <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	identity := func(w float64) float64 { return w }

	for w := 0; w < r.workers; w++ {
		g.Go(func() error {
			s, err := solver.New(r.cfg, identity)
			if err != nil {
				return err
			}
			defer s.Close()
			strat := strategist.New(s)

			for i := range indices {
				job := jobs[i]
				results[i] = r.evaluate(s, strat, job)
				if r.logger != nil {
					r.logger.Debug("evaluated scenario",
						"playerTotal", job.Scenario.PlayerTotal,
						"dealerShown", job.Scenario.DealerShown,
						"shouldHit", results[i].Decision.ShouldHit,
						"betSize", results[i].Decision.BetSize)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) evaluate(s *solver.Solver, strat *strategist.Strategist, job Job) report.Result {
	sc := job.Scenario
	pt, pa, dt := sc.PlayerTotal, sc.PlayerAces, sc.DealerShown

	hit := strat.ShouldHit(pt, pa, dt, sc.Shoe)
	double := strat.ShouldDouble(pt, pa, dt, sc.Shoe)
	split := strat.ShouldSplit(pt, pa, dt, sc.Shoe)

	s.SetShoe(sc.Shoe)
	d := s.DistrHitStandDouble(pt, pa, dt)
	s.FreeMem()

	bet := bettor.BetSize(s, r.bettor, sc.Shoe, job.Bankroll)
	s.FreeMem()

	return report.Result{
		Scenario: sc,
		Decision: report.Decision{
			ShouldHit:     hit,
			ShouldDouble:  double,
			ShouldSplit:   split,
			ExpectedValue: s.Value(d),
			BetSize:       bet,
		},
	}
}
