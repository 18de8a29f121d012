package worker

import (
	"context"
	"time"

	"parodybot/internal/logger"
	"parodybot/internal/ratelimit"
)

// Runner is one pass of the pipeline for one account.
type Runner interface {
	Run(ctx context.Context, account string) Result
}

// Driver visits accounts round-robin forever, waiting between accounts and
// optionally between full cycles. Accounts never run in parallel.
type Driver struct {
	runner       Runner
	accounts     []string
	accountDelay time.Duration
	cycleDelay   time.Duration
	board        *Board
	log          logger.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewDriver(r Runner, accounts []string, accountDelay, cycleDelay time.Duration, board *Board, log logger.Logger) *Driver {
	return &Driver{
		runner:       r,
		accounts:     accounts,
		accountDelay: accountDelay,
		cycleDelay:   cycleDelay,
		board:        board,
		log:          log,
		sleep:        ratelimit.Sleep,
	}
}

// Run returns nil once ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	d.log.Infof("[DRIVER] watching %d accounts, %s between accounts", len(d.accounts), d.accountDelay)

	for cycle := 1; ; cycle++ {
		for _, account := range d.accounts {
			d.run(ctx, account)
			if ctx.Err() != nil {
				return nil
			}

			d.log.Debugf("[DRIVER] next account in %s", d.accountDelay)
			if err := d.sleep(ctx, d.accountDelay); err != nil {
				return nil
			}
		}

		published, failures := d.board.Totals()
		d.log.Infof("[STATS] cycle %d done: published=%d, failures=%d", cycle, published, failures)

		if d.cycleDelay > 0 {
			if err := d.sleep(ctx, d.cycleDelay); err != nil {
				return nil
			}
		}
	}
}

// RunOnce runs a single cycle with no waits. With no accounts given it uses
// the configured list.
func (d *Driver) RunOnce(ctx context.Context, accounts ...string) []Result {
	if len(accounts) == 0 {
		accounts = d.accounts
	}

	results := make([]Result, 0, len(accounts))
	for _, account := range accounts {
		if ctx.Err() != nil {
			break
		}
		results = append(results, d.run(ctx, account))
	}
	return results
}

func (d *Driver) run(ctx context.Context, account string) Result {
	res := d.runner.Run(ctx, account)
	d.board.Record(res)
	return res
}
