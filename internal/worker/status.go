package worker

import (
	"sync"
	"time"
)

// Status is the last known state of one account.
type Status struct {
	Account     string    `json:"account"`
	LastRun     time.Time `json:"last_run"`
	LastOutcome Outcome   `json:"last_outcome"`
	LastError   string    `json:"last_error,omitempty"`
	LastPostID  string    `json:"last_post_id,omitempty"`
	Runs        int       `json:"runs"`
	Published   int       `json:"published"`
	Failures    int       `json:"failures"`
}

// Board collects per-account results for readers outside the driver loop.
type Board struct {
	mu       sync.RWMutex
	order    []string
	accounts map[string]*Status
}

func NewBoard(accounts []string) *Board {
	b := &Board{accounts: make(map[string]*Status, len(accounts))}
	for _, a := range accounts {
		b.ensure(a)
	}
	return b
}

func (b *Board) ensure(account string) *Status {
	st, ok := b.accounts[account]
	if !ok {
		st = &Status{Account: account}
		b.accounts[account] = st
		b.order = append(b.order, account)
	}
	return st
}

func (b *Board) Record(res Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.ensure(res.Account)
	st.LastRun = res.At
	st.LastOutcome = res.Outcome
	st.LastError = ""
	if res.Err != nil {
		st.LastError = res.Err.Error()
	}
	if res.Post.ID != "" {
		st.LastPostID = res.Post.ID
	}
	st.Runs++
	if res.Outcome == OutcomePublished {
		st.Published++
	}
	if res.Outcome.Failed() {
		st.Failures++
	}
}

// Snapshot returns a copy in configured account order.
func (b *Board) Snapshot() []Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Status, 0, len(b.order))
	for _, a := range b.order {
		out = append(out, *b.accounts[a])
	}
	return out
}

// Totals sums published and failed runs across accounts.
func (b *Board) Totals() (published, failures int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, st := range b.accounts {
		published += st.Published
		failures += st.Failures
	}
	return published, failures
}
