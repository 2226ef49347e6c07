package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
)

// How long a persisted auto-apply token stays resumable
const resumeTokenTTL = time.Hour

const resumeTokenKey = "autoapply"

// TerminalStatus says why an auto-apply run stopped
type TerminalStatus string

const (
	StatusCompleted TerminalStatus = "completed"  // no advance target left
	StatusPageCap   TerminalStatus = "page_cap"   // hit the iteration limit
	StatusTabCap    TerminalStatus = "tab_cap"    // hit the new-tab limit
	StatusCancelled TerminalStatus = "cancelled"
)

// AdvanceResult reports what activating an advance target did
type AdvanceResult struct {
	Navigated    bool // page changed in place
	OpenedNewTab bool // destination left the current context
}

// Navigator finds and activates the page's single "advance" action
// (apply / next / submit). Returning found=false is a normal terminal
// condition, not an error.
type Navigator interface {
	FindAdvance(ctx context.Context) (found bool, err error)
	Advance(ctx context.Context) (AdvanceResult, error)
}

// TokenStore persists the opaque resume token between runs
type TokenStore interface {
	SaveSessionState(key, value string) error
	LoadSessionState(key string) (string, error)
	ClearSessionState(key string) error
}

// resumeToken is what survives a restart
type resumeToken struct {
	Active    bool      `json:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// AutoApply wraps the controller in a bounded fill-then-advance loop
type AutoApply struct {
	controller *Controller
	nav        Navigator
	store      TokenStore

	maxPages int
	maxTabs  int

	attempts   int
	tabsOpened int

	now func() time.Time
	log logging.Tagged
}

// AutoApplyReport is the outcome of one auto-apply run
type AutoApplyReport struct {
	Status      TerminalStatus
	Pages       int
	FilledTotal int
	LastError   error
}

// NewAutoApply builds the loop. maxTabs is almost always 1: a job
// board that opens the real application in a new tab gets exactly one
// such navigation per session.
func NewAutoApply(controller *Controller, nav Navigator, store TokenStore, maxPages, maxTabs int) *AutoApply {
	if maxPages <= 0 {
		maxPages = 5
	}
	if maxTabs <= 0 {
		maxTabs = 1
	}
	return &AutoApply{
		controller: controller,
		nav:        nav,
		store:      store,
		maxPages:   maxPages,
		maxTabs:    maxTabs,
		now:        time.Now,
		log:        logging.WithTag("AutoApply"),
	}
}

// Run executes fill-then-advance until a cap is hit, the advance
// vocabulary stops matching, or the session is cancelled.
func (a *AutoApply) Run(ctx context.Context, prof *profile.Context) (*AutoApplyReport, error) {
	report := &AutoApplyReport{}
	a.persistToken(true)
	defer a.persistToken(false)

	for a.attempts < a.maxPages {
		// A cancel can land between pages, while the advance action is
		// in flight; the next Start would reset the flag, so honor it
		// before starting another pass
		if a.controller.cancelRequested.Load() {
			report.Status = StatusCancelled
			return report, nil
		}

		a.attempts++
		report.Pages = a.attempts
		a.log.Infof("Page %d/%d", a.attempts, a.maxPages)

		summary, err := a.controller.Start(ctx, prof)
		if err != nil {
			return report, err
		}
		report.FilledTotal += summary.FilledCount
		if summary.LastError != nil {
			report.LastError = summary.LastError
		}
		if a.controller.cancelRequested.Load() {
			report.Status = StatusCancelled
			return report, nil
		}

		found, err := a.nav.FindAdvance(ctx)
		if err != nil {
			report.LastError = err
			report.Status = StatusCompleted
			return report, nil
		}
		if !found {
			report.Status = StatusCompleted
			return report, nil
		}

		result, err := a.nav.Advance(ctx)
		if err != nil {
			report.LastError = err
			report.Status = StatusCompleted
			return report, nil
		}
		if result.OpenedNewTab {
			a.tabsOpened++
			if a.tabsOpened >= a.maxTabs {
				a.log.Infof("Tab cap reached (%d), stopping", a.maxTabs)
				report.Status = StatusTabCap
				return report, nil
			}
		}
	}

	report.Status = StatusPageCap
	return report, nil
}

// Resumable reports whether a previous run left a fresh token behind.
// Stale tokens are cleared, not resumed.
func (a *AutoApply) Resumable() bool {
	if a.store == nil {
		return false
	}
	raw, err := a.store.LoadSessionState(resumeTokenKey)
	if err != nil || raw == "" {
		return false
	}

	var token resumeToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		a.store.ClearSessionState(resumeTokenKey)
		return false
	}
	if !token.Active || a.now().Sub(token.Timestamp) > resumeTokenTTL {
		a.store.ClearSessionState(resumeTokenKey)
		return false
	}
	return true
}

func (a *AutoApply) persistToken(active bool) {
	if a.store == nil {
		return
	}
	if !active {
		a.store.ClearSessionState(resumeTokenKey)
		return
	}
	raw, err := json.Marshal(resumeToken{Active: true, Timestamp: a.now()})
	if err != nil {
		return
	}
	if err := a.store.SaveSessionState(resumeTokenKey, string(raw)); err != nil {
		a.log.Warnf("Failed to persist resume token: %v", err)
	}
}
