// Package session drives a fill pass over a page: scan the form,
// resolve each field in order, apply the values, and cope with
// cancellation and dynamically appearing fields.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
	"github.com/jobfiller/jobfiller/internal/resolver"
)

// Phase is the controller's lifecycle state
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseScanning   Phase = "scanning"
	PhaseFilling    Phase = "filling"
	PhaseCancelling Phase = "cancelling"
	PhaseDone       Phase = "done"
)

const (
	// Delay after a deterministic or learned match
	fastFieldDelay = 30 * time.Millisecond
	// Delay after an AI call, to avoid hammering the provider
	aiFieldDelay = 500 * time.Millisecond
	// Window for coalescing dynamic-discovery signals
	discoveryDebounce = time.Second
	// How many times one pass may loop back to scanning when new
	// fields appear mid-run
	maxRescanDepth = 3
)

// ErrAlreadyRunning is returned by Start when a pass is in flight
var ErrAlreadyRunning = errors.New("session already running")

// Scanner captures the current form inventory
type Scanner interface {
	Scan(ctx context.Context) ([]resolver.FieldDescriptor, error)
}

// Applier writes one resolved value into the live form and reports
// whether the write took
type Applier interface {
	Apply(ctx context.Context, field *resolver.FieldDescriptor, value string) (bool, error)
}

// Summary is the outcome of one fill pass
type Summary struct {
	FilledCount int
	Skipped     int
	LastError   error
}

// Controller runs fill passes. One field is in flight at a time;
// cancellation is sampled only at field boundaries so an in-flight
// resolution always completes before the loop exits.
type Controller struct {
	resolver *resolver.Resolver
	scanner  Scanner
	applier  Applier

	mu      sync.Mutex
	phase   Phase
	running bool

	cancelRequested atomic.Bool
	stopped         atomic.Bool
	pendingDiscover atomic.Bool

	lastDiscoverMu sync.Mutex
	lastDiscover   time.Time

	sleep func(time.Duration)
	log   logging.Tagged
}

// NewController wires a controller over its collaborators
func NewController(res *resolver.Resolver, scanner Scanner, applier Applier) *Controller {
	return &Controller{
		resolver: res,
		scanner:  scanner,
		applier:  applier,
		phase:    PhaseIdle,
		sleep:    time.Sleep,
		log:      logging.WithTag("Session"),
	}
}

// Phase returns the current lifecycle state
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Cancel requests a cooperative stop. The field being resolved when
// the flag is set still completes and is applied; the next field is
// never attempted. Also suppresses further dynamic-discovery signals.
func (c *Controller) Cancel() {
	c.cancelRequested.Store(true)
	c.stopped.Store(true)
	c.log.Infof("Cancellation requested")
}

// FieldsDiscovered signals that new form content appeared. Signals
// inside the debounce window are coalesced; signals after a manual
// stop are dropped so an observer can't fight the user.
func (c *Controller) FieldsDiscovered() {
	if c.stopped.Load() {
		return
	}

	c.lastDiscoverMu.Lock()
	now := time.Now()
	if now.Sub(c.lastDiscover) < discoveryDebounce {
		c.lastDiscoverMu.Unlock()
		return
	}
	c.lastDiscover = now
	c.lastDiscoverMu.Unlock()

	c.pendingDiscover.Store(true)
}

// Start runs one full fill pass. Profile and settings are snapshotted
// by the caller before the pass; the controller never re-reads them
// mid-session. Returns ErrAlreadyRunning on re-entry.
func (c *Controller) Start(ctx context.Context, prof *profile.Context) (*Summary, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	c.cancelRequested.Store(false)
	c.stopped.Store(false)
	c.pendingDiscover.Store(false)

	defer func() {
		c.setPhase(PhaseDone)
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	summary := &Summary{}
	seen := make(map[string]bool)

	for depth := 0; depth <= maxRescanDepth; depth++ {
		c.setPhase(PhaseScanning)
		fields, err := c.scanner.Scan(ctx)
		if err != nil {
			return summary, fmt.Errorf("scan failed: %w", err)
		}

		fresh := make([]resolver.FieldDescriptor, 0, len(fields))
		for _, f := range fields {
			key := fieldKey(&f)
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, f)
			}
		}
		if len(fresh) == 0 {
			break
		}
		c.log.Infof("Pass %d: %d new fields", depth+1, len(fresh))

		c.setPhase(PhaseFilling)
		cancelled := c.fillBatch(ctx, fresh, prof, summary)
		if cancelled {
			c.setPhase(PhaseCancelling)
			c.log.Infof("Stopped after %d fields", summary.FilledCount)
			return summary, nil
		}

		if !c.pendingDiscover.Swap(false) {
			break
		}
		// New content appeared while filling; loop back to scanning
	}

	c.log.Infof("Done: filled=%d skipped=%d", summary.FilledCount, summary.Skipped)
	return summary, nil
}

// fillBatch resolves and applies one batch in discovery order.
// Returns true when the pass was cancelled.
func (c *Controller) fillBatch(ctx context.Context, fields []resolver.FieldDescriptor, prof *profile.Context, summary *Summary) bool {
	for i := range fields {
		if c.cancelRequested.Load() {
			return true
		}
		if ctx.Err() != nil {
			summary.LastError = ctx.Err()
			return true
		}

		field := &fields[i]
		result, err := c.resolver.Resolve(ctx, field, prof)
		if err != nil {
			// AI failure on one field never halts the pass
			summary.LastError = err
		}

		if result.Skipped() {
			summary.Skipped++
			continue
		}

		applied, err := c.applier.Apply(ctx, field, result.Value)
		if err != nil {
			summary.LastError = err
			continue
		}
		if applied {
			summary.FilledCount++
		}

		if result.Method == resolver.MethodAI {
			c.sleep(aiFieldDelay)
		} else {
			c.sleep(fastFieldDelay)
		}
	}
	return false
}

func fieldKey(f *resolver.FieldDescriptor) string {
	return f.Label + "|" + f.Name + "|" + f.ID
}
