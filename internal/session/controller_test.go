package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/profile"
	"github.com/jobfiller/jobfiller/internal/resolver"
)

// fakeScanner serves one field batch per scan call
type fakeScanner struct {
	batches [][]resolver.FieldDescriptor
	calls   int
}

func (s *fakeScanner) Scan(ctx context.Context) ([]resolver.FieldDescriptor, error) {
	if s.calls >= len(s.batches) {
		s.calls++
		return nil, nil
	}
	batch := s.batches[s.calls]
	s.calls++
	return batch, nil
}

// fakeApplier records writes and can run a hook per apply
type fakeApplier struct {
	applied []string
	onApply func(field *resolver.FieldDescriptor)
}

func (a *fakeApplier) Apply(ctx context.Context, field *resolver.FieldDescriptor, value string) (bool, error) {
	if a.onApply != nil {
		a.onApply(field)
	}
	a.applied = append(a.applied, field.Label+"="+value)
	return true, nil
}

// fakeInferrer scripts the AI tier and can run a hook per call
type fakeInferrer struct {
	response string
	onInfer  func()
	calls    atomic.Int32
}

func (f *fakeInferrer) Infer(ctx context.Context, req *ai.Request) (string, error) {
	f.calls.Add(1)
	if f.onInfer != nil {
		f.onInfer()
	}
	return f.response, nil
}

func testProfile() *profile.Context {
	return &profile.Context{
		Personal: profile.Personal{FirstName: "Akash", LastName: "Ranjan", Email: "akash@example.com"},
	}
}

func newTestController(scanner Scanner, applier Applier, inf resolver.Inferrer) (*Controller, *[]time.Duration) {
	var delays []time.Duration
	c := NewController(resolver.New(inf, inf != nil), scanner, applier)
	c.sleep = func(d time.Duration) { delays = append(delays, d) }
	return c, &delays
}

func TestFillPassAppliesResolvedFields(t *testing.T) {
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{{
		{Label: "First Name"},
		{Label: "Email"},
	}}}
	applier := &fakeApplier{}
	c, delays := newTestController(scanner, applier, nil)

	summary, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FilledCount)
	assert.Equal(t, []string{"First Name=Akash", "Email=akash@example.com"}, applier.applied)
	assert.Equal(t, []time.Duration{fastFieldDelay, fastFieldDelay}, *delays)
	assert.Equal(t, PhaseDone, c.Phase())
}

func TestSkipSentinelNeverApplied(t *testing.T) {
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{{
		{Label: "First Name"},
		{Label: "Completely unknown question"},
	}}}
	applier := &fakeApplier{}
	c, _ := newTestController(scanner, applier, nil)

	summary, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilledCount)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"First Name=Akash"}, applier.applied)
}

func TestAIFieldGetsLongerDelay(t *testing.T) {
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{{
		{Label: "First Name"},
		{Label: "Why do you want this job"},
	}}}
	inf := &fakeInferrer{response: `{"value": "Because."}`}
	c, delays := newTestController(scanner, &fakeApplier{}, inf)

	_, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{fastFieldDelay, aiFieldDelay}, *delays)
}

func TestCancellationAtFieldBoundary(t *testing.T) {
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{{
		{Label: "Question one"},
		{Label: "Question two"},
		{Label: "Question three"},
	}}}
	applier := &fakeApplier{}

	var c *Controller
	inf := &fakeInferrer{response: `{"value": "answer"}`}
	inf.onInfer = func() {
		// Cancel lands while the second field is in flight
		if inf.calls.Load() == 2 {
			c.Cancel()
		}
	}
	c, _ = newTestController(scanner, applier, inf)

	summary, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	// Field two completes and is applied; field three is never attempted
	assert.Equal(t, 2, summary.FilledCount)
	assert.Equal(t, int32(2), inf.calls.Load())
	assert.Equal(t, []string{"Question one=answer", "Question two=answer"}, applier.applied)
	assert.Equal(t, PhaseDone, c.Phase())
}

func TestReentryGuard(t *testing.T) {
	block := make(chan struct{})
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{{{Label: "Question"}}}}
	inf := &fakeInferrer{response: `{"value": "x"}`}
	inf.onInfer = func() { <-block }
	c, _ := newTestController(scanner, &fakeApplier{}, inf)

	done := make(chan struct{})
	go func() {
		c.Start(context.Background(), testProfile())
		close(done)
	}()

	// Wait until the first run is inside the AI call
	require.Eventually(t, func() bool { return inf.calls.Load() == 1 }, time.Second, time.Millisecond)

	_, err := c.Start(context.Background(), testProfile())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(block)
	<-done
}

func TestRescanPicksUpNewFields(t *testing.T) {
	scanner := &fakeScanner{batches: [][]resolver.FieldDescriptor{
		{{Label: "First Name"}},
		{{Label: "First Name"}, {Label: "Email"}},
	}}
	applier := &fakeApplier{}

	var c *Controller
	applier.onApply = func(field *resolver.FieldDescriptor) {
		if field.Label == "First Name" {
			// Simulate the fill revealing more of the form
			c.pendingDiscover.Store(true)
		}
	}
	c, _ = newTestController(scanner, applier, nil)

	summary, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	// Second pass fills only the unseen field
	assert.Equal(t, []string{"First Name=Akash", "Email=akash@example.com"}, applier.applied)
	assert.Equal(t, 2, summary.FilledCount)
	assert.Equal(t, 2, scanner.calls)
}

func TestRescanDepthBounded(t *testing.T) {
	// Every scan returns a brand-new field and every apply signals more
	// content; the loop must still terminate.
	var batches [][]resolver.FieldDescriptor
	labels := []string{"First Name", "Last Name", "Email", "Phone", "City", "Country"}
	for i := range labels {
		batches = append(batches, []resolver.FieldDescriptor{{Label: labels[i]}})
	}
	scanner := &fakeScanner{batches: batches}
	applier := &fakeApplier{}

	var c *Controller
	applier.onApply = func(*resolver.FieldDescriptor) { c.pendingDiscover.Store(true) }
	c, _ = newTestController(scanner, applier, nil)

	_, err := c.Start(context.Background(), testProfile())
	require.NoError(t, err)
	// Initial pass plus three re-entries
	assert.Equal(t, maxRescanDepth+1, scanner.calls)
}

func TestDiscoveryDebounced(t *testing.T) {
	c, _ := newTestController(&fakeScanner{}, &fakeApplier{}, nil)

	c.FieldsDiscovered()
	assert.True(t, c.pendingDiscover.Swap(false))

	// Second signal inside the window is coalesced
	c.FieldsDiscovered()
	assert.False(t, c.pendingDiscover.Load())

	// After the window it registers again
	c.lastDiscoverMu.Lock()
	c.lastDiscover = time.Now().Add(-2 * discoveryDebounce)
	c.lastDiscoverMu.Unlock()
	c.FieldsDiscovered()
	assert.True(t, c.pendingDiscover.Load())
}

func TestDiscoverySuppressedAfterStop(t *testing.T) {
	c, _ := newTestController(&fakeScanner{}, &fakeApplier{}, nil)
	c.Cancel()
	c.FieldsDiscovered()
	assert.False(t, c.pendingDiscover.Load())
}
