package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jobfiller/jobfiller/internal/session"
)

// advanceScript collects every visible, enabled element that could
// plausibly advance the application, with its text and structural hints
const advanceScript = `() => {
	const els = document.querySelectorAll(
		'button, input[type="submit"], input[type="button"], a, div[role="button"]'
	);
	const out = [];
	let idx = 0;
	for (const el of els) {
		const visible = !!el.offsetParent && !el.disabled;
		const text = (el.innerText || el.value || el.getAttribute('aria-label') || '').trim();
		out.push({
			index: idx++,
			visible: visible,
			text: text,
			tag: el.tagName.toLowerCase(),
			type: (el.getAttribute('type') || '').toLowerCase(),
			role: (el.getAttribute('role') || '').toLowerCase(),
		});
	}
	return out;
}`

// advanceCandidate mirrors one record from advanceScript
type advanceCandidate struct {
	Index   int    `json:"index"`
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
	Tag     string `json:"tag"`
	Type    string `json:"type"`
	Role    string `json:"role"`
}

// Exact matches that always count as an advance action
var advanceExact = []string{
	"apply", "easy apply", "quick apply", "apply now",
	"next", "continue", "review", "submit", "submit application",
	"send", "done",
}

// Substring matches for non-link elements
var advanceLoose = []string{"next", "continue", "submit", "apply", "send"}

// FindAdvance reports whether the page has an advance action. The
// chosen candidate is remembered for the following Advance call.
func (s *Session) FindAdvance(ctx context.Context) (bool, error) {
	candidates, err := s.advanceCandidates()
	if err != nil {
		return false, err
	}
	idx := pickAdvance(candidates)
	s.mu.Lock()
	s.advanceIdx = idx
	s.mu.Unlock()
	return idx >= 0, nil
}

// Advance activates the previously found candidate and reports whether
// the page navigated in place or left for a new tab
func (s *Session) Advance(ctx context.Context) (session.AdvanceResult, error) {
	s.mu.Lock()
	idx := s.advanceIdx
	popupsBefore := s.popupCount
	s.advanceIdx = -1
	s.mu.Unlock()

	if idx < 0 {
		return session.AdvanceResult{}, fmt.Errorf("no advance target selected")
	}

	urlBefore := s.page.URL()
	sel := `button, input[type="submit"], input[type="button"], a, div[role="button"]`
	if err := s.page.Locator(sel).Nth(idx).Click(); err != nil {
		return session.AdvanceResult{}, fmt.Errorf("advance click failed: %w", err)
	}

	// Give the site a moment to navigate or open its destination
	select {
	case <-ctx.Done():
		return session.AdvanceResult{}, ctx.Err()
	case <-time.After(4 * time.Second):
	}

	s.mu.Lock()
	popupsAfter := s.popupCount
	s.mu.Unlock()

	return session.AdvanceResult{
		Navigated:    s.page.URL() != urlBefore,
		OpenedNewTab: popupsAfter > popupsBefore,
	}, nil
}

func (s *Session) advanceCandidates() ([]advanceCandidate, error) {
	raw, err := s.page.Evaluate(advanceScript)
	if err != nil {
		return nil, fmt.Errorf("advance scan failed: %w", err)
	}
	var candidates []advanceCandidate
	if err := remarshal(raw, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// pickAdvance chooses the best advance candidate, or -1. Structural
// submit semantics beat free-text matches; links need an exact or
// near-exact match so ordinary navigation isn't mistaken for apply.
func pickAdvance(candidates []advanceCandidate) int {
	best := -1
	bestScore := 0

	for _, c := range candidates {
		if !c.Visible {
			continue
		}
		text := strings.ToLower(c.Text)
		if len(text) > 30 {
			continue
		}

		score := 0
		switch {
		case c.Type == "submit" && matchesAdvance(text, c.Tag):
			score = 3
		case c.Role == "button" && matchesAdvance(text, c.Tag):
			score = 2
		case matchesAdvance(text, c.Tag):
			score = 1
		}

		if score > bestScore {
			best = c.Index
			bestScore = score
		}
	}
	return best
}

func matchesAdvance(text, tag string) bool {
	for _, exact := range advanceExact {
		if text == exact {
			return true
		}
	}
	if tag == "a" {
		// Links get the loose tier only with a strong apply signal
		return strings.Contains(text, "apply") && len(text) < 25
	}
	for _, loose := range advanceLoose {
		if strings.Contains(text, loose) {
			return true
		}
	}
	return false
}
