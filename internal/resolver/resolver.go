package resolver

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
	"github.com/jobfiller/jobfiller/internal/sanitize"
)

// Inferrer answers a field-filling prompt. Satisfied by the provider
// orchestrator; tests substitute a scripted fake.
type Inferrer interface {
	Infer(ctx context.Context, req *ai.Request) (string, error)
}

// Resolver produces a value for one field using tiered strategies:
// learned answers, then the synonym table, then AI. It is stateless;
// the caller serializes invocations to respect provider rate limits.
type Resolver struct {
	ai        Inferrer
	aiEnabled bool
	log       logging.Tagged
}

// New creates a resolver. A nil inferrer or aiEnabled=false disables
// the AI tier; tiers 1 and 2 still work.
func New(inferrer Inferrer, aiEnabled bool) *Resolver {
	return &Resolver{
		ai:        inferrer,
		aiEnabled: aiEnabled,
		log:       logging.WithTag("Resolver"),
	}
}

// Resolve runs the tiers in order, first hit wins. Deterministic tiers
// never fail; an AI-tier provider failure is returned alongside a skip
// result so the session can record it without halting.
func (r *Resolver) Resolve(ctx context.Context, field *FieldDescriptor, prof *profile.Context) (ResolutionResult, error) {
	if answer, ok := learnedMatch(field.Label, prof.QnA); ok {
		r.log.Infof("Learned match: %q -> %q", field.Label, answer)
		return ResolutionResult{Value: answer, Method: MethodLearned}, nil
	}

	if value, ok := directMatch(field, prof); ok {
		r.log.Infof("Direct match: %q -> %q", field.Label, value)
		return ResolutionResult{Value: value, Method: MethodDirect}, nil
	}

	if !r.aiEnabled || r.ai == nil {
		return ResolutionResult{Value: SkipValue, Method: MethodSkip}, nil
	}

	raw, err := r.ai.Infer(ctx, &ai.Request{
		Prompt:   BuildPrompt(field, prof),
		JSONMode: true,
	})
	if err != nil {
		r.log.Warnf("AI failed for %q: %v", field.Label, err)
		return ResolutionResult{Value: SkipValue, Method: MethodSkip}, err
	}

	value := sanitize.Clean(extractValue(raw), field.Label, prof)
	if value == sanitize.Skip {
		return ResolutionResult{Value: SkipValue, Method: MethodSkip}, nil
	}

	r.log.Infof("AI match: %q -> %q", field.Label, value)
	return ResolutionResult{Value: value, Method: MethodAI}, nil
}

// learnedMatch compares the normalized label against every learned
// question using three tests in order: exact equality, substring
// containment either direction, equality after stripping everything
// non-alphanumeric. First matching entry wins.
func learnedMatch(label string, qna []profile.QnAEntry) (string, bool) {
	norm := CleanLabel(label)
	if norm == "" {
		return "", false
	}
	stripped := alnumOnly(norm)

	for _, entry := range qna {
		q := CleanLabel(entry.Question)
		if q == "" || entry.Answer == "" {
			continue
		}
		if norm == q {
			return entry.Answer, true
		}
		if strings.Contains(norm, q) || strings.Contains(q, norm) {
			return entry.Answer, true
		}
		if stripped != "" && stripped == alnumOnly(q) {
			return entry.Answer, true
		}
	}
	return "", false
}

// extractValue pulls the "value" key out of a JSON-mode response,
// tolerating fences and surrounding prose. Falls back to the raw text
// when no JSON object can be found.
func extractValue(raw string) string {
	jsonStr := raw
	if first, last := strings.Index(jsonStr, "{"), strings.LastIndex(jsonStr, "}"); first >= 0 && last > first {
		jsonStr = jsonStr[first : last+1]
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
		for _, key := range []string{"value", "Value"} {
			switch v := parsed[key].(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		return SkipValue
	}
	return raw
}
