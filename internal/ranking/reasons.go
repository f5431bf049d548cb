package ranking

import (
	"fmt"
	"sort"
	"time"
)

// reasonRule maps one score component to its justification text. Keeping the
// table explicit keeps reason output testable and localisable.
type reasonRule struct {
	contribution func(components) float64
	render       func(Candidate, time.Time) string
}

var reasonRules = []reasonRule{
	{
		contribution: func(c components) float64 { return c.trending },
		render: func(Candidate, time.Time) string {
			return "high trending score"
		},
	},
	{
		contribution: func(c components) float64 { return c.velocity },
		render: func(Candidate, time.Time) string {
			return "strong save velocity"
		},
	},
	{
		contribution: func(c components) float64 { return c.recency },
		render: func(cand Candidate, now time.Time) string {
			if cand.LastFeaturedAt == nil {
				return "never featured before"
			}
			weeks := int(now.Sub(*cand.LastFeaturedAt).Hours() / (24 * 7))
			return fmt.Sprintf("not featured in %d weeks", weeks)
		},
	},
	{
		contribution: func(c components) float64 { return c.rotation },
		render: func(Candidate, time.Time) string {
			return "under-represented category this month"
		},
	},
}

// reasonsFor renders at most MaxReasons justifications, ordered by the
// magnitude of the component each one is derived from. Components below the
// significance threshold emit nothing.
func reasonsFor(cand Candidate, comp components, now time.Time, cfg Config) []string {
	type scored struct {
		weight float64
		text   string
	}
	picked := make([]scored, 0, len(reasonRules))
	for _, rule := range reasonRules {
		weight := rule.contribution(comp)
		if weight < cfg.ReasonThreshold {
			continue
		}
		picked = append(picked, scored{weight: weight, text: rule.render(cand, now)})
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].weight > picked[j].weight
	})

	limit := cfg.MaxReasons
	if limit <= 0 || limit > len(picked) {
		limit = len(picked)
	}
	reasons := make([]string, 0, limit)
	for _, p := range picked[:limit] {
		reasons = append(reasons, p.text)
	}
	return reasons
}
