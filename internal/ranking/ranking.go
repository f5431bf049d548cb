// Package ranking scores eligible content lists for the next featured slot.
// The composite score is a transparent weighted sum, not a trained model:
// identical inputs always produce identical output order.
package ranking

import (
	"sort"
	"time"
)

// Candidate is the read-only view of a promotable content list.
type Candidate struct {
	ID             string
	CategoryID     string
	TrendingScore  float64
	SaveVelocity   float64
	LastFeaturedAt *time.Time
}

// Config carries the fixed score weights and eligibility filters.
type Config struct {
	TrendingWeight  float64
	VelocityWeight  float64
	RecencyWeight   float64
	RotationWeight  float64
	CoolDown        time.Duration
	RecencyCapDays  float64
	ReasonThreshold float64
	MaxReasons      int
}

// components holds the weighted score contributions, kept for reason
// generation.
type components struct {
	trending float64
	velocity float64
	recency  float64
	rotation float64
}

func (c components) total() float64 {
	return c.trending + c.velocity + c.recency + c.rotation
}

// Suggestion is a ranked candidate with its score and the human-readable
// justifications derived from the dominant score components.
type Suggestion struct {
	Candidate
	Score   float64
	Reasons []string
}

// Suggest filters and ranks candidates. Content currently covered by an
// active or upcoming slot (busy) is excluded, as is anything featured within
// the cool-down window. The result is ordered by score descending, then save
// velocity descending, then id, so equal inputs rank identically every call.
func Suggest(candidates []Candidate, modifiers map[string]float64, busy map[string]bool, now time.Time, cfg Config) []Suggestion {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if busy[c.ID] {
			continue
		}
		if c.LastFeaturedAt != nil && now.Sub(*c.LastFeaturedAt) < cfg.CoolDown {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return nil
	}

	maxTrending, maxVelocity := 0.0, 0.0
	for _, c := range eligible {
		if c.TrendingScore > maxTrending {
			maxTrending = c.TrendingScore
		}
		if c.SaveVelocity > maxVelocity {
			maxVelocity = c.SaveVelocity
		}
	}

	suggestions := make([]Suggestion, 0, len(eligible))
	for _, c := range eligible {
		comp := components{
			trending: cfg.TrendingWeight * normalise(c.TrendingScore, maxTrending),
			velocity: cfg.VelocityWeight * normalise(c.SaveVelocity, maxVelocity),
			recency:  cfg.RecencyWeight * recencyBonus(c.LastFeaturedAt, now, cfg.RecencyCapDays),
			rotation: cfg.RotationWeight * modifiers[c.CategoryID],
		}
		suggestions = append(suggestions, Suggestion{
			Candidate: c,
			Score:     comp.total(),
			Reasons:   reasonsFor(c, comp, now, cfg),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SaveVelocity != b.SaveVelocity {
			return a.SaveVelocity > b.SaveVelocity
		}
		return a.ID < b.ID
	})
	return suggestions
}

func normalise(value, max float64) float64 {
	if max <= 0 || value <= 0 {
		return 0
	}
	return value / max
}

// recencyBonus grows with days since the last featuring and saturates at the
// configured cap. Never-featured content earns the full bonus.
func recencyBonus(lastFeaturedAt *time.Time, now time.Time, capDays float64) float64 {
	if lastFeaturedAt == nil {
		return 1
	}
	days := now.Sub(*lastFeaturedAt).Hours() / 24
	if days <= 0 {
		return 0
	}
	if days >= capDays {
		return 1
	}
	return days / capDays
}
