// Package rotation derives category fairness modifiers from recent featuring
// history. Counts are recomputed from slot history on every request; nothing
// here is authoritative state.
package rotation

import (
	"sort"
	"time"
)

// FeaturedEntry is one historical featuring event, reduced to what the
// tracker needs.
type FeaturedEntry struct {
	CategoryID string
	StartAt    time.Time
}

// Config tunes the rolling window and the modifier magnitude. The sign
// convention and the tri-bucket split are fixed; only the magnitude and the
// window length are product-tunable.
type Config struct {
	Window   time.Duration
	Modifier float64
}

// CategoryStat is the rolling frequency and fairness modifier for one
// category.
type CategoryStat struct {
	CategoryID    string
	FeaturedCount int
	Modifier      float64
}

// Stats counts featurings per category inside [asOf-window, asOf) and buckets
// categories into thirds by count: the most-featured third is discouraged
// with a negative modifier, the least-featured third (and any category never
// featured in the window) is encouraged with a positive one, and the middle
// stays neutral. Results are ordered by count descending, id ascending.
func Stats(categories []string, entries []FeaturedEntry, asOf time.Time, cfg Config) []CategoryStat {
	counts := make(map[string]int, len(categories))
	for _, id := range categories {
		counts[id] = 0
	}

	from := asOf.Add(-cfg.Window)
	for _, e := range entries {
		if e.StartAt.Before(from) || !e.StartAt.Before(asOf) {
			continue
		}
		counts[e.CategoryID]++
	}

	stats := make([]CategoryStat, 0, len(counts))
	for id, count := range counts {
		stats = append(stats, CategoryStat{CategoryID: id, FeaturedCount: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].FeaturedCount != stats[j].FeaturedCount {
			return stats[i].FeaturedCount > stats[j].FeaturedCount
		}
		return stats[i].CategoryID < stats[j].CategoryID
	})

	third := len(stats) / 3
	for i := range stats {
		switch {
		case stats[i].FeaturedCount == 0:
			stats[i].Modifier = cfg.Modifier
		case i < third:
			stats[i].Modifier = -cfg.Modifier
		case i >= len(stats)-third:
			stats[i].Modifier = cfg.Modifier
		}
	}
	return stats
}

// SuggestedCategory picks the category with the most favourable modifier,
// breaking ties by lowest raw count and then by id.
func SuggestedCategory(stats []CategoryStat) string {
	best := -1
	for i, s := range stats {
		if best < 0 {
			best = i
			continue
		}
		b := stats[best]
		if s.Modifier != b.Modifier {
			if s.Modifier > b.Modifier {
				best = i
			}
			continue
		}
		if s.FeaturedCount != b.FeaturedCount {
			if s.FeaturedCount < b.FeaturedCount {
				best = i
			}
			continue
		}
		if s.CategoryID < b.CategoryID {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return stats[best].CategoryID
}

// Modifiers flattens stats into a category → modifier lookup for the ranking
// engine.
func Modifiers(stats []CategoryStat) map[string]float64 {
	m := make(map[string]float64, len(stats))
	for _, s := range stats {
		m[s.CategoryID] = s.Modifier
	}
	return m
}
