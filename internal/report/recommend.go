package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
)

// Report-level guidance follows the same threshold-to-canned-text rule shape
// as per-slot recommendations.

type weeklyRule struct {
	applies func(Weekly, analytics.Thresholds) bool
	render  func(Weekly) string
}

var weeklyRules = []weeklyRule{
	{
		applies: func(w Weekly, t analytics.Thresholds) bool {
			return w.TotalSlots > 0 && w.AvgCTR.LessThan(decimal.NewFromFloat(t.ModerateCTR))
		},
		render: func(Weekly) string {
			return "Average click-through was weak this week: review cover art across featured lists."
		},
	},
	{
		applies: func(w Weekly, t analytics.Thresholds) bool {
			return w.BestPerformer != nil &&
				liftAtLeast(w.BestPerformer.Snapshot.SaveLiftPercent, decimal.NewFromFloat(t.HighLift))
		},
		render: func(w Weekly) string {
			return fmt.Sprintf("Content %s drove an outsized save lift: schedule a follow-up slot.",
				w.BestPerformer.Slot.ContentID)
		},
	},
	{
		applies: func(w Weekly, _ analytics.Thresholds) bool {
			return w.TotalSlots == 0
		},
		render: func(Weekly) string {
			return "No slots ran this week: the featured placement sat empty."
		},
	},
}

func weeklyRecommendations(weekly Weekly, t analytics.Thresholds) []string {
	var out []string
	for _, rule := range weeklyRules {
		if rule.applies(weekly, t) {
			out = append(out, rule.render(weekly))
		}
	}
	return out
}

type categoryRule struct {
	applies func(CategoryInsight, analytics.Thresholds) bool
	render  func(CategoryInsight) string
}

var categoryRules = []categoryRule{
	{
		applies: func(c CategoryInsight, t analytics.Thresholds) bool {
			return c.AvgSaveLift.GreaterThanOrEqual(decimal.NewFromFloat(t.HighLift))
		},
		render: func(c CategoryInsight) string {
			return fmt.Sprintf("Category %s consistently lifts saves: give it more slots.", c.Category.ID)
		},
	},
	{
		applies: func(c CategoryInsight, t analytics.Thresholds) bool {
			return c.AvgCTR.LessThan(decimal.NewFromFloat(t.ModerateCTR))
		},
		render: func(c CategoryInsight) string {
			return fmt.Sprintf("Category %s draws few clicks when featured: test different lead content.", c.Category.ID)
		},
	},
}

func categoryRecommendations(insight CategoryInsight, t analytics.Thresholds) []string {
	var out []string
	for _, rule := range categoryRules {
		if rule.applies(insight, t) {
			out = append(out, rule.render(insight))
		}
	}
	return out
}
