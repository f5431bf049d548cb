package analytics

import "github.com/shopspring/decimal"

// recommendRule is one threshold bucket mapped to canned operator guidance.
type recommendRule struct {
	applies func(Snapshot, Thresholds) bool
	text    string
}

// CTR-based rules only fire when impressions were recorded; a slot with no
// impressions reports CTR zero and stays silent on click-through.
var recommendRules = []recommendRule{
	{
		applies: func(s Snapshot, t Thresholds) bool {
			return s.Impressions > 0 && s.CTR.LessThan(decimal.NewFromFloat(t.ModerateCTR))
		},
		text: "Low click-through: refresh the cover image or title before the next run.",
	},
	{
		applies: func(s Snapshot, t Thresholds) bool {
			return s.SaveLiftPercent != nil &&
				s.SaveLiftPercent.GreaterThanOrEqual(decimal.NewFromFloat(t.HighLift))
		},
		text: "Strong save lift: repeat this category in an upcoming slot.",
	},
	{
		applies: func(s Snapshot, t Thresholds) bool {
			return s.SaveLiftPercent != nil &&
				s.SaveLiftPercent.Abs().LessThan(decimal.NewFromFloat(t.NearZeroLift))
		},
		text: "Promotion barely moved saves: try a different time window for this content.",
	},
}

// recommendationsFor walks the rule table in order and collects every
// matching suggestion.
func recommendationsFor(snap Snapshot, thresholds Thresholds) []string {
	var out []string
	for _, rule := range recommendRules {
		if rule.applies(snap, thresholds) {
			out = append(out, rule.text)
		}
	}
	return out
}
