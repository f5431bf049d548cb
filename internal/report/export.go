package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// WriteCSV dumps a weekly report's per-slot rows for spreadsheet analysis.
func WriteCSV(path string, weekly Weekly) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"slot_id", "content_id", "category_id", "start_at", "end_at", "impressions", "clicks", "ctr", "saves_during", "baseline_saves", "save_lift_pct", "score_lift_pct", "impact"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, perf := range weekly.Slots {
		snap := perf.Snapshot
		endAt := ""
		if end := perf.Slot.Window.BoundedEnd(); end != nil {
			endAt = end.Format(time.RFC3339)
		}
		saveLift, scoreLift := "", ""
		if snap.SaveLiftPercent != nil {
			saveLift = snap.SaveLiftPercent.StringFixed(2)
		}
		if snap.ScoreLiftPercent != nil {
			scoreLift = snap.ScoreLiftPercent.StringFixed(2)
		}
		record := []string{
			perf.Slot.ID,
			perf.Slot.ContentID,
			perf.Category.ID,
			perf.Slot.Window.Start.Format(time.RFC3339),
			endAt,
			fmt.Sprintf("%d", snap.Impressions),
			fmt.Sprintf("%d", snap.Clicks),
			snap.CTR.StringFixed(4),
			fmt.Sprintf("%d", snap.SavesDuring),
			fmt.Sprintf("%d", snap.BaselineSaves),
			saveLift,
			scoreLift,
			perf.ImpactLabel,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WritePNG renders the week's save lift and CTR as a time series chart.
func WritePNG(path string, weekly Weekly, maxPoints int) error {
	if len(weekly.Slots) == 0 {
		return fmt.Errorf("nothing to render: report has no slots")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	points := downsample(weekly.Slots, maxPoints)

	x := make([]time.Time, len(points))
	saveLift := make([]float64, len(points))
	ctrPct := make([]float64, len(points))
	for i, perf := range points {
		x[i] = perf.Slot.Window.Start
		if perf.Snapshot.SaveLiftPercent != nil {
			saveLift[i] = perf.Snapshot.SaveLiftPercent.InexactFloat64()
		}
		ctrPct[i] = perf.Snapshot.CTR.InexactFloat64() * 100
	}

	pctFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Save lift (%)",
			ValueFormatter: pctFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "CTR (%)",
			ValueFormatter: pctFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Save lift %",
				XValues: x,
				YValues: saveLift,
			},
			chart.TimeSeries{
				Name:    "CTR %",
				XValues: x,
				YValues: ctrPct,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func downsample(points []SlotPerformance, max int) []SlotPerformance {
	if max <= 0 || len(points) <= max {
		return points
	}

	result := make([]SlotPerformance, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
