package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/metrics"
)

// SaveFeatures writes rows as CSV with model.FeatureColumns as header.
// Missing values are empty cells.
func SaveFeatures(path string, rows []model.FeatureRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.FighterID,
			r.Name,
			strOrEmpty(r.WeightClass),
			intOrEmpty(r.ActivityRecencyDays),
			strconv.Itoa(r.WinStreak),
			floatOrEmpty(r.Last5WinPct),
			floatOrEmpty(r.SigStrDiffPerMin),
			floatOrEmpty(r.TDRate),
			floatOrEmpty(r.TDAttemptsPer15),
			floatOrEmpty(r.ControlPer15),
			floatOrEmpty(r.FinishRate),
			floatOrEmpty(r.OpponentRecentWinPctAvg),
		})
	}
	if err := writeCSV(path, model.FeatureColumns, records); err != nil {
		return err
	}
	metrics.UpdateFeatureRows(len(rows))
	return nil
}

// LoadFeatures reads a features CSV by column name. Empty or unparsable
// numbers load as nil; a missing win streak is zero.
func LoadFeatures(path string) ([]model.FeatureRow, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("features %s: %w", path, errors.Join(ErrNoData, err))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []model.FeatureRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %w", ErrCorrupt, filepath.Base(path), err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	out := make([]model.FeatureRow, 0)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, filepath.Base(path), err)
		}
		cell := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		row := model.FeatureRow{
			FighterID:               cell("fighter_id"),
			Name:                    cell("name"),
			ActivityRecencyDays:     parseInt(cell("activity_recency_days")),
			Last5WinPct:             parseFloat(cell("last_5_win_pct")),
			SigStrDiffPerMin:        parseFloat(cell("sig_str_diff_per_min")),
			TDRate:                  parseFloat(cell("td_rate")),
			TDAttemptsPer15:         parseFloat(cell("td_attempts_per_15")),
			ControlPer15:            parseFloat(cell("control_per_15")),
			FinishRate:              parseFloat(cell("finish_rate")),
			OpponentRecentWinPctAvg: parseFloat(cell("opponent_recent_win_pct_avg")),
		}
		if wc := cell("weight_class"); wc != "" {
			row.WeightClass = &wc
		}
		if s := parseInt(cell("win_streak")); s != nil {
			row.WinStreak = *s
		}
		out = append(out, row)
	}
	return out, nil
}

// SaveSnapshots writes training rows as CSV with model.SnapshotColumns as header.
func SaveSnapshots(path string, rows []model.Snapshot) error {
	records := make([][]string, 0, len(rows))
	for _, s := range rows {
		records = append(records, []string{
			s.BoutID,
			s.FighterID,
			s.OpponentID,
			s.SnapshotDate,
			intOrEmpty(s.DaysSinceLastFight),
			strconv.Itoa(s.FightsLast12m),
			strconv.Itoa(s.FightsLast24m),
			strconv.Itoa(s.WinStreak),
			floatOrEmpty(s.LastNResultsSummary),
			strconv.Itoa(s.TotalFightsToDate),
			floatOrEmpty(s.OpponentWinRateToDate),
			strconv.Itoa(s.OpponentWinStreakToDate),
			floatOrEmpty(s.FighterFinishRateToDate),
			strconv.FormatBool(s.LabelWin),
		})
	}
	return writeCSV(path, model.SnapshotColumns, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseInt accepts integral text and float text such as "30.0".
func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
