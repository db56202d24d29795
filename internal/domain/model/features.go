package model

// FeatureColumns is the header of the features table, in order.
var FeatureColumns = []string{ //nolint:gochecknoglobals // fixed table schema
	"fighter_id", "name", "weight_class",
	"activity_recency_days", "win_streak", "last_5_win_pct",
	"sig_str_diff_per_min", "td_rate", "td_attempts_per_15", "control_per_15",
	"finish_rate", "opponent_recent_win_pct_avg",
}

// FeatureRow is a per-fighter snapshot of rolling statistics as of one instant.
type FeatureRow struct {
	FighterID               string   `json:"fighter_id"`
	Name                    string   `json:"name"`
	WeightClass             *string  `json:"weight_class"`
	ActivityRecencyDays     *int     `json:"activity_recency_days"`
	WinStreak               int      `json:"win_streak"`
	Last5WinPct             *float64 `json:"last_5_win_pct"`
	SigStrDiffPerMin        *float64 `json:"sig_str_diff_per_min"`
	TDRate                  *float64 `json:"td_rate"`
	TDAttemptsPer15         *float64 `json:"td_attempts_per_15"`
	ControlPer15            *float64 `json:"control_per_15"`
	FinishRate              *float64 `json:"finish_rate"`
	OpponentRecentWinPctAvg *float64 `json:"opponent_recent_win_pct_avg"`
}

// Division returns the weight class or "".
func (r FeatureRow) Division() string {
	if r.WeightClass == nil {
		return ""
	}
	return *r.WeightClass
}

// DisplayName falls back to the id when no name is known.
func (r FeatureRow) DisplayName() string {
	if r.Name == "" {
		return r.FighterID
	}
	return r.Name
}

// SnapshotColumns is the header of the training snapshot table, in order.
var SnapshotColumns = []string{ //nolint:gochecknoglobals // fixed table schema
	"bout_id", "fighter_id", "opponent_id", "snapshot_date",
	"days_since_last_fight", "fights_last_12m", "fights_last_24m",
	"win_streak", "last_n_results_summary", "total_fights_to_date",
	"opponent_win_rate_to_date", "opponent_win_streak_to_date",
	"fighter_finish_rate_to_date", "label_win",
}

// Snapshot is one (bout, fighter) row of pre-bout history, used as a
// training example by an external win-probability model.
type Snapshot struct {
	BoutID                  string   `json:"bout_id"`
	FighterID               string   `json:"fighter_id"`
	OpponentID              string   `json:"opponent_id"`
	SnapshotDate            string   `json:"snapshot_date"`
	DaysSinceLastFight      *int     `json:"days_since_last_fight"`
	FightsLast12m           int      `json:"fights_last_12m"`
	FightsLast24m           int      `json:"fights_last_24m"`
	WinStreak               int      `json:"win_streak"`
	LastNResultsSummary     *float64 `json:"last_n_results_summary"`
	TotalFightsToDate       int      `json:"total_fights_to_date"`
	OpponentWinRateToDate   *float64 `json:"opponent_win_rate_to_date"`
	OpponentWinStreakToDate int      `json:"opponent_win_streak_to_date"`
	FighterFinishRateToDate *float64 `json:"fighter_finish_rate_to_date"`
	LabelWin                bool     `json:"label_win"`
}
