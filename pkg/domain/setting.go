package domain

import (
	"fmt"
	"time"
)

// RunSource tags a run and its journal lines
type RunSource string

// run sources
const (
	SourceManual RunSource = "manual"
	SourceCron   RunSource = "cron"
)

// Label returns capitalized source name used in log lines
func (s RunSource) Label() string {
	if s == SourceManual {
		return "Manual"
	}
	return "Cron"
}

// PauseState is the value of the cron_status setting
type PauseState string

// pause states
const (
	StateActive PauseState = "active"
	StatePaused PauseState = "paused"
)

// setting keys kept in the settings store
const (
	SettingCronStatus  = "cron_status"
	SettingLastCronRun = "last_cron_run"
)

// LogEntry is one line of the run journal
type LogEntry struct {
	ID        int64
	Timestamp time.Time
	Source    RunSource
	Message   string
}

// String formats entry the way the log viewer shows it
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Source.Label(), e.Message)
}

// RunResult summarizes one processing pass
type RunResult struct {
	Source       RunSource
	Skipped      string // non-empty when the pass did no work, e.g. "paused" or "locked"
	FeedsChecked int
	Published    int
	Started      time.Time
	Finished     time.Time
}
