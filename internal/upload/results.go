package upload

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// ResultEntry is one attempt's outcome, newest first in the log.
type ResultEntry struct {
	Timestamp      time.Time
	FileName       string
	Text           string
	ProcessingTime float64
	Err            error
}

// IsError reports whether the entry records a failed attempt.
func (e ResultEntry) IsError() bool {
	return e.Err != nil
}

// Render formats the entry the way the results log displays it.
func (e ResultEntry) Render() string {
	stamp := e.Timestamp.Format("15:04:05")
	if e.IsError() {
		return fmt.Sprintf("[%s] %s: Error: %v", stamp, e.FileName, e.Err)
	}
	return fmt.Sprintf("[%s] %s (%.1fs): %s", stamp, e.FileName, e.ProcessingTime, e.Text)
}

// ResultsLog holds the session's transcription results in memory. Nothing is
// persisted; the log lives as long as the widget.
type ResultsLog struct {
	entries []ResultEntry
}

// Prepend puts the newest entry first.
func (l *ResultsLog) Prepend(entry ResultEntry) {
	l.entries = append([]ResultEntry{entry}, l.entries...)
}

// Entries returns the log, newest first.
func (l *ResultsLog) Entries() []ResultEntry {
	return l.entries
}

// Len returns the number of entries.
func (l *ResultsLog) Len() int {
	return len(l.entries)
}

// RenderAll formats every entry, newest first.
func (l *ResultsLog) RenderAll() []string {
	return lo.Map(l.entries, func(e ResultEntry, _ int) string {
		return e.Render()
	})
}

// Successes returns only the successful entries, newest first.
func (l *ResultsLog) Successes() []ResultEntry {
	return lo.Filter(l.entries, func(e ResultEntry, _ int) bool {
		return !e.IsError()
	})
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// HumanSize formats a byte count by repeated division by 1024, trimming
// trailing zeros, e.g. "512 Bytes", "1.5 KB", "48.83 MB".
func HumanSize(bytes int64) string {
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
