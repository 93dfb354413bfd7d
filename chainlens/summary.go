package chainlens

import (
	"fmt"
	"time"
)

const signalPlaceholder = "Signals will appear once data is loaded."

const bullishThreshold = 60.0
const bearishThreshold = 40.0

type Momentum string

const (
	BullishMomentum Momentum = "bullish momentum"
	BearishMomentum Momentum = "bearish momentum"
	NeutralMomentum Momentum = "neutral"
)

type Signal struct {
	Side       string   `json:"side"`
	Oscillator float64  `json:"oscillator"`
	Momentum   Momentum `json:"momentum"`
}

type Summary struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Signals   []Signal   `json:"signals"`
	Lines     []string   `json:"lines"`
}

// GetMomentum uses strict thresholds, so exactly 60 and exactly 40 are neutral.
func GetMomentum(oscillator float64) Momentum {
	switch {
	case oscillator > bullishThreshold:
		return BullishMomentum
	case oscillator < bearishThreshold:
		return BearishMomentum
	default:
		return NeutralMomentum
	}
}

// Summarize reads the oscillators of the most recent observation.
func Summarize(table *Table) Summary {
	row := getLatestRow(table)
	if row == nil {
		return Summary{
			Signals: []Signal{},
			Lines:   []string{signalPlaceholder},
		}
	}
	summary := Summary{
		Timestamp: row.Timestamp,
		Signals:   []Signal{},
		Lines:     []string{},
	}
	for _, side := range sides {
		if !table.Capabilities[side].Oscillator {
			continue
		}
		oscillator := row.Quotes[side].Oscillator
		if oscillator == nil {
			continue
		}
		signal := Signal{
			Side:       side.String(),
			Oscillator: *oscillator,
			Momentum:   GetMomentum(*oscillator),
		}
		line := fmt.Sprintf("%s: oscillator %.1f -> %s", side.description(), signal.Oscillator, signal.Momentum)
		summary.Signals = append(summary.Signals, signal)
		summary.Lines = append(summary.Lines, line)
	}
	return summary
}

// getLatestRow keeps the last row of every timestamp and returns the last of those.
// Rows without a timestamp are never picked.
func getLatestRow(table *Table) *Row {
	lastRows := map[time.Time]int{}
	for i := range table.Rows {
		timestamp := table.Rows[i].Timestamp
		if timestamp == nil {
			continue
		}
		lastRows[*timestamp] = i
	}
	latest := -1
	for _, index := range lastRows {
		latest = max(latest, index)
	}
	if latest < 0 {
		return nil
	}
	return &table.Rows[latest]
}
