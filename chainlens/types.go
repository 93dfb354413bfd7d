package chainlens

import (
	"fmt"
	"slices"
	"time"
)

type Side int

const (
	CE Side = iota
	PE
)

var sides = []Side{CE, PE}

const (
	volumeColumn            = "totalTradedVolume"
	openInterestColumn      = "openInterest"
	lastPriceColumn         = "lastPrice"
	impliedVolatilityColumn = "impliedVolatility"
	strikePriceColumn       = "strikePrice"
)

// Every side needs all of these before it is differenced, even though the implied volatility is never used.
var quoteColumns = []string{
	volumeColumn,
	openInterestColumn,
	lastPriceColumn,
	impliedVolatilityColumn,
	strikePriceColumn,
}

// Quote holds one side of one snapshot row. Input cells come first, the rest is filled in by the analysis stages.
type Quote struct {
	Volume            *float64
	OpenInterest      *float64
	LastPrice         *float64
	ImpliedVolatility *float64
	Strike            *float64

	VolumeChange       *float64
	OIChange           *float64
	PriceChange        *float64
	PercentReturn      *float64
	RollingCorrelation *float64
	Quadrant           Quadrant
	Oscillator         *float64
	ZScore             *float64
}

type Row struct {
	Index       int
	Source      string
	Timestamp   *time.Time
	Quotes      [2]Quote
	OIImbalance *float64
}

// SideCapability records which stages may run for a side and which already did.
type SideCapability struct {
	Quotes       bool
	OpenInterest bool
	Strike       bool
	Deltas       bool
	Oscillator   bool
}

type Table struct {
	Rows         []Row
	Columns      []string
	Capabilities [2]SideCapability
	Imbalance    bool
}

type strikeGroup struct {
	strike float64
	rows   []int
}

func (s Side) String() string {
	switch s {
	case CE:
		return "CE"
	case PE:
		return "PE"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

func (s Side) column(name string) string {
	return s.String() + "_" + name
}

func (s Side) description() string {
	if s == CE {
		return "CE calls"
	}
	return "PE puts"
}

func (r *Row) Quote(side Side) *Quote {
	return &r.Quotes[side]
}

func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t *Table) Capability(side Side) SideCapability {
	return t.Capabilities[side]
}

func (t *Table) setCapabilities() {
	for _, side := range sides {
		capability := &t.Capabilities[side]
		capability.Quotes = true
		for _, column := range quoteColumns {
			if !t.HasColumn(side.column(column)) {
				capability.Quotes = false
				break
			}
		}
		capability.OpenInterest = t.HasColumn(side.column(openInterestColumn))
		capability.Strike = t.HasColumn(side.column(strikePriceColumn))
	}
}

// groupByStrike partitions rows by exact strike value, keeping table order inside each group.
// Rows without a strike belong to no group.
func groupByStrike(table *Table, side Side) []strikeGroup {
	positions := map[float64]int{}
	groups := []strikeGroup{}
	for i := range table.Rows {
		strike := table.Rows[i].Quotes[side].Strike
		if strike == nil {
			continue
		}
		position, exists := positions[*strike]
		if !exists {
			position = len(groups)
			positions[*strike] = position
			groups = append(groups, strikeGroup{strike: *strike})
		}
		groups[position].rows = append(groups[position].rows, i)
	}
	return groups
}

func (g strikeGroup) quotes(table *Table, side Side) []Quote {
	output := make([]Quote, len(g.rows))
	for i, index := range g.rows {
		output[i] = table.Rows[index].Quotes[side]
	}
	return output
}
