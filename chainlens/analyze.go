package chainlens

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type ColumnStats struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	NilRatio float64 `json:"nilRatio"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stdDev"`
}

type QuadrantCount struct {
	Side     string   `json:"side"`
	Quadrant Quadrant `json:"quadrant"`
	Count    int      `json:"count"`
}

type columnAccessor struct {
	name string
	get  func(*Row) *float64
}

func getColumnAccessors(table *Table) []columnAccessor {
	accessors := []columnAccessor{}
	for _, side := range sides {
		capability := table.Capabilities[side]
		if capability.Deltas {
			accessors = append(accessors,
				newQuoteAccessor(side, "volChange", func(q *Quote) *float64 { return q.VolumeChange }),
				newQuoteAccessor(side, "oiChange", func(q *Quote) *float64 { return q.OIChange }),
				newQuoteAccessor(side, "priceChange", func(q *Quote) *float64 { return q.PriceChange }),
				newQuoteAccessor(side, "%Return", func(q *Quote) *float64 { return q.PercentReturn }),
				newQuoteAccessor(side, "rollingCorrelation", func(q *Quote) *float64 { return q.RollingCorrelation }),
			)
		}
		if capability.Oscillator {
			accessors = append(accessors,
				newQuoteAccessor(side, "oscillator", func(q *Quote) *float64 { return q.Oscillator }),
				newQuoteAccessor(side, "zScore", func(q *Quote) *float64 { return q.ZScore }),
			)
		}
	}
	if table.Imbalance {
		accessor := columnAccessor{
			name: "OI_imbalance",
			get: func(r *Row) *float64 {
				return r.OIImbalance
			},
		}
		accessors = append(accessors, accessor)
	}
	return accessors
}

func newQuoteAccessor(side Side, name string, get func(*Quote) *float64) columnAccessor {
	return columnAccessor{
		name: side.column(name),
		get: func(r *Row) *float64 {
			return get(r.Quote(side))
		},
	}
}

// GetColumnStats describes every derived column of the table.
func GetColumnStats(table *Table) []ColumnStats {
	accessors := getColumnAccessors(table)
	output := make([]ColumnStats, 0, len(accessors))
	for _, accessor := range accessors {
		output = append(output, getColumnStatsWorker(accessor, table))
	}
	return output
}

func getColumnStatsWorker(accessor columnAccessor, table *Table) ColumnStats {
	values := []float64{}
	nilValues := 0
	minimum := math.Inf(1)
	maximum := math.Inf(-1)
	for i := range table.Rows {
		pointer := accessor.get(&table.Rows[i])
		if pointer == nil {
			nilValues++
			continue
		}
		value := *pointer
		minimum = min(minimum, value)
		maximum = max(maximum, value)
		values = append(values, value)
	}
	stats := ColumnStats{
		Name:  accessor.name,
		Count: len(values),
	}
	if len(table.Rows) > 0 {
		stats.NilRatio = float64(nilValues) / float64(len(table.Rows))
	}
	if len(values) == 0 {
		return stats
	}
	stats.Min = minimum
	stats.Max = maximum
	stats.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		stats.StdDev = stat.StdDev(values, nil)
	}
	return stats
}

// GetQuadrantCounts lists every label for every classified side, including labels that never occurred.
func GetQuadrantCounts(table *Table) []QuadrantCount {
	output := []QuadrantCount{}
	for _, side := range sides {
		if !table.Capabilities[side].Deltas {
			continue
		}
		counts := map[Quadrant]int{}
		for i := range table.Rows {
			quadrant := table.Rows[i].Quotes[side].Quadrant
			if quadrant != "" {
				counts[quadrant]++
			}
		}
		for _, quadrant := range Quadrants {
			count := QuadrantCount{
				Side:     side.String(),
				Quadrant: quadrant,
				Count:    counts[quadrant],
			}
			output = append(output, count)
		}
	}
	return output
}
