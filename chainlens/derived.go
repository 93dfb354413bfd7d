package chainlens

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// computeImbalance requires the open interest columns of both sides. The result is shared by both sides.
func computeImbalance(table *Table, log zerolog.Logger) {
	if !table.Capabilities[CE].OpenInterest || !table.Capabilities[PE].OpenInterest {
		log.Debug().Msg("Skipping OI imbalance, missing open interest columns")
		return
	}
	for i := range table.Rows {
		row := &table.Rows[i]
		row.OIImbalance = getImbalance(row.Quotes[CE].OpenInterest, row.Quotes[PE].OpenInterest)
	}
	table.Imbalance = true
}

func getImbalance(call, put *float64) *float64 {
	if call == nil || put == nil {
		return nil
	}
	output := (*call - *put) / (*call + *put + epsilon)
	return &output
}

// computeRollingCorrelation correlates price changes with OI changes over a trailing window within each strike.
func computeRollingCorrelation(table *Table, window int, log zerolog.Logger) {
	for _, side := range sides {
		if !table.Capabilities[side].Deltas {
			continue
		}
		values := 0
		for _, group := range groupByStrike(table, side) {
			quotes := group.quotes(table, side)
			priceChanges := make([]*float64, len(quotes))
			oiChanges := make([]*float64, len(quotes))
			for i, quote := range quotes {
				priceChanges[i] = quote.PriceChange
				oiChanges[i] = quote.OIChange
			}
			correlations := getRollingCorrelation(priceChanges, oiChanges, window)
			for i, index := range group.rows {
				table.Rows[index].Quote(side).RollingCorrelation = correlations[i]
				if correlations[i] != nil {
					values++
				}
			}
		}
		log.Debug().
			Str("side", side.String()).
			Int("window", window).
			Int("values", values).
			Msg("Computed rolling correlation")
	}
}

// getRollingCorrelation needs a full window of complete pairs. Windows with zero variance stay empty.
func getRollingCorrelation(x, y []*float64, window int) []*float64 {
	output := make([]*float64, len(x))
	if window < 2 {
		return output
	}
	xWindow := newTrailingWindow(window)
	yWindow := newTrailingWindow(window)
	for i := range x {
		xWindow.push(x[i])
		yWindow.push(y[i])
		if !xWindow.complete() || !yWindow.complete() {
			continue
		}
		coefficient := stat.Correlation(xWindow.getValues(), yWindow.getValues(), nil)
		if math.IsNaN(coefficient) {
			continue
		}
		output[i] = floatPointer(coefficient)
	}
	return output
}
