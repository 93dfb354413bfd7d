package chainlens

import "github.com/rs/zerolog"

type quoteDelta struct {
	volume        *float64
	openInterest  *float64
	price         *float64
	percentReturn *float64
}

// computeDeltas differences every side that carries all quote columns, strike by strike.
func computeDeltas(table *Table, log zerolog.Logger) {
	for _, side := range sides {
		capability := &table.Capabilities[side]
		if !capability.Quotes {
			log.Debug().Str("side", side.String()).Msg("Skipping deltas, missing quote columns")
			continue
		}
		groups := groupByStrike(table, side)
		for _, group := range groups {
			deltas := getDeltas(group.quotes(table, side))
			for i, index := range group.rows {
				quote := table.Rows[index].Quote(side)
				delta := deltas[i]
				quote.VolumeChange = delta.volume
				quote.OIChange = delta.openInterest
				quote.PriceChange = delta.price
				quote.PercentReturn = delta.percentReturn
			}
		}
		capability.Deltas = true
		log.Debug().
			Str("side", side.String()).
			Int("strikes", len(groups)).
			Msg("Computed deltas")
	}
}

// getDeltas compares each quote with its predecessor. The first element has nothing to compare against.
func getDeltas(quotes []Quote) []quoteDelta {
	output := make([]quoteDelta, len(quotes))
	for i := 1; i < len(quotes); i++ {
		previous := quotes[i-1]
		current := quotes[i]
		output[i] = quoteDelta{
			volume:        subtract(current.Volume, previous.Volume),
			openInterest:  subtract(current.OpenInterest, previous.OpenInterest),
			price:         subtract(current.LastPrice, previous.LastPrice),
			percentReturn: getPercentReturn(current.LastPrice, previous.LastPrice),
		}
	}
	return output
}
