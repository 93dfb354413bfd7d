package chainlens

import "github.com/rs/zerolog"

type Quadrant string

const (
	LongBuildup  Quadrant = "Long Buildup"
	LongUnwind   Quadrant = "Long Unwind"
	ShortCover   Quadrant = "Short Cover"
	ShortBuildup Quadrant = "Short Buildup"
	Flat         Quadrant = "Flat"
)

var Quadrants = []Quadrant{
	LongBuildup,
	LongUnwind,
	ShortCover,
	ShortBuildup,
	Flat,
}

// Classify maps the signs of a price change and an OI change to a quadrant. Zero counts as neither sign.
func Classify(priceChange, oiChange float64) Quadrant {
	switch {
	case priceChange > 0 && oiChange > 0:
		return LongBuildup
	case priceChange < 0 && oiChange < 0:
		return LongUnwind
	case priceChange > 0 && oiChange < 0:
		return ShortCover
	case priceChange < 0 && oiChange > 0:
		return ShortBuildup
	default:
		return Flat
	}
}

func classifyQuotes(table *Table, log zerolog.Logger) {
	for _, side := range sides {
		if !table.Capabilities[side].Deltas {
			continue
		}
		classified := 0
		for i := range table.Rows {
			quote := table.Rows[i].Quote(side)
			if quote.PriceChange == nil || quote.OIChange == nil {
				continue
			}
			quote.Quadrant = Classify(*quote.PriceChange, *quote.OIChange)
			classified++
		}
		log.Debug().
			Str("side", side.String()).
			Int("rows", classified).
			Msg("Classified quadrants")
	}
}
