package chainlens

import (
	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

const Lookback = 14

func computeOscillators(table *Table, log zerolog.Logger) {
	for _, side := range sides {
		capability := &table.Capabilities[side]
		if !capability.Deltas {
			continue
		}
		for _, group := range groupByStrike(table, side) {
			quotes := group.quotes(table, side)
			priceChanges := make([]float64, len(quotes))
			prices := make([]*float64, len(quotes))
			for i, quote := range quotes {
				if quote.PriceChange != nil {
					priceChanges[i] = *quote.PriceChange
				}
				prices[i] = quote.LastPrice
			}
			oscillators := getOscillator(priceChanges, Lookback)
			zScores := getZScores(prices, Lookback)
			for i, index := range group.rows {
				quote := table.Rows[index].Quote(side)
				quote.Oscillator = oscillators[i]
				quote.ZScore = zScores[i]
			}
		}
		capability.Oscillator = true
		log.Debug().
			Str("side", side.String()).
			Int("lookback", Lookback).
			Msg("Computed oscillators")
	}
}

// getOscillator is an RSI built from simple moving averages of the gains and losses.
// Positions before the first full window stay empty.
func getOscillator(priceChanges []float64, lookback int) []*float64 {
	output := make([]*float64, len(priceChanges))
	if lookback < 1 || len(priceChanges) < lookback {
		return output
	}
	gains := make([]float64, len(priceChanges))
	losses := make([]float64, len(priceChanges))
	for i, change := range priceChanges {
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}
	gainAverages := talib.Sma(gains, lookback)
	lossAverages := talib.Sma(losses, lookback)
	for i := lookback - 1; i < len(priceChanges); i++ {
		// The running sums inside Sma can drift a hair below zero
		gain := max(gainAverages[i], 0)
		loss := max(lossAverages[i], 0)
		relativeStrength := gain / (loss + epsilon)
		oscillator := 100.0 - 100.0/(1.0+relativeStrength)
		output[i] = floatPointer(oscillator)
	}
	return output
}

// getZScores measures the last price against the trailing mean in units of the trailing sample deviation.
func getZScores(prices []*float64, lookback int) []*float64 {
	output := make([]*float64, len(prices))
	if lookback < 2 {
		return output
	}
	window := newTrailingWindow(lookback)
	for i, price := range prices {
		window.push(price)
		if !window.complete() {
			continue
		}
		mean, stdDev := stat.MeanStdDev(window.getValues(), nil)
		if !(stdDev > epsilon) {
			continue
		}
		zScore := (*price - mean) / stdDev
		output[i] = floatPointer(zScore)
	}
	return output
}
