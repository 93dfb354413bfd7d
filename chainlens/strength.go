package chainlens

import "slices"

const (
	priceOIWeight            = 0.4
	priceVolumeWeight        = 0.2
	rollingCorrelationWeight = 0.2
	oscillatorBiasWeight     = 0.2
)

type Bias string

const (
	Bull Bias = "Bull"
	Bear Bias = "Bear"
)

// SideStrength is the weighted score of one side at one strike together with its terms.
type SideStrength struct {
	Strength              float64 `json:"strength"`
	CorrPriceOI           float64 `json:"corrPriceOI"`
	CorrPriceVolume       float64 `json:"corrPriceVolume"`
	AvgRollingCorrelation float64 `json:"avgRollingCorrelation"`
	OscillatorBias        float64 `json:"oscillatorBias"`
	Rows                  int     `json:"rows"`
}

type StrengthRecord struct {
	Strike float64       `json:"strike"`
	CE     *SideStrength `json:"ce,omitempty"`
	PE     *SideStrength `json:"pe,omitempty"`
	Bias   Bias          `json:"bias"`
}

type Scores struct {
	Records         []StrengthRecord
	Sides           []Side
	Overall         Bias
	OIImbalanceMean *float64
}

type ChartSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// ChartData is the strength table reshaped for a grouped bar chart, one series per side.
type ChartData struct {
	Strikes []float64     `json:"strikes"`
	Series  []ChartSeries `json:"series"`
}

// Score folds the finished table into one record per distinct strike.
// The rolling correlation term is the mean over the whole side, not over the strike.
func Score(table *Table) (Scores, error) {
	scoredSides := []Side{}
	for _, side := range sides {
		if table.Capabilities[side].Deltas {
			scoredSides = append(scoredSides, side)
		}
	}
	var rollingMeans [2]float64
	for _, side := range scoredSides {
		correlations := make([]*float64, len(table.Rows))
		for i := range table.Rows {
			correlations[i] = table.Rows[i].Quotes[side].RollingCorrelation
		}
		rollingMeans[side] = getMeanOrZero(correlations)
	}
	strikes := getDistinctStrikes(table)
	records := make([]StrengthRecord, 0, len(strikes))
	scored := false
	for _, strike := range strikes {
		record := StrengthRecord{Strike: strike}
		for _, side := range scoredSides {
			quotes := getStrikeQuotes(table, side, strike)
			if len(quotes) == 0 {
				continue
			}
			strength := getSideStrength(quotes, rollingMeans[side])
			record.set(side, &strength)
			scored = true
		}
		record.Bias = getBias(record.value(CE), record.value(PE))
		records = append(records, record)
	}
	if !scored {
		return Scores{}, &EmptyResultError{Strikes: len(strikes)}
	}
	scores := Scores{
		Records: records,
		Sides:   scoredSides,
		Overall: getOverallBias(records),
	}
	if table.Imbalance {
		imbalances := make([]*float64, len(table.Rows))
		for i := range table.Rows {
			imbalances[i] = table.Rows[i].OIImbalance
		}
		if mean, exists := getMean(imbalances); exists {
			scores.OIImbalanceMean = floatPointer(mean)
		}
	}
	return scores, nil
}

func getSideStrength(quotes []Quote, rollingMean float64) SideStrength {
	priceChanges := make([]*float64, len(quotes))
	oiChanges := make([]*float64, len(quotes))
	volumeChanges := make([]*float64, len(quotes))
	oscillators := make([]*float64, len(quotes))
	for i, quote := range quotes {
		priceChanges[i] = quote.PriceChange
		oiChanges[i] = quote.OIChange
		volumeChanges[i] = quote.VolumeChange
		oscillators[i] = quote.Oscillator
	}
	corrPriceOI, _ := getCorrelation(priceChanges, oiChanges)
	corrPriceVolume, _ := getCorrelation(priceChanges, volumeChanges)
	oscillatorBias := 0.0
	if meanOscillator, exists := getMean(oscillators); exists {
		oscillatorBias = (meanOscillator - 50.0) / 50.0
	}
	strength := priceOIWeight*corrPriceOI +
		priceVolumeWeight*corrPriceVolume +
		rollingCorrelationWeight*rollingMean +
		oscillatorBiasWeight*oscillatorBias
	return SideStrength{
		Strength:              strength,
		CorrPriceOI:           corrPriceOI,
		CorrPriceVolume:       corrPriceVolume,
		AvgRollingCorrelation: rollingMean,
		OscillatorBias:        oscillatorBias,
		Rows:                  len(quotes),
	}
}

// getDistinctStrikes merges the strikes of both sides in ascending order.
func getDistinctStrikes(table *Table) []float64 {
	strikes := []float64{}
	for _, side := range sides {
		for i := range table.Rows {
			strike := table.Rows[i].Quotes[side].Strike
			if strike != nil {
				strikes = append(strikes, *strike)
			}
		}
	}
	slices.Sort(strikes)
	return slices.Compact(strikes)
}

func getStrikeQuotes(table *Table, side Side, strike float64) []Quote {
	quotes := []Quote{}
	for i := range table.Rows {
		quote := table.Rows[i].Quotes[side]
		if quote.Strike != nil && *quote.Strike == strike {
			quotes = append(quotes, quote)
		}
	}
	return quotes
}

// getBias treats a missing side as zero. Ties go to Bear.
func getBias(call, put *float64) Bias {
	callStrength := 0.0
	if call != nil {
		callStrength = *call
	}
	putStrength := 0.0
	if put != nil {
		putStrength = *put
	}
	if callStrength > putStrength {
		return Bull
	}
	return Bear
}

func getOverallBias(records []StrengthRecord) Bias {
	callStrengths := make([]*float64, len(records))
	putStrengths := make([]*float64, len(records))
	for i := range records {
		callStrengths[i] = records[i].value(CE)
		putStrengths[i] = records[i].value(PE)
	}
	callMean := getMeanOrZero(callStrengths)
	putMean := getMeanOrZero(putStrengths)
	return getBias(&callMean, &putMean)
}

func (r *StrengthRecord) set(side Side, strength *SideStrength) {
	if side == CE {
		r.CE = strength
	} else {
		r.PE = strength
	}
}

func (r *StrengthRecord) Get(side Side) *SideStrength {
	if side == CE {
		return r.CE
	}
	return r.PE
}

func (r *StrengthRecord) value(side Side) *float64 {
	strength := r.Get(side)
	if strength == nil {
		return nil
	}
	return floatPointer(strength.Strength)
}

// Chart reshapes the records into one bar series per scored side.
func (s Scores) Chart() ChartData {
	chart := ChartData{
		Strikes: make([]float64, len(s.Records)),
	}
	for i := range s.Records {
		chart.Strikes[i] = s.Records[i].Strike
	}
	for _, side := range s.Sides {
		series := ChartSeries{
			Name:   side.column("Strength"),
			Values: make([]*float64, len(s.Records)),
		}
		for i := range s.Records {
			series.Values[i] = s.Records[i].value(side)
		}
		chart.Series = append(chart.Series, series)
	}
	return chart
}
