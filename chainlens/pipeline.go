package chainlens

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Report is everything a presentation layer needs from one run.
type Report struct {
	RunID           string           `json:"runId"`
	Files           int              `json:"files"`
	Rows            int              `json:"rows"`
	RollingWindow   int              `json:"rollingWindow"`
	Sides           []string         `json:"sides"`
	Strengths       []StrengthRecord `json:"strengths"`
	Chart           ChartData        `json:"chart"`
	Overall         Bias             `json:"overall"`
	OIImbalanceMean *float64         `json:"oiImbalanceMean,omitempty"`
	Summary         Summary          `json:"summary"`
	Columns         []ColumnStats    `json:"columns,omitempty"`
	Quadrants       []QuadrantCount  `json:"quadrants,omitempty"`
}

type Pipeline struct {
	configuration  Configuration
	log            zerolog.Logger
	progressOutput io.Writer
}

func NewPipeline(configuration Configuration, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		configuration: configuration,
		log:           log,
	}
}

// WithProgressOutput redirects the ingestion progress bar.
func (p *Pipeline) WithProgressOutput(w io.Writer) *Pipeline {
	p.progressOutput = w
	return p
}

// Run executes every stage in order on one batch. Nothing is kept between runs.
func (p *Pipeline) Run(files []SourceFile) (*Report, error) {
	err := p.configuration.Validate()
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := p.log.With().Str("run", runID).Logger()
	start := time.Now()
	options := IngestOptions{
		ShowProgress:   p.configuration.ShowProgress,
		ProgressOutput: p.progressOutput,
	}
	table, err := Ingest(files, options)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("files", len(files)).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("Ingested snapshots")
	Enrich(table, p.configuration.RollingWindow, log)
	scores, err := Score(table)
	if err != nil {
		return nil, err
	}
	report := &Report{
		RunID:           runID,
		Files:           len(files),
		Rows:            len(table.Rows),
		RollingWindow:   p.configuration.RollingWindow,
		Strengths:       scores.Records,
		Chart:           scores.Chart(),
		Overall:         scores.Overall,
		OIImbalanceMean: scores.OIImbalanceMean,
		Summary:         Summarize(table),
	}
	for _, side := range scores.Sides {
		report.Sides = append(report.Sides, side.String())
	}
	if p.configuration.ColumnStats {
		report.Columns = GetColumnStats(table)
		report.Quadrants = GetQuadrantCounts(table)
	}
	log.Info().
		Int("strikes", len(report.Strengths)).
		Str("overall", string(report.Overall)).
		Dur("elapsed", time.Since(start)).
		Msg("Scored strikes")
	return report, nil
}

// Enrich adds every derived column to the table in dependency order.
func Enrich(table *Table, window int, log zerolog.Logger) {
	computeDeltas(table, log)
	computeImbalance(table, log)
	computeRollingCorrelation(table, window, log)
	classifyQuotes(table, log)
	computeOscillators(table, log)
}
