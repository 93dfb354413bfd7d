package chainlens

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"
)

func getSources(table *Table) []string {
	sources := []string{}
	for _, row := range table.Rows {
		sources = append(sources, row.Source)
	}
	return sources
}

func TestGetTimestampDayFirst(t *testing.T) {
	timestamp, err := getTimestamp("NIFTY_13012025_153000.csv")
	if err != nil {
		t.Fatalf("getTimestamp returned error: %v", err)
	}
	expected := time.Date(2025, time.January, 13, 15, 30, 0, 0, time.UTC)
	if timestamp == nil || !timestamp.Equal(expected) {
		t.Fatalf("expected %s, got %v", expected, timestamp)
	}
	timestamp, err = getTimestamp("option_chain.csv")
	if err != nil || timestamp != nil {
		t.Fatalf("expected no timestamp, got %v (%v)", timestamp, err)
	}
}

func TestIngestOrdering(t *testing.T) {
	line := chainLine(100, quoteFixture{10, 10, 10}, quoteFixture{10, 10, 10})
	late := newSourceFile("chain_15012025_093000.csv", chainHeader, line, line)
	plain := newSourceFile("chain.csv", chainHeader, line)
	early := newSourceFile("chain_15012025_091500.csv", chainHeader, line)
	table := ingestFiles(t, late, plain, early)
	expected := []string{
		"chain_15012025_091500.csv",
		"chain_15012025_093000.csv",
		"chain_15012025_093000.csv",
		"chain.csv",
	}
	if sources := getSources(table); !slices.Equal(sources, expected) {
		t.Fatalf("unexpected order: %v", sources)
	}
	for i, row := range table.Rows {
		if row.Index != i {
			t.Fatalf("row %d has index %d", i, row.Index)
		}
	}
	if table.Rows[3].Timestamp != nil {
		t.Fatalf("expected untimestamped row last")
	}
}

func TestIngestStableTies(t *testing.T) {
	line := chainLine(100, quoteFixture{10, 10, 10}, quoteFixture{10, 10, 10})
	first := func() SourceFile { return newSourceFile("a_15012025_091500.csv", chainHeader, line) }
	second := func() SourceFile { return newSourceFile("b_15012025_091500.csv", chainHeader, line) }
	table := ingestFiles(t, second(), first())
	expected := []string{"b_15012025_091500.csv", "a_15012025_091500.csv"}
	if sources := getSources(table); !slices.Equal(sources, expected) {
		t.Fatalf("ties should keep input order, got %v", sources)
	}
}

func TestIngestNoFiles(t *testing.T) {
	_, err := Ingest(nil, IngestOptions{})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestIngestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		file SourceFile
		line int
	}{
		{
			name: "ragged",
			file: newSourceFile("ragged_15012025_091500.csv", "a,b,c", "1,2"),
			line: 2,
		},
		{
			name: "empty",
			file: SourceFile{Name: "empty_15012025_091500.csv", Reader: strings.NewReader("")},
		},
		{
			name: "invalid timestamp",
			file: newSourceFile("chain_15132025_091500.csv", chainHeader),
		},
	}
	for _, test := range tests {
		_, err := Ingest([]SourceFile{test.file}, IngestOptions{})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected ParseError, got %v", test.name, err)
		}
		if parseErr.File != test.file.Name {
			t.Fatalf("%s: unexpected file %s", test.name, parseErr.File)
		}
		if parseErr.Line != test.line {
			t.Fatalf("%s: expected line %d, got %d", test.name, test.line, parseErr.Line)
		}
	}
}

func TestIngestEmptyFileError(t *testing.T) {
	file := SourceFile{Name: "empty.csv", Reader: strings.NewReader("")}
	_, err := Ingest([]SourceFile{file}, IngestOptions{})
	if !errors.Is(err, errEmptyFile) {
		t.Fatalf("expected errEmptyFile, got %v", err)
	}
}

func TestIngestColumnUnion(t *testing.T) {
	calls := newSourceFile(
		"calls_15012025_091500.csv",
		"CE_strikePrice,CE_totalTradedVolume,CE_openInterest,CE_lastPrice,CE_impliedVolatility",
		"100,10,20,5.5,14",
	)
	puts := newSourceFile("puts_15012025_091600.csv", putHeader, putLine(100, quoteFixture{11, 21, 6}))
	table := ingestFiles(t, calls, puts)
	if len(table.Columns) != 10 {
		t.Fatalf("expected 10 columns, got %v", table.Columns)
	}
	if !table.Capability(CE).Quotes || !table.Capability(PE).Quotes {
		t.Fatalf("expected both sides to be complete: %+v", table.Capabilities)
	}
	if table.Rows[0].Quotes[PE].LastPrice != nil {
		t.Fatalf("call snapshot should have no put price")
	}
	price := table.Rows[1].Quotes[PE].LastPrice
	if price == nil || *price != 6 {
		t.Fatalf("unexpected put price %v", price)
	}
}

func TestIngestCapabilities(t *testing.T) {
	header := byteOrderMark + "CE_strikePrice,CE_totalTradedVolume,CE_openInterest,CE_lastPrice,CE_impliedVolatility,PE_strikePrice,PE_openInterest"
	file := newSourceFile("chain_15012025_091500.csv", header, "100,10,20,5.5,14,100,30")
	table := ingestFiles(t, file)
	if !table.HasColumn("CE_strikePrice") {
		t.Fatalf("byte order mark was not stripped: %v", table.Columns)
	}
	ce := table.Capability(CE)
	if !ce.Quotes || !ce.OpenInterest || !ce.Strike {
		t.Fatalf("unexpected CE capability %+v", ce)
	}
	pe := table.Capability(PE)
	if pe.Quotes || !pe.OpenInterest || !pe.Strike {
		t.Fatalf("unexpected PE capability %+v", pe)
	}
}

func TestIngestDuplicateHeader(t *testing.T) {
	header := "CE_lastPrice,CE_lastPrice"
	table := ingestFiles(t, newSourceFile("chain.csv", header, "1.5,2.5"))
	price := table.Rows[0].Quotes[CE].LastPrice
	if price == nil || *price != 1.5 {
		t.Fatalf("expected first occurrence to win, got %v", price)
	}
}

func TestIngestProgress(t *testing.T) {
	options := IngestOptions{
		ShowProgress:   true,
		ProgressOutput: io.Discard,
	}
	table, err := Ingest(getTrendFiles(3), options)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
}
