package chainlens

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const chainHeader = "CE_strikePrice,CE_totalTradedVolume,CE_openInterest,CE_lastPrice,CE_impliedVolatility," +
	"PE_strikePrice,PE_totalTradedVolume,PE_openInterest,PE_lastPrice,PE_impliedVolatility"

const putHeader = "PE_strikePrice,PE_totalTradedVolume,PE_openInterest,PE_lastPrice,PE_impliedVolatility"

type quoteFixture struct {
	volume       float64
	openInterest float64
	price        float64
}

func chainLine(strike float64, call, put quoteFixture) string {
	return fmt.Sprintf("%g,%g,%g,%g,15.5,%g,%g,%g,%g,17.25",
		strike, call.volume, call.openInterest, call.price,
		strike, put.volume, put.openInterest, put.price)
}

func putLine(strike float64, put quoteFixture) string {
	return fmt.Sprintf("%g,%g,%g,%g,17.25", strike, put.volume, put.openInterest, put.price)
}

func snapshotName(minute int) string {
	return fmt.Sprintf("NIFTY_15012025_%02d%02d00.csv", 9+minute/60, minute%60)
}

func newSourceFile(name, header string, lines ...string) SourceFile {
	content := header + "\n" + strings.Join(lines, "\n") + "\n"
	return SourceFile{
		Name:   name,
		Reader: strings.NewReader(content),
	}
}

func ingestFiles(t *testing.T, files ...SourceFile) *Table {
	t.Helper()
	table, err := Ingest(files, IngestOptions{})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	return table
}

// getTrendFiles produces one snapshot per minute at strike 22000 in which calls rally and puts sell off.
func getTrendFiles(count int) []SourceFile {
	files := []SourceFile{}
	for i := 0; i < count; i++ {
		x := float64(i)
		call := quoteFixture{
			volume:       5000 + 100*x + float64(i%2)*50,
			openInterest: 1000 + 2*x*x,
			price:        100 + 0.5*x*x,
		}
		put := quoteFixture{
			volume:       4000 + 80*x,
			openInterest: 2000 + 10*x*x,
			price:        80 - 0.2*x*x,
		}
		files = append(files, newSourceFile(snapshotName(i), chainHeader, chainLine(22000, call, put)))
	}
	return files
}

func enrichedTrend(t *testing.T, count int) *Table {
	t.Helper()
	table := ingestFiles(t, getTrendFiles(count)...)
	Enrich(table, DefaultRollingWindow, nopLogger())
	return table
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		cell     string
		expected *float64
	}{
		{"12.5", floatPointer(12.5)},
		{" 7 ", floatPointer(7)},
		{"-3.25", floatPointer(-3.25)},
		{"", nil},
		{"-", nil},
		{"NaN", nil},
		{"n/a", nil},
		{"abc", nil},
		{"1,234", nil},
	}
	for _, test := range tests {
		output := parseCell(test.cell)
		if test.expected == nil {
			if output != nil {
				t.Fatalf("parseCell(%q): expected nil, got %f", test.cell, *output)
			}
			continue
		}
		if output == nil || *output != *test.expected {
			t.Fatalf("parseCell(%q): expected %f, got %v", test.cell, *test.expected, output)
		}
	}
}

func TestGetPercentReturn(t *testing.T) {
	output := getPercentReturn(floatPointer(12), floatPointer(10))
	if output == nil || !almostEqual(*output, 20) {
		t.Fatalf("expected 20%% return, got %v", output)
	}
	if getPercentReturn(floatPointer(5), floatPointer(0)) != nil {
		t.Fatalf("expected nil return for a zero previous price")
	}
	if getPercentReturn(nil, floatPointer(10)) != nil {
		t.Fatalf("expected nil return for a missing price")
	}
}

func TestGetCorrelation(t *testing.T) {
	x := []*float64{nil, floatPointer(1), floatPointer(2), floatPointer(3)}
	y := []*float64{floatPointer(9), floatPointer(-2), nil, floatPointer(-6)}
	coefficient, exists := getCorrelation(x, y)
	if !exists || !almostEqual(coefficient, -1) {
		t.Fatalf("expected -1, got %f (%t)", coefficient, exists)
	}
	constant := []*float64{floatPointer(4), floatPointer(4), floatPointer(4)}
	_, exists = getCorrelation(constant, x[1:])
	if exists {
		t.Fatalf("expected no correlation for a constant series")
	}
	_, exists = getCorrelation(x[:2], y[:2])
	if exists {
		t.Fatalf("expected no correlation for fewer than two pairs")
	}
}

func TestExpandPaths(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{"b_15012025_091600.csv", "a_15012025_091500.CSV", "notes.txt"} {
		err := os.WriteFile(filepath.Join(directory, name), []byte(chainHeader+"\n"), 0o644)
		if err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}
	err := os.Mkdir(filepath.Join(directory, "nested.csv"), 0o755)
	if err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	paths, err := ExpandPaths([]string{directory})
	if err != nil {
		t.Fatalf("ExpandPaths returned error: %v", err)
	}
	expected := []string{
		filepath.Join(directory, "a_15012025_091500.CSV"),
		filepath.Join(directory, "b_15012025_091600.csv"),
	}
	if !slices.Equal(paths, expected) {
		t.Fatalf("unexpected paths: %v", paths)
	}
	_, err = ExpandPaths([]string{filepath.Join(directory, "missing.csv")})
	if err == nil {
		t.Fatalf("expected error for a missing path")
	}
}

func TestOpenSourceFilesMissing(t *testing.T) {
	_, closeFiles, err := OpenSourceFiles([]string{filepath.Join(t.TempDir(), "missing.csv")})
	defer closeFiles()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
