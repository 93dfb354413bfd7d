package chainlens

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const timestampLayout = "02-01-2006 15:04:05"
const csvExtension = ".csv"

const epsilon = 1e-9

func getTimeString(timestamp time.Time) string {
	return timestamp.Format(timestampLayout)
}

// parseCell returns nil for empty, placeholder and unparsable cells.
func parseCell(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "-", "nan", "na", "n/a", "null":
		return nil
	}
	value, err := decimal.NewFromString(cell)
	if err != nil {
		return nil
	}
	output, _ := value.Float64()
	if math.IsInf(output, 0) {
		return nil
	}
	return &output
}

func subtract(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	output := *a - *b
	return &output
}

func getPercentReturn(price, previous *float64) *float64 {
	if price == nil || previous == nil || *previous == 0 {
		return nil
	}
	output := (*price - *previous) / *previous * 100.0
	return &output
}

func getValues(pointers []*float64) []float64 {
	values := make([]float64, 0, len(pointers))
	for _, pointer := range pointers {
		if pointer != nil {
			values = append(values, *pointer)
		}
	}
	return values
}

func getPairs(x, y []*float64) ([]float64, []float64) {
	xValues := []float64{}
	yValues := []float64{}
	for i := range x {
		if x[i] == nil || y[i] == nil {
			continue
		}
		xValues = append(xValues, *x[i])
		yValues = append(yValues, *y[i])
	}
	return xValues, yValues
}

// getCorrelation is the Pearson coefficient of the complete pairs, or false if it is undefined.
func getCorrelation(x, y []*float64) (float64, bool) {
	xValues, yValues := getPairs(x, y)
	if len(xValues) < 2 {
		return 0, false
	}
	coefficient := stat.Correlation(xValues, yValues, nil)
	if math.IsNaN(coefficient) || math.IsInf(coefficient, 0) {
		return 0, false
	}
	return coefficient, true
}

func getMean(pointers []*float64) (float64, bool) {
	values := getValues(pointers)
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

func getMeanOrZero(pointers []*float64) float64 {
	mean, _ := getMean(pointers)
	return mean
}

func floatPointer(value float64) *float64 {
	return &value
}

// ExpandPaths replaces directories with the CSV files they contain, in lexical order.
func ExpandPaths(arguments []string) ([]string, error) {
	paths := []string{}
	for _, argument := range arguments {
		info, err := os.Stat(argument)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", argument, err)
		}
		if !info.IsDir() {
			paths = append(paths, argument)
			continue
		}
		entries, err := os.ReadDir(argument)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", argument, err)
		}
		directoryPaths := []string{}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), csvExtension) {
				continue
			}
			directoryPaths = append(directoryPaths, filepath.Join(argument, entry.Name()))
		}
		slices.Sort(directoryPaths)
		paths = append(paths, directoryPaths...)
	}
	return paths, nil
}

// OpenSourceFiles opens every path for ingestion. The returned function closes all of them.
func OpenSourceFiles(paths []string) ([]SourceFile, func(), error) {
	files := []*os.File{}
	closeFiles := func() {
		for _, file := range files {
			file.Close()
		}
	}
	sources := []SourceFile{}
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			closeFiles()
			return nil, func() {}, &ParseError{File: path, Err: err}
		}
		files = append(files, file)
		source := SourceFile{
			Name:   filepath.Base(path),
			Reader: file,
		}
		sources = append(sources, source)
	}
	return sources, closeFiles, nil
}
