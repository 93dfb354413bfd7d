package chainlens

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/cheggaaa/pb"
)

const byteOrderMark = "\ufeff"

var timestampPattern = regexp.MustCompile(`_(\d{2})(\d{2})(\d{4})_(\d{2})(\d{2})(\d{2})`)

// SourceFile is one uploaded snapshot. The name carries the timestamp, the reader the table.
type SourceFile struct {
	Name   string
	Reader io.Reader
}

type IngestOptions struct {
	ShowProgress   bool
	ProgressOutput io.Writer
}

type snapshot struct {
	headers []string
	rows    []Row
}

// Ingest parses every file, concatenates the rows and orders them by timestamp.
// Rows without a timestamp follow all timestamped rows and ties keep their input order.
func Ingest(files []SourceFile, options IngestOptions) (*Table, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	var bar *pb.ProgressBar
	if options.ShowProgress {
		bar = pb.New(len(files))
		if options.ProgressOutput != nil {
			bar.Output = options.ProgressOutput
		}
		bar.Start()
		defer bar.Finish()
	}
	table := &Table{}
	for _, file := range files {
		snapshot, err := readSnapshot(file)
		if err != nil {
			return nil, err
		}
		for _, header := range snapshot.headers {
			if !table.HasColumn(header) {
				table.Columns = append(table.Columns, header)
			}
		}
		table.Rows = append(table.Rows, snapshot.rows...)
		if bar != nil {
			bar.Increment()
		}
	}
	slices.SortStableFunc(table.Rows, func(a, b Row) int {
		return compareTimestamps(a.Timestamp, b.Timestamp)
	})
	for i := range table.Rows {
		table.Rows[i].Index = i
	}
	table.setCapabilities()
	return table, nil
}

// getTimestamp extracts the _DDMMYYYY_HHMMSS part of a file name. A name without it yields nil.
func getTimestamp(name string) (*time.Time, error) {
	matches := timestampPattern.FindStringSubmatch(name)
	if matches == nil {
		return nil, nil
	}
	timeString := fmt.Sprintf("%s-%s-%s %s:%s:%s", matches[1], matches[2], matches[3], matches[4], matches[5], matches[6])
	timestamp, err := time.Parse(timestampLayout, timeString)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp \"%s\": %w", matches[0], err)
	}
	return &timestamp, nil
}

func readSnapshot(file SourceFile) (snapshot, error) {
	timestamp, err := getTimestamp(file.Name)
	if err != nil {
		return snapshot{}, &ParseError{File: file.Name, Err: err}
	}
	reader := csv.NewReader(file.Reader)
	headers, err := reader.Read()
	if err == io.EOF {
		return snapshot{}, &ParseError{File: file.Name, Err: errEmptyFile}
	} else if err != nil {
		return snapshot{}, newCsvError(file.Name, err)
	}
	headers[0] = strings.TrimPrefix(headers[0], byteOrderMark)
	headerMap := map[string]int{}
	for index, header := range headers {
		if _, exists := headerMap[header]; !exists {
			headerMap[header] = index
		}
	}
	output := snapshot{headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return snapshot{}, newCsvError(file.Name, err)
		}
		row := Row{
			Source:    file.Name,
			Timestamp: timestamp,
		}
		for _, side := range sides {
			row.Quotes[side] = readQuote(side, headerMap, record)
		}
		output.rows = append(output.rows, row)
	}
	return output, nil
}

func readQuote(side Side, headerMap map[string]int, record []string) Quote {
	cell := func(column string) *float64 {
		index, exists := headerMap[side.column(column)]
		if !exists {
			return nil
		}
		return parseCell(record[index])
	}
	return Quote{
		Volume:            cell(volumeColumn),
		OpenInterest:      cell(openInterestColumn),
		LastPrice:         cell(lastPriceColumn),
		ImpliedVolatility: cell(impliedVolatilityColumn),
		Strike:            cell(strikePriceColumn),
	}
}

func newCsvError(name string, err error) *ParseError {
	parseErr := &ParseError{File: name, Err: err}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		parseErr.Line = csvErr.Line
	}
	return parseErr
}

func compareTimestamps(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
