package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"wheelfinder/models"
)

// AbsentToken is the literal rendered for missing values in every CSV this
// package writes. The presentation layer keys on it.
const AbsentToken = "NA"

// InventoryHeader is the column contract for the canonical inventory file.
// Names and order are stable; do not reorder.
var InventoryHeader = []string{"Model", "Brand", "Year", "Price", "CityMPG", "HighwayMPG", "Seats"}

// brandHeader is the column set of a raw per-brand table dump.
var brandHeader = []string{"model", "brand", "year", "transmission", "price", "body_type", "mpg", "engine", "url"}

// CSVWriter writes vehicle tables to a CSV file. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

func newCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// NewInventoryWriter creates (or truncates) the canonical inventory file at
// path and writes the contract header row.
func NewInventoryWriter(path string) (*CSVWriter, error) {
	return newCSVWriter(path, InventoryHeader)
}

// NewBrandWriter creates (or truncates) a raw per-brand table dump at path.
func NewBrandWriter(path string) (*CSVWriter, error) {
	return newCSVWriter(path, brandHeader)
}

// WriteInventory appends the canonical inventory rows, one line per row,
// missing values rendered as the absent token.
func (c *CSVWriter) WriteInventory(rows []models.InventoryRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rows {
		record := []string{
			r.Model,
			r.Brand,
			intField(r.Year),
			floatField(r.Price),
			floatField(r.CityMPG),
			floatField(r.HighwayMPG),
			intField(r.Seats),
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteRecords appends raw per-brand records before any merging.
func (c *CSVWriter) WriteRecords(records []*models.VehicleRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		row := []string{
			rec.Model,
			rec.Brand,
			intField(rec.Year),
			strField(rec.Transmission),
			floatField(rec.Price),
			strField(rec.BodyType),
			strField(rec.RawMPG),
			strField(rec.Engine),
			rec.SourceURL,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// LoadInventory reads a canonical inventory file back into rows. The header
// must match the contract exactly.
func LoadInventory(path string) ([]models.InventoryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	if len(header) != len(InventoryHeader) {
		return nil, fmt.Errorf("csv: header has %d columns, want %d", len(header), len(InventoryHeader))
	}
	for i, name := range InventoryHeader {
		if header[i] != name {
			return nil, fmt.Errorf("csv: header column %d is %q, want %q", i, header[i], name)
		}
	}

	var rows []models.InventoryRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		row := models.InventoryRow{Model: record[0], Brand: record[1]}
		if row.Year, err = parseIntField(record[2]); err != nil {
			return nil, fmt.Errorf("csv: line %d year: %w", line, err)
		}
		if row.Price, err = parseFloatField(record[3]); err != nil {
			return nil, fmt.Errorf("csv: line %d price: %w", line, err)
		}
		if row.CityMPG, err = parseFloatField(record[4]); err != nil {
			return nil, fmt.Errorf("csv: line %d city mpg: %w", line, err)
		}
		if row.HighwayMPG, err = parseFloatField(record[5]); err != nil {
			return nil, fmt.Errorf("csv: line %d highway mpg: %w", line, err)
		}
		if row.Seats, err = parseIntField(record[6]); err != nil {
			return nil, fmt.Errorf("csv: line %d seats: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func strField(s *string) string {
	if s == nil {
		return AbsentToken
	}
	return *s
}

func intField(n *int) string {
	if n == nil {
		return AbsentToken
	}
	return strconv.Itoa(*n)
}

func floatField(f *float64) string {
	if f == nil {
		return AbsentToken
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseIntField(s string) (*int, error) {
	if s == AbsentToken || s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return models.Int(n), nil
}

func parseFloatField(s string) (*float64, error) {
	if s == AbsentToken || s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return models.Float(f), nil
}
