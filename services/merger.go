package services

import (
	"fmt"
	"regexp"
	"strconv"

	"wheelfinder/models"
	"wheelfinder/utils"
)

// mpgPairRegexp captures the first "<int> / <int>" pair inside a raw
// combined MPG string.
var mpgPairRegexp = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// DefaultSeatsByBodyType maps dealer body-type labels to seat counts. It is
// configuration data: an unmapped body type yields absent Seats, never a
// default.
var DefaultSeatsByBodyType = map[string]int{
	"Sedan":              5,
	"Sport Utility":      5,
	"Passenger Van":      12,
	"Crew Cab":           5,
	"Hatchback":          5,
	"4dr Car":            5,
	"Double Cab":         5,
	"XtraCab":            4,
	"CrewMax":            5,
	"Mini-van, Passenger": 7,
	"2dr Car":            4,
}

// Merger reconciles the two per-brand tables into one canonical inventory.
type Merger struct {
	logger *utils.Logger
	seats  map[string]int
}

// NewMerger creates a Merger using the given body-type→seats table.
func NewMerger(logger *utils.Logger, seats map[string]int) *Merger {
	if seats == nil {
		seats = DefaultSeatsByBodyType
	}
	return &Merger{logger: logger, seats: seats}
}

// Merge concatenates the Honda and Toyota tables, in that order, and reduces
// every row to the canonical inventory columns: the raw MPG string is split
// into CityMPG/HighwayMPG, Seats is derived from the body type, and the
// free-text engine/transmission columns are dropped. Row order is preserved
// exactly; nothing is deduplicated or re-sorted.
//
// Merge is all-or-nothing: a row that cannot be accounted for fails the
// whole batch instead of silently shrinking the table.
func (m *Merger) Merge(honda, toyota []*models.VehicleRecord) ([]models.InventoryRow, error) {
	combined := make([]*models.VehicleRecord, 0, len(honda)+len(toyota))
	combined = append(combined, honda...)
	combined = append(combined, toyota...)

	rows := make([]models.InventoryRow, 0, len(combined))
	for i, rec := range combined {
		if rec == nil {
			return nil, fmt.Errorf("merge: nil record at row %d", i)
		}
		rows = append(rows, m.canonicalRow(rec))
	}

	if len(rows) != len(honda)+len(toyota) {
		return nil, fmt.Errorf("merge: row accounting mismatch: %d rows from %d+%d inputs",
			len(rows), len(honda), len(toyota))
	}

	m.logger.Info("[merge] Canonical inventory: %d rows (%d Honda + %d Toyota)",
		len(rows), len(honda), len(toyota))
	return rows, nil
}

func (m *Merger) canonicalRow(rec *models.VehicleRecord) models.InventoryRow {
	row := models.InventoryRow{
		Model: rec.Model,
		Brand: rec.Brand,
		Year:  rec.Year,
		Price: rec.Price,
	}

	if rec.RawMPG != nil {
		row.CityMPG, row.HighwayMPG = splitMPG(*rec.RawMPG)
	}
	if rec.BodyType != nil {
		if seats, ok := m.seats[*rec.BodyType]; ok {
			row.Seats = models.Int(seats)
		}
	}
	return row
}

// splitMPG extracts the first "<int> / <int>" pair from a combined MPG
// string. Both values are absent when no pair matches.
func splitMPG(raw string) (city, highway *float64) {
	m := mpgPairRegexp.FindStringSubmatch(raw)
	if m == nil {
		return nil, nil
	}
	c, err1 := strconv.ParseFloat(m[1], 64)
	h, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return models.Float(c), models.Float(h)
}
