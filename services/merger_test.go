package services

import (
	"testing"

	"wheelfinder/models"
	"wheelfinder/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(false) }

func rec(brand, model string, mutate func(*models.VehicleRecord)) *models.VehicleRecord {
	r := &models.VehicleRecord{Brand: brand, Model: model}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestMergePreservesOrderAndSize(t *testing.T) {
	honda := []*models.VehicleRecord{
		rec("Honda", "Civic", nil),
		rec("Honda", "CR-V", nil),
	}
	toyota := []*models.VehicleRecord{
		rec("Toyota", "Camry", nil),
		rec("Toyota", "RAV4", nil),
		rec("Toyota", "Tacoma", nil),
	}

	m := NewMerger(newTestLogger(), nil)
	rows, err := m.Merge(honda, toyota)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows; want 5 (m+n)", len(rows))
	}

	wantOrder := []string{"Civic", "CR-V", "Camry", "RAV4", "Tacoma"}
	for i, want := range wantOrder {
		if rows[i].Model != want {
			t.Errorf("row %d model = %q; want %q", i, rows[i].Model, want)
		}
	}
}

func TestMergeSplitsMPG(t *testing.T) {
	tests := []struct {
		raw         string
		wantCity    float64
		wantHighway float64
		wantPresent bool
	}{
		{"30 / 38", 30, 38, true},
		{"Up to 30/38 EPA City/Hwy", 30, 38, true},
		{"51/44 then 40/36", 51, 44, true}, // first pair wins
		{"no numbers here", 0, 0, false},
	}

	m := NewMerger(newTestLogger(), nil)
	for _, tt := range tests {
		honda := []*models.VehicleRecord{rec("Honda", "Civic", func(r *models.VehicleRecord) {
			r.RawMPG = models.Str(tt.raw)
		})}
		rows, err := m.Merge(honda, nil)
		if err != nil {
			t.Fatalf("Merge(%q): %v", tt.raw, err)
		}
		row := rows[0]

		if !tt.wantPresent {
			if row.CityMPG != nil || row.HighwayMPG != nil {
				t.Errorf("Merge(%q): MPG = %v/%v; want absent", tt.raw, row.CityMPG, row.HighwayMPG)
			}
			continue
		}
		if row.CityMPG == nil || row.HighwayMPG == nil {
			t.Errorf("Merge(%q): MPG absent; want %v/%v", tt.raw, tt.wantCity, tt.wantHighway)
			continue
		}
		if *row.CityMPG != tt.wantCity || *row.HighwayMPG != tt.wantHighway {
			t.Errorf("Merge(%q): MPG = %v/%v; want %v/%v",
				tt.raw, *row.CityMPG, *row.HighwayMPG, tt.wantCity, tt.wantHighway)
		}
	}
}

func TestMergeAbsentMPGStaysAbsent(t *testing.T) {
	m := NewMerger(newTestLogger(), nil)
	rows, err := m.Merge([]*models.VehicleRecord{rec("Honda", "Civic", nil)}, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rows[0].CityMPG != nil || rows[0].HighwayMPG != nil {
		t.Error("MPG should be absent when no raw MPG string exists")
	}
}

func TestMergeDerivesSeats(t *testing.T) {
	tests := []struct {
		bodyType  string
		wantSeats int
		mapped    bool
	}{
		{"Sedan", 5, true},
		{"Sport Utility", 5, true},
		{"Passenger Van", 12, true},
		{"XtraCab", 4, true},
		{"Mini-van, Passenger", 7, true},
		{"Spacecraft", 0, false}, // unmapped: absent, never a default
	}

	m := NewMerger(newTestLogger(), nil)
	for _, tt := range tests {
		toyota := []*models.VehicleRecord{rec("Toyota", "Camry", func(r *models.VehicleRecord) {
			r.BodyType = models.Str(tt.bodyType)
		})}
		rows, err := m.Merge(nil, toyota)
		if err != nil {
			t.Fatalf("Merge(%q): %v", tt.bodyType, err)
		}
		seats := rows[0].Seats

		if !tt.mapped {
			if seats != nil {
				t.Errorf("body type %q: seats = %d; want absent", tt.bodyType, *seats)
			}
			continue
		}
		if seats == nil {
			t.Errorf("body type %q: seats absent; want %d", tt.bodyType, tt.wantSeats)
			continue
		}
		if *seats != tt.wantSeats {
			t.Errorf("body type %q: seats = %d; want %d", tt.bodyType, *seats, tt.wantSeats)
		}
	}
}

func TestMergeFailsOnNilRecord(t *testing.T) {
	m := NewMerger(newTestLogger(), nil)
	honda := []*models.VehicleRecord{rec("Honda", "Civic", nil), nil}
	if _, err := m.Merge(honda, nil); err == nil {
		t.Error("Merge with a nil record should fail the whole batch")
	}
}

func TestMergeCarriesCanonicalColumnsOnly(t *testing.T) {
	honda := []*models.VehicleRecord{rec("Honda", "Civic", func(r *models.VehicleRecord) {
		r.Year = models.Int(2025)
		r.Price = models.Float(28500)
		r.RawMPG = models.Str("30 / 38")
		r.BodyType = models.Str("Sedan")
		r.Engine = models.Str("2.0L 4-Cyl Engine")
		r.Transmission = models.Str("CVT Transmission")
	})}

	m := NewMerger(newTestLogger(), nil)
	rows, err := m.Merge(honda, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	row := rows[0]
	if row.Model != "Civic" || row.Brand != "Honda" {
		t.Errorf("identity = %s/%s; want Civic/Honda", row.Model, row.Brand)
	}
	if row.Year == nil || *row.Year != 2025 {
		t.Errorf("Year = %v; want 2025", row.Year)
	}
	if row.Price == nil || *row.Price != 28500 {
		t.Errorf("Price = %v; want 28500", row.Price)
	}
	if row.Seats == nil || *row.Seats != 5 {
		t.Errorf("Seats = %v; want 5 (Sedan)", row.Seats)
	}
}
