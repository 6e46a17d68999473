package models

import "time"

// FragmentHint is the structural type hint attached to a scraped fragment.
type FragmentHint string

const (
	// HintNone marks a plain text fragment with no structural information.
	HintNone FragmentHint = ""
	// HintInteriorColor marks the interior-color fragment that opens every
	// vehicle block on the Toyota detail pages.
	HintInteriorColor FragmentHint = "interior-color"
	// HintAbsent marks a padding slot added during segmentation. It carries
	// no text and classifies as nothing.
	HintAbsent FragmentHint = "absent"
)

// RawField is one small tagged fragment from the flat detail-page stream.
type RawField struct {
	Text string
	Hint FragmentHint
}

// AbsentField pads undersized record groups up to the canonical arity.
var AbsentField = RawField{Hint: HintAbsent}

// Absent reports whether the field is a padding slot.
func (f RawField) Absent() bool { return f.Hint == HintAbsent }

// VehicleRecord is one per-brand table row, populated field by field during
// extraction. Optional fields are nil until a validated value is found; nil
// is the only "unknown" representation — never 0 or "".
type VehicleRecord struct {
	SourceURL string
	Brand     string
	Model     string
	Year      *int
	Trim      *string
	Price     *float64

	// Raw combined MPG string, e.g. "30 / 38" or "Up to 30/38 EPA".
	// Split into CityMPG/HighwayMPG by the merger.
	RawMPG *string

	BodyType      *string
	FuelType      *string
	Engine        *string
	Transmission  *string
	DriveType     *string
	InteriorColor *string
	ModelCode     *string

	ScrapedAt time.Time
}

// PopulatedFields counts the non-URL fields that hold a value. Records with
// fewer than two are discarded at extraction time.
func (v *VehicleRecord) PopulatedFields() int {
	n := 0
	if v.Brand != "" {
		n++
	}
	if v.Model != "" {
		n++
	}
	for _, set := range []bool{
		v.Year != nil, v.Trim != nil, v.Price != nil, v.RawMPG != nil,
		v.BodyType != nil, v.FuelType != nil, v.Engine != nil,
		v.Transmission != nil, v.DriveType != nil, v.InteriorColor != nil,
		v.ModelCode != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// InventoryRow is one canonical merged inventory record. Rows are immutable
// once produced by the merger; the ranker reads them and never writes.
type InventoryRow struct {
	Model      string
	Brand      string
	Year       *int
	Price      *float64
	CityMPG    *float64
	HighwayMPG *float64
	Seats      *int
}

// Criterion is one (target, weight) ranking preference axis.
type Criterion struct {
	Target float64
	Weight int
}

// Preference is the full user preference for one ranking call. It is passed
// in explicitly; there is no ambient current-user state.
type Preference struct {
	Brands []string // allow-list; empty means all brands
	Price  Criterion
	MPG    Criterion
	Size   Criterion
}

// Recommendation is one ranked inventory row with its composite score.
type Recommendation struct {
	InventoryRow
	Score float64
}

// Str returns a pointer to s, for populating optional fields.
func Str(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
