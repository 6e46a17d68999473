package toyota

import (
	"encoding/json"
	"testing"

	"wheelfinder/models"
	"wheelfinder/segment"
)

func baseRow(brand, model, year, price, url string) listingLD {
	var b listingLD
	b.Brand = brand
	b.Model = model
	b.VehicleModelDate = year
	b.Offers.Price = json.Number(price)
	b.Offers.URL = url
	return b
}

func camryGroup() []models.RawField {
	return []models.RawField{
		{Text: "Mid-size Car"},
		{Text: "Front Wheel Drive"},
		{Text: "28 / 39 Est. MPG EPA"},
		{Text: "2.5L 4-Cyl Engine"},
		{Text: "8-Speed Automatic Transmission"},
		{Text: "Macadamia", Hint: models.HintInteriorColor},
		{Text: "2532"},
	}
}

func TestZipRecordsMoreBaseRowsThanGroups(t *testing.T) {
	base := []listingLD{
		baseRow("Toyota", "Camry", "2025", "28999", "https://example.com/camry"),
		baseRow("Toyota", "RAV4", "2025", "31999", "https://example.com/rav4"),
		baseRow("Toyota", "Tacoma", "2025", "36999", "https://example.com/tacoma"),
	}
	groups := [][]models.RawField{camryGroup(), camryGroup()}

	records := zipRecords(base, groups)
	if len(records) != 3 {
		t.Fatalf("got %d records; want 3 (every base row yields one)", len(records))
	}

	if records[0].BodyType == nil || *records[0].BodyType != "Mid-size Car" {
		t.Errorf("records[0].BodyType = %v; want Mid-size Car", records[0].BodyType)
	}
	if records[1].RawMPG == nil {
		t.Error("records[1].RawMPG is absent; want paired group MPG")
	}

	// The third row has no group: every detail attribute stays absent.
	last := records[2]
	if last.Model != "Tacoma" {
		t.Fatalf("records[2].Model = %q; want Tacoma", last.Model)
	}
	if last.BodyType != nil || last.RawMPG != nil || last.Engine != nil ||
		last.DriveType != nil || last.ModelCode != nil {
		t.Error("row past the last group should have absent details")
	}
	if last.Year == nil || *last.Year != 2025 {
		t.Errorf("records[2].Year = %v; want 2025 from the base row", last.Year)
	}
}

func TestZipRecordsEmptyGroups(t *testing.T) {
	base := []listingLD{
		baseRow("Toyota", "Corolla", "2025", "23999", "https://example.com/corolla"),
		baseRow("Toyota", "Sienna", "2025", "39999", "https://example.com/sienna"),
	}

	records := zipRecords(base, nil)
	if len(records) != 2 {
		t.Fatalf("got %d records; want 2", len(records))
	}
	for i, rec := range records {
		if rec.BodyType != nil || rec.RawMPG != nil || rec.ModelCode != nil {
			t.Errorf("records[%d] has detail fields set without any groups", i)
		}
		if rec.Price == nil {
			t.Errorf("records[%d].Price is absent; want base-row price", i)
		}
	}
}

func TestZipRecordsDropsSparseRows(t *testing.T) {
	sparse := listingLD{}
	sparse.Offers.URL = "https://example.com/mystery"
	base := []listingLD{
		sparse,
		baseRow("Toyota", "Prius", "2025", "29999", "https://example.com/prius"),
	}

	records := zipRecords(base, nil)
	if len(records) != 1 {
		t.Fatalf("got %d records; want 1 (URL-only row dropped)", len(records))
	}
	if records[0].Model != "Prius" {
		t.Errorf("surviving record Model = %q; want Prius", records[0].Model)
	}
}

func TestAssembleBaseFieldsWinOverGroupDetails(t *testing.T) {
	b := baseRow("Toyota", "Highlander", "2026", "43999", "https://example.com/highlander")
	b.VehicleTransmission = "CVT"
	b.VehicleInteriorColor = "Graphite"

	d := segment.Details{
		Transmission:  models.Str("8-Speed Automatic Transmission"),
		InteriorColor: models.Str("Boulder"),
		BodyType:      models.Str("Sport Utility"),
	}

	rec := assemble(b, d)
	if rec.Transmission == nil || *rec.Transmission != "CVT" {
		t.Errorf("Transmission = %v; want CVT from the structured row", rec.Transmission)
	}
	if rec.InteriorColor == nil || *rec.InteriorColor != "Graphite" {
		t.Errorf("InteriorColor = %v; want Graphite from the structured row", rec.InteriorColor)
	}
	if rec.BodyType == nil || *rec.BodyType != "Sport Utility" {
		t.Errorf("BodyType = %v; want the group value", rec.BodyType)
	}
}

func TestAssembleFallsBackToGroupDetails(t *testing.T) {
	b := baseRow("Toyota", "4Runner", "2025", "49999", "https://example.com/4runner")

	d := segment.Details{
		Transmission:  models.Str("8-Speed Automatic Transmission"),
		InteriorColor: models.Str("Black"),
		DriveType:     models.Str("Four Wheel Drive"),
		ModelCode:     models.Str("8664"),
	}

	rec := assemble(b, d)
	if rec.Transmission == nil || *rec.Transmission != "8-Speed Automatic Transmission" {
		t.Errorf("Transmission = %v; want group fallback", rec.Transmission)
	}
	if rec.InteriorColor == nil || *rec.InteriorColor != "Black" {
		t.Errorf("InteriorColor = %v; want group fallback", rec.InteriorColor)
	}
	if rec.DriveType == nil || *rec.DriveType != "Four Wheel Drive" {
		t.Errorf("DriveType = %v; want group value", rec.DriveType)
	}
	if rec.ModelCode == nil || *rec.ModelCode != "8664" {
		t.Errorf("ModelCode = %v; want group value", rec.ModelCode)
	}
}

func TestAssembleSkipsUnparsableYearAndPrice(t *testing.T) {
	b := baseRow("Toyota", "Crown", "TBD", "0", "https://example.com/crown")

	rec := assemble(b, segment.Details{})
	if rec.Year != nil {
		t.Errorf("Year = %v; want absent for non-numeric model date", rec.Year)
	}
	if rec.Price != nil {
		t.Errorf("Price = %v; want absent for a zero offer", rec.Price)
	}
}
