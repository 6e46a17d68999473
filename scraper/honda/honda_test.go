package honda

import (
	"testing"

	"wheelfinder/models"
	"wheelfinder/utils"
)

func TestUniqueModelLinksKeepsFirstPerModel(t *testing.T) {
	s := &Scraper{seen: utils.NewSeen()}

	links := []string{
		"https://example.com/new-honda-2025-Honda-CR-V-EX-2HKRS4H45SH000001",
		"https://example.com/new-honda-2025-Honda-Pilot-Touring-5FNYF8H99SB000002",
		"https://example.com/new-honda-2025-Honda-CR-V-Touring-2HKRS4H45SH000003",
		"https://example.com/new-honda-2025-Honda-Accord-EX-1HGCY2F53SA000004",
	}

	unique := s.uniqueModelLinks(links)
	want := []string{links[0], links[1], links[3]}
	if len(unique) != len(want) {
		t.Fatalf("got %d unique links; want %d", len(unique), len(want))
	}
	for i, url := range want {
		if unique[i] != url {
			t.Errorf("unique[%d] = %q; want %q", i, unique[i], url)
		}
	}
}

func TestCompactKeepsDiscoveryOrder(t *testing.T) {
	civic := &models.VehicleRecord{Brand: "Honda", Model: "Civic"}
	accord := &models.VehicleRecord{Brand: "Honda", Model: "Accord"}
	pilot := &models.VehicleRecord{Brand: "Honda", Model: "Pilot"}

	// Slots of failed listings stay nil and must not shift later models.
	perListing := []*models.VehicleRecord{civic, nil, accord, nil, pilot}

	records := compact(perListing)
	wantOrder := []string{"Civic", "Accord", "Pilot"}
	if len(records) != len(wantOrder) {
		t.Fatalf("got %d records; want %d", len(records), len(wantOrder))
	}
	for i, model := range wantOrder {
		if records[i].Model != model {
			t.Errorf("records[%d].Model = %q; want %q", i, records[i].Model, model)
		}
	}
}

func TestCompactAllNil(t *testing.T) {
	records := compact(make([]*models.VehicleRecord, 3))
	if len(records) != 0 {
		t.Fatalf("got %d records; want 0", len(records))
	}
}
