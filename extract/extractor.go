// Package extract populates vehicle records from raw listing markup using
// ordered fallback pattern rules. Every rule carries its own plausibility
// check; extraction never fails, it only leaves fields unset.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wheelfinder/models"
)

// Plausibility bounds enforced at extraction time. Values outside these
// ranges are rejected even when a pattern matched.
const (
	PriceMin = 10000
	PriceMax = 200000
	MPGMin   = 10
	MPGMax   = 150
)

// Rule is one prioritized extraction pattern. Accept receives the regexp
// submatches and returns the parsed value; ok=false rejects the match and
// evaluation falls through to the next rule.
type Rule struct {
	Pattern *regexp.Regexp
	Accept  func(m []string) (string, bool)
}

// firstMatch tries rules in priority order and returns the first accepted
// value. A rule whose match is rejected does not stop later rules.
func firstMatch(text string, rules []Rule) (string, bool) {
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if val, ok := r.Accept(m); ok {
			return val, true
		}
	}
	return "", false
}

func acceptTrimmed(m []string) (string, bool) {
	val := strings.TrimSpace(m[1])
	return val, val != ""
}

// acceptMPGPair validates both numbers and normalizes to "city / highway".
func acceptMPGPair(m []string) (string, bool) {
	city, err1 := strconv.Atoi(m[1])
	highway, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return "", false
	}
	if city < MPGMin || city > MPGMax || highway < MPGMin || highway > MPGMax {
		return "", false
	}
	return fmt.Sprintf("%d / %d", city, highway), true
}

func acceptPrice(m []string) (string, bool) {
	raw := strings.ReplaceAll(m[1], ",", "")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < PriceMin || price > PriceMax {
		return "", false
	}
	return raw, true
}

var bodyTypeRules = []Rule{
	{regexp.MustCompile(`(?i)BODY\s+STYLE[:\s]+([^\n<]+)`), acceptTrimmed},
	{regexp.MustCompile(`(?i)"bodyStyle"[:\s]+"([^"]+)"`), acceptTrimmed},
	{regexp.MustCompile(`(?i)(4D\s+(?:Sedan|SUV|Sport Utility|Hatchback|Coupe))`), acceptTrimmed},
	{regexp.MustCompile(`(?i)(\d+D\s+[A-Za-z\s]+)`), acceptTrimmed},
}

var mpgRules = []Rule{
	{regexp.MustCompile(`(?i)(\d+)\s+City\s*/\s*(\d+)\s+Highway`), acceptMPGPair},
	{regexp.MustCompile(`(?i)City/Highway[:\s]+(\d+)\s*/\s*(\d+)`), acceptMPGPair},
	{regexp.MustCompile(`(?i)MPG[:\s]+(\d+)\s*/\s*(\d+)`), acceptMPGPair},
	{regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s+MPG`), acceptMPGPair},
	{regexp.MustCompile(`(?is)"cityMPG"[:\s]+(\d+).*?"highwayMPG"[:\s]+(\d+)`), acceptMPGPair},
	{regexp.MustCompile(`(?is)"mpgCity"[:\s]+(\d+).*?"mpgHighway"[:\s]+(\d+)`), acceptMPGPair},
}

var priceRules = []Rule{
	{regexp.MustCompile(`(?i)PRICE[:\s]+\$\s*([\d,]+)`), acceptPrice},
	{regexp.MustCompile(`(?i)\$\s*([\d,]+)\s*MSRP`), acceptPrice},
	{regexp.MustCompile(`(?i)"price"[:\s]+(\d+)`), acceptPrice},
	{regexp.MustCompile(`>\s*\$\s*([\d,]+)\s*<`), acceptPrice},
}

var fuelTypeRules = []Rule{
	{regexp.MustCompile(`(?i)FUEL\s+TYPE[:\s]+([^\n<]+)`), acceptTrimmed},
	{regexp.MustCompile(`(?i)"fuelType"[:\s]+"([^"]+)"`), acceptTrimmed},
	{regexp.MustCompile(`\b(Gasoline|Diesel|Hybrid|Electric|Plug-in Hybrid|PHEV)\b`), acceptTrimmed},
}

// urlPattern picks year, make, model and trim out of a detail-page URL of the
// form /new-<city>-<year>-<make>-<model>-<trim>-<17-char VIN>.
var urlPattern = regexp.MustCompile(`/new-[^-]+-(\d{4})-([^-]+)-(.+)-([A-Z0-9]{17})$`)

// BodyType extracts the body style from raw page markup.
func BodyType(page string) (string, bool) { return firstMatch(page, bodyTypeRules) }

// MPG extracts a validated "city / highway" MPG string.
func MPG(page string) (string, bool) { return firstMatch(page, mpgRules) }

// Price extracts a price within the plausible MSRP range.
func Price(page string) (float64, bool) {
	raw, ok := firstMatch(page, priceRules)
	if !ok {
		return 0, false
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// FuelType extracts the fuel type; model is consulted as a last resort so
// that hybrid trims without a spec sheet entry still classify.
func FuelType(page, model string) (string, bool) {
	if val, ok := firstMatch(page, fuelTypeRules); ok {
		return val, true
	}
	if strings.Contains(strings.ToLower(model), "hybrid") {
		return "Hybrid", true
	}
	return "", false
}

// Identity extracts year, brand, model and trim from the listing URL.
func Identity(url string) (year int, brand, model string, trim *string, ok bool) {
	m := urlPattern.FindStringSubmatch(url)
	if m == nil {
		return 0, "", "", nil, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", "", nil, false
	}
	brand = strings.ReplaceAll(m[2], "+", " ")

	modelAndTrim := strings.ReplaceAll(m[3], "+", " ")
	parts := strings.Split(modelAndTrim, "-")
	if len(parts) >= 2 {
		trim = models.Str(parts[len(parts)-1])
		model = strings.Join(parts[:len(parts)-1], " ")
	} else {
		model = strings.ReplaceAll(modelAndTrim, "-", " ")
	}
	return year, brand, model, trim, true
}

// Record assembles a vehicle record from a listing URL and its raw page
// markup. Fields that no rule can populate stay nil. Returns nil when fewer
// than two non-URL fields could be populated; such listings carry too little
// signal to be worth keeping.
func Record(url, page string) *models.VehicleRecord {
	rec := &models.VehicleRecord{SourceURL: url}

	if year, brand, model, trim, ok := Identity(url); ok {
		rec.Year = models.Int(year)
		rec.Brand = brand
		rec.Model = model
		rec.Trim = trim
	}

	if body, ok := BodyType(page); ok {
		rec.BodyType = models.Str(body)
	}
	if mpg, ok := MPG(page); ok {
		rec.RawMPG = models.Str(mpg)
	}
	if price, ok := Price(page); ok {
		rec.Price = models.Float(price)
	}
	if fuel, ok := FuelType(page, rec.Model); ok {
		rec.FuelType = models.Str(fuel)
	}

	if rec.PopulatedFields() < 2 {
		return nil
	}
	return rec
}
