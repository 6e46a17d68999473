package segment

import (
	"strings"

	"wheelfinder/models"
)

// Details holds the classified attributes of one vehicle group. Unmatched
// attributes stay nil.
type Details struct {
	InteriorColor *string
	BodyType      *string
	DriveType     *string
	MPG           *string
	Engine        *string
	Transmission  *string
	ModelCode     *string
}

var bodyTypeKeywords = []string{"Car", "Utility", "Mini-van", "XtraCab", "CrewMax", "Double Cab"}

var driveTypeKeywords = []string{"Wheel Drive", "All Wheel", "Four Wheel", "Front Wheel", "Rear Wheel"}

var engineKeywords = []string{"Engine", "Motor", "Hybrid", "Turbo", "Cyl"}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseGroup classifies each fragment of a fixed-arity group into a named
// attribute by ordered content rules. The first fragment to claim a slot
// wins; later candidates for an occupied slot and fragments matching no rule
// are dropped. ParseGroup always returns a complete Details value.
func ParseGroup(group []models.RawField) Details {
	var d Details

	for _, f := range group {
		if f.Absent() {
			continue
		}
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}

		switch {
		case f.Hint == models.HintInteriorColor:
			if d.InteriorColor == nil {
				d.InteriorColor = models.Str(text)
			}
		case containsAny(text, bodyTypeKeywords):
			if d.BodyType == nil {
				d.BodyType = models.Str(text)
			}
		case containsAny(text, driveTypeKeywords):
			if d.DriveType == nil {
				d.DriveType = models.Str(text)
			}
		case strings.Contains(text, "/") && strings.Contains(strings.ToUpper(text), "EPA"):
			if d.MPG == nil {
				d.MPG = models.Str(text)
			}
		case containsAny(text, engineKeywords) && !strings.Contains(text, "Transmission"):
			if d.Engine == nil {
				d.Engine = models.Str(text)
			}
		case strings.Contains(text, "Transmission"):
			if d.Transmission == nil {
				d.Transmission = models.Str(text)
			}
		case isDigits(text):
			if d.ModelCode == nil {
				d.ModelCode = models.Str(text)
			}
		}
	}
	return d
}
