// Package segment turns the flat detail-fragment stream scraped from vehicle
// pages into fixed-arity per-vehicle groups and classifies each group into
// named attributes. The source exposes attributes as one undifferentiated
// sequence with no per-vehicle container, so record boundaries have to be
// inferred structurally.
package segment

import (
	"strings"

	"wheelfinder/models"
)

// RecordArity is the number of attribute slots every vehicle group is
// normalized to.
const RecordArity = 7

// boundaryKeywords mark body-type fragments. A recognized body-type fragment
// only starts a new record when the current group is already full; inside a
// record the same keywords classify as the BodyType attribute.
var boundaryKeywords = []string{"Car", "Utility", "Mini-van", "CrewMax"}

type state int

const (
	awaitingStart state = iota
	accumulating
)

// isBoundary reports whether f opens a new vehicle record given the group
// accumulated so far.
func isBoundary(f models.RawField, groupLen int) bool {
	if f.Hint == models.HintInteriorColor {
		return true
	}
	if groupLen < RecordArity {
		return false
	}
	for _, kw := range boundaryKeywords {
		if strings.Contains(f.Text, kw) {
			return true
		}
	}
	return false
}

// Groups partitions the fragment stream into per-vehicle groups of exactly
// RecordArity slots. Undersized groups are right-padded with the absent
// marker; oversized groups are truncated from the tail. Groups never fails;
// malformed input yields padded groups, not errors.
func Groups(fields []models.RawField) [][]models.RawField {
	var groups [][]models.RawField
	var current []models.RawField
	st := awaitingStart

	for _, f := range fields {
		switch st {
		case awaitingStart:
			// Leading fragments before the first boundary still belong to
			// the first record.
			current = append(current, f)
			st = accumulating
		case accumulating:
			if isBoundary(f, len(current)) {
				if len(current) > 0 {
					groups = append(groups, current)
				}
				current = nil
			}
			current = append(current, f)
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	for i, g := range groups {
		groups[i] = normalize(g)
	}
	return groups
}

func normalize(group []models.RawField) []models.RawField {
	if len(group) > RecordArity {
		return group[:RecordArity]
	}
	for len(group) < RecordArity {
		group = append(group, models.AbsentField)
	}
	return group
}
