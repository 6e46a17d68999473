package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"wheelfinder/models"
	"wheelfinder/utils"
)

// TopN is the number of recommendations a ranking call returns.
const TopN = 5

// MinWeight and MaxWeight bound every criterion weight. A weight outside
// this range is a contract violation, not a degenerate input.
const (
	MinWeight = 0
	MaxWeight = 10
)

// sizeFullCreditOnZeroVariance: when the size axis has zero variance (every
// candidate diff is zero, or no candidate has a seat count), the scorer
// credits the full size weight to every row, while price and MPG credit
// nothing in the same situation. The asymmetry is part of the observable
// ranking contract; do not unify it with the other two axes.
const sizeFullCreditOnZeroVariance = true

// Ranker scores canonical inventory rows against a user preference. It holds
// no per-user state; the preference is passed into every call, so concurrent
// rankings over the same inventory snapshot are safe.
type Ranker struct {
	logger *utils.Logger
}

// NewRanker creates a Ranker with the given logger.
func NewRanker(logger *utils.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank returns the top-N inventory rows by composite preference score,
// descending, ties broken by original row order. The inventory is read-only;
// identical inputs always produce identical output.
//
// Degenerate-but-valid input (empty inventory, allow-list matching nothing)
// yields an empty result. Only contract violations return an error.
func (r *Ranker) Rank(inventory []models.InventoryRow, pref models.Preference) ([]models.Recommendation, error) {
	if err := validateWeights(pref); err != nil {
		return nil, err
	}

	candidates := filterBrands(inventory, pref.Brands)
	if len(candidates) == 0 {
		r.logger.Debug("[rank] No rows left after brand filter %v", pref.Brands)
		return []models.Recommendation{}, nil
	}

	scores := make([]float64, len(candidates))
	scoreAxis(candidates, pref.Price, price, false, scores)
	scoreAxis(candidates, pref.MPG, avgMPG, false, scores)
	scoreAxis(candidates, pref.Size, seats, sizeFullCreditOnZeroVariance, scores)

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := TopN
	if n > len(order) {
		n = len(order)
	}
	out := make([]models.Recommendation, 0, n)
	for _, idx := range order[:n] {
		out = append(out, models.Recommendation{
			InventoryRow: candidates[idx],
			Score:        scores[idx],
		})
	}
	return out, nil
}

func validateWeights(pref models.Preference) error {
	for _, c := range []struct {
		name string
		models.Criterion
	}{
		{"price", pref.Price},
		{"mpg", pref.MPG},
		{"size", pref.Size},
	} {
		if c.Weight < MinWeight || c.Weight > MaxWeight {
			return fmt.Errorf("rank: %s weight %d outside [%d,%d]",
				c.name, c.Weight, MinWeight, MaxWeight)
		}
		if math.IsNaN(c.Target) || math.IsInf(c.Target, 0) {
			return fmt.Errorf("rank: %s target is not a finite number", c.name)
		}
	}
	return nil
}

func filterBrands(inventory []models.InventoryRow, brands []string) []models.InventoryRow {
	if len(brands) == 0 {
		return inventory
	}
	allowed := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		allowed[b] = struct{}{}
	}
	var out []models.InventoryRow
	for _, row := range inventory {
		if _, ok := allowed[row.Brand]; ok {
			out = append(out, row)
		}
	}
	return out
}

func price(row models.InventoryRow) *float64 { return row.Price }

// avgMPG is the mean of city and highway MPG; absent when either is absent.
func avgMPG(row models.InventoryRow) *float64 {
	if row.CityMPG == nil || row.HighwayMPG == nil {
		return nil
	}
	return models.Float((*row.CityMPG + *row.HighwayMPG) / 2)
}

func seats(row models.InventoryRow) *float64 {
	if row.Seats == nil {
		return nil
	}
	return models.Float(float64(*row.Seats))
}

// scoreAxis adds one criterion's weighted contribution to every row's score.
// Rows with an absent value neither contribute to maxDiff nor receive a
// normalized score. Zero-weight criteria are skipped outright.
func scoreAxis(rows []models.InventoryRow, c models.Criterion, value func(models.InventoryRow) *float64, fullCreditOnZeroVariance bool, scores []float64) {
	if c.Weight <= 0 {
		return
	}

	diffs := make([]*float64, len(rows))
	maxDiff := 0.0
	for i, row := range rows {
		v := value(row)
		if v == nil {
			continue
		}
		d := math.Abs(*v - c.Target)
		diffs[i] = models.Float(d)
		if d > maxDiff {
			maxDiff = d
		}
	}

	if maxDiff > 0 {
		for i, d := range diffs {
			if d == nil {
				continue
			}
			scores[i] += (1 - *d/maxDiff) * float64(c.Weight)
		}
		return
	}

	// Zero variance: every present value equals the target exactly, or no
	// value is present at all.
	if fullCreditOnZeroVariance {
		for i := range scores {
			scores[i] += float64(c.Weight)
		}
	}
}

// Print renders the ranked recommendations as a terminal report.
func (r *Ranker) Print(recs []models.Recommendation) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🚗 WHEELFINDER TOP %d RECOMMENDATIONS\033[0m\n", TopN)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	if len(recs) == 0 {
		fmt.Printf("  No vehicles matched your preferences\n")
		fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	for i, rec := range recs {
		fmt.Printf("  \033[1m%d. %s %s\033[0m", i+1, rec.Brand, rec.Model)
		if rec.Year != nil {
			fmt.Printf(" (%d)", *rec.Year)
		}
		fmt.Printf("   score \033[1;32m%.2f\033[0m\n", rec.Score)
		fmt.Printf("  %s\n", thin)
		fmt.Printf("     Price   : %s\n", fmtPrice(rec.Price))
		fmt.Printf("     MPG     : %s city / %s highway\n",
			fmtFloat(rec.CityMPG), fmtFloat(rec.HighwayMPG))
		fmt.Printf("     Seats   : %s\n", fmtInt(rec.Seats))
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func fmtPrice(p *float64) string {
	if p == nil {
		return "NA"
	}
	return fmt.Sprintf("$%.2f", *p)
}

func fmtFloat(f *float64) string {
	if f == nil {
		return "NA"
	}
	return fmt.Sprintf("%.0f", *f)
}

func fmtInt(n *int) string {
	if n == nil {
		return "NA"
	}
	return fmt.Sprintf("%d", *n)
}
