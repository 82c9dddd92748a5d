package metrics

import "github.com/growthcenter/esdash/pkg/table"

// NPS score levels.
const (
	NPSNeedsImprovement = "Needs Improvement (-100 to 0)"
	NPSGood             = "Good (0 to 30)"
	NPSGreat            = "Great (30 to 70)"
	NPSExcellent        = "Excellent (70 to 100)"
)

// NPSSummary is the net promoter score of a set of respondents.
type NPSSummary struct {
	Promoters  int
	Passives   int
	Detractors int
	// Total is the number of rows with a numeric NPS.
	Total int
	// Percentages of Total.
	PctPromoters  float64
	PctPassives   float64
	PctDetractors float64
	// Score is PctPromoters - PctDetractors rounded to 1 decimal.
	Score    float64
	Category string
}

// NPS summarizes the NPS column of a table. Rows without a numeric score
// are ignored.
func NPS(t *table.Table) NPSSummary {
	var res NPSSummary
	for _, row := range t.Rows {
		switch NPSCategory(row[ColNPS]) {
		case Promoter:
			res.Promoters++
		case Passive:
			res.Passives++
		case Detractor:
			res.Detractors++
		default:
			continue
		}
		res.Total++
	}
	if res.Total > 0 {
		n := float64(res.Total)
		res.PctPromoters = float64(res.Promoters) / n * 100
		res.PctPassives = float64(res.Passives) / n * 100
		res.PctDetractors = float64(res.Detractors) / n * 100
	}
	res.Score = Round(res.PctPromoters-res.PctDetractors, 1)
	res.Category = NPSScoreCategory(res.Score)
	return res
}

// NPSScoreCategory names the level of an NPS score.
func NPSScoreCategory(score float64) string {
	switch {
	case score <= 0:
		return NPSNeedsImprovement
	case score <= 30:
		return NPSGood
	case score <= 70:
		return NPSGreat
	}
	return NPSExcellent
}
