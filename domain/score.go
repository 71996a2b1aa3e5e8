package domain

import "math"

// ClampScore rounds half-up and clamps into [0,100].
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	s := math.Floor(v + 0.5)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return int(s)
}

// Balance derives the four nutrition balance indices of one meal. Protein
// and fiber are scored against a per-meal target of 30g and 8g; vitamin and
// mineral indices are the mean of the reported 0-100 values.
func (n NutritionAnalysis) Balance() NutritionBalance {
	v, m := n.Vitamins, n.Minerals
	return NutritionBalance{
		Protein: ClampScore(n.Protein / 30 * 100),
		Fiber:   ClampScore(n.Fiber / 8 * 100),
		Vitamin: ClampScore((v.VitaminC + v.VitaminE + v.VitaminA + v.VitaminBComplex) / 4),
		Mineral: ClampScore((m.Iron + m.Zinc + m.Calcium + m.Magnesium) / 4),
	}
}
