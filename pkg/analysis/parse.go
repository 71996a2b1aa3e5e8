package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"beautyfood-backend/domain"
	"beautyfood-backend/pkg/llm"

	"github.com/tidwall/gjson"
)

// wire mirrors the model's JSON. Scores arrive as arbitrary numbers and are
// normalized afterwards.
type wire struct {
	DetectedFoods []struct {
		Name            string  `json:"name"`
		Category        string  `json:"category"`
		EstimatedAmount string  `json:"estimated_amount"`
		Confidence      float64 `json:"confidence"`
	} `json:"detected_foods"`
	NutritionAnalysis domain.NutritionAnalysis `json:"nutrition_analysis"`
	BeautyScore       struct {
		SkinCare    float64 `json:"skin_care"`
		AntiAging   float64 `json:"anti_aging"`
		Detox       float64 `json:"detox"`
		Circulation float64 `json:"circulation"`
		HairNails   float64 `json:"hair_nails"`
		Overall     float64 `json:"overall"`
	} `json:"beauty_score"`
	ImmediateAdvice string   `json:"immediate_advice"`
	NextMealAdvice  string   `json:"next_meal_advice"`
	BeautyBenefits  []string `json:"beauty_benefits"`
}

// ParseResponse validates a raw model reply. Anything that is not JSON, or
// lacks detected_foods, nutrition_analysis or beauty_score.overall, is
// rejected as a whole.
func ParseResponse(raw string) (domain.AnalysisResult, error) {
	body := llm.ExtractJSON(raw)
	if !gjson.Valid(body) {
		return domain.AnalysisResult{}, fmt.Errorf("%w: not valid JSON", domain.ErrInvalidModelResponse)
	}

	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return domain.AnalysisResult{}, fmt.Errorf("%w: top level is not an object", domain.ErrInvalidModelResponse)
	}
	if !doc.Get("detected_foods").IsArray() {
		return domain.AnalysisResult{}, fmt.Errorf("%w: missing detected_foods", domain.ErrInvalidModelResponse)
	}
	if !doc.Get("nutrition_analysis").IsObject() {
		return domain.AnalysisResult{}, fmt.Errorf("%w: missing nutrition_analysis", domain.ErrInvalidModelResponse)
	}
	if overall := doc.Get("beauty_score.overall"); overall.Type != gjson.Number {
		return domain.AnalysisResult{}, fmt.Errorf("%w: missing beauty_score.overall", domain.ErrInvalidModelResponse)
	}

	var w wire
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidModelResponse, err)
	}
	return normalize(w), nil
}

func normalize(w wire) domain.AnalysisResult {
	res := domain.AnalysisResult{
		DetectedFoods:     make([]domain.DetectedFood, 0, len(w.DetectedFoods)),
		NutritionAnalysis: w.NutritionAnalysis,
		ImmediateAdvice:   w.ImmediateAdvice,
		NextMealAdvice:    w.NextMealAdvice,
		BeautyBenefits:    w.BeautyBenefits,
	}
	for _, f := range w.DetectedFoods {
		res.DetectedFoods = append(res.DetectedFoods, domain.DetectedFood{
			Name:            f.Name,
			Category:        domain.ParseFoodCategory(f.Category),
			EstimatedAmount: f.EstimatedAmount,
			Confidence:      clampUnit(f.Confidence),
		})
	}
	if res.BeautyBenefits == nil {
		res.BeautyBenefits = []string{}
	}

	res.BeautyScore = domain.BeautyScore{
		CategoryScores: domain.CategoryScores{
			SkinCare:    domain.ClampScore(w.BeautyScore.SkinCare),
			AntiAging:   domain.ClampScore(w.BeautyScore.AntiAging),
			Detox:       domain.ClampScore(w.BeautyScore.Detox),
			Circulation: domain.ClampScore(w.BeautyScore.Circulation),
			HairNails:   domain.ClampScore(w.BeautyScore.HairNails),
		},
		Overall: domain.ClampScore(w.BeautyScore.Overall),
	}
	return res
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
