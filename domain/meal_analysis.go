package domain

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

var (
	MessageSuccessAnalyzeMeal   = "meal analyzed successfully"
	MessageSuccessNonFood       = "image does not look like a meal"
	MessageSuccessGetMeals      = "meal records retrieved successfully"
	MessageSuccessGetMeal       = "meal record retrieved successfully"
	MessageSuccessDeleteMeal    = "meal record deleted successfully"
	MessageSuccessGetDailyStats = "daily beauty stats retrieved successfully"

	MessageFailedAnalyzeMeal    = "failed to analyze meal, please try again with the same photo"
	MessageFailedQuotaExceeded  = "daily analysis limit reached, upgrade to premium for unlimited analyses"
	MessageFailedSaveMeal       = "analysis finished but saving failed, please try again"
	MessageFailedGetMeals       = "failed to retrieve meal records"
	MessageFailedDeleteMeal     = "failed to delete meal record"
	MessageFailedGetDailyStats  = "failed to retrieve daily beauty stats"
	MessageFailedInvalidRequest = "invalid analysis request"

	ErrQuotaExceeded        = errors.New("daily free analysis quota exceeded")
	ErrMealRecordNotFound   = errors.New("meal record not found")
	ErrUnauthorizedAccess   = errors.New("unauthorized access to meal record")
	ErrInvalidImage         = errors.New("invalid image")
	ErrEmptyBeautyFocus     = errors.New("beauty focus must contain at least one category")
	ErrInvalidModelResponse = errors.New("invalid model response")
	ErrDailyStatNotFound    = errors.New("no beauty stats for this day")
)

type BeautyCategory string

const (
	SkinCare    BeautyCategory = "skin_care"
	AntiAging   BeautyCategory = "anti_aging"
	Detox       BeautyCategory = "detox"
	Circulation BeautyCategory = "circulation"
	HairNails   BeautyCategory = "hair_nails"
)

// BeautyCategories is the fixed enumeration order; ties between categories
// always resolve to the earliest entry.
var BeautyCategories = []BeautyCategory{SkinCare, AntiAging, Detox, Circulation, HairNails}

func (c BeautyCategory) Label() string {
	switch c {
	case SkinCare:
		return "skin care"
	case AntiAging:
		return "anti-aging"
	case Detox:
		return "detox"
	case Circulation:
		return "circulation"
	case HairNails:
		return "hair & nails"
	}
	return string(c)
}

func IsBeautyCategory(s string) bool {
	for _, c := range BeautyCategories {
		if string(c) == s {
			return true
		}
	}
	return false
}

type FoodCategory string

const (
	FoodProtein   FoodCategory = "protein"
	FoodCarb      FoodCategory = "carb"
	FoodVegetable FoodCategory = "vegetable"
	FoodFruit     FoodCategory = "fruit"
	FoodFat       FoodCategory = "fat"
	FoodOther     FoodCategory = "other"
)

func ParseFoodCategory(s string) FoodCategory {
	switch c := FoodCategory(s); c {
	case FoodProtein, FoodCarb, FoodVegetable, FoodFruit, FoodFat:
		return c
	}
	return FoodOther
}

type MealTiming string

const (
	Breakfast MealTiming = "breakfast"
	Lunch     MealTiming = "lunch"
	Dinner    MealTiming = "dinner"
	Snack     MealTiming = "snack"
)

// InferMealTiming picks a meal-time tag from the hour the photo was taken.
func InferMealTiming(t time.Time) MealTiming {
	switch h := t.Hour(); {
	case h >= 5 && h <= 10:
		return Breakfast
	case h >= 11 && h <= 15:
		return Lunch
	case h >= 17 && h <= 21:
		return Dinner
	}
	return Snack
}

type AnalysisStatus string

const (
	StatusPending   AnalysisStatus = "pending"
	StatusCompleted AnalysisStatus = "completed"
	StatusFailed    AnalysisStatus = "failed"
)

type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "beginner"
	Intermediate ExperienceLevel = "intermediate"
	Advanced     ExperienceLevel = "advanced"
)

type AdviceType string

const (
	AdviceImmediate AdviceType = "immediate"
	AdviceNextMeal  AdviceType = "next_meal"
)

type (
	DetectedFood struct {
		Name            string       `json:"name"`
		Category        FoodCategory `json:"category"`
		EstimatedAmount string       `json:"estimated_amount"`
		Confidence      float64      `json:"confidence"`
	}

	Vitamins struct {
		VitaminC        float64 `json:"vitamin_c"`
		VitaminE        float64 `json:"vitamin_e"`
		VitaminA        float64 `json:"vitamin_a"`
		VitaminBComplex float64 `json:"vitamin_b_complex"`
	}

	Minerals struct {
		Iron      float64 `json:"iron"`
		Zinc      float64 `json:"zinc"`
		Calcium   float64 `json:"calcium"`
		Magnesium float64 `json:"magnesium"`
	}

	NutritionAnalysis struct {
		Calories      float64  `json:"calories"`
		Protein       float64  `json:"protein"`
		Carbohydrates float64  `json:"carbohydrates"`
		Fat           float64  `json:"fat"`
		Fiber         float64  `json:"fiber"`
		Vitamins      Vitamins `json:"vitamins"`
		Minerals      Minerals `json:"minerals"`
	}

	CategoryScores struct {
		SkinCare    int `json:"skin_care"`
		AntiAging   int `json:"anti_aging"`
		Detox       int `json:"detox"`
		Circulation int `json:"circulation"`
		HairNails   int `json:"hair_nails"`
	}

	// BeautyScore holds the five category sub-scores and the model-declared
	// overall score, all in [0,100].
	BeautyScore struct {
		CategoryScores
		Overall int `json:"overall"`
	}

	// AnalysisResult is the validated output of one model invocation.
	AnalysisResult struct {
		DetectedFoods     []DetectedFood    `json:"detected_foods"`
		NutritionAnalysis NutritionAnalysis `json:"nutrition_analysis"`
		BeautyScore       BeautyScore       `json:"beauty_score"`
		ImmediateAdvice   string            `json:"immediate_advice"`
		NextMealAdvice    string            `json:"next_meal_advice"`
		BeautyBenefits    []string          `json:"beauty_benefits"`
	}

	UserProfile struct {
		BeautyFocus     []BeautyCategory `json:"beauty_focus"`
		ExperienceLevel ExperienceLevel  `json:"experience_level"`
	}

	ClassificationResult struct {
		IsFood         bool    `json:"is_food"`
		DetectedObject string  `json:"detected_object"`
		Confidence     float64 `json:"confidence"`
		Description    string  `json:"description"`
		Degraded       bool    `json:"degraded,omitempty"`
	}

	MealImage struct {
		Data     []byte
		MimeType string
	}

	// ImageRef points at a stored image: either a blob store path or, when the
	// upload was skipped or failed, the image itself as a data URI.
	ImageRef struct {
		Path   string `json:"path,omitempty"`
		Inline string `json:"-"`
	}

	AnalyzeMealRequest struct {
		MealTiming      string                `json:"meal_timing" form:"meal_timing" validate:"omitempty,oneof=breakfast lunch dinner snack"`
		CapturedAt      string                `json:"captured_at" form:"captured_at" validate:"omitempty"`
		BeautyFocus     []string              `json:"beauty_focus" form:"beauty_focus" validate:"omitempty,dive,oneof=skin_care anti_aging detox circulation hair_nails"`
		ExperienceLevel string                `json:"experience_level" form:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
		Image           *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	AnalyzeMealInput struct {
		Image      MealImage
		MealTiming MealTiming
		CapturedAt time.Time
		Profile    UserProfile
	}

	// MealRecord is one photographed eating event. Guest records only live in
	// memory for the request that created them.
	MealRecord struct {
		ID         uuid.UUID
		User       UserContext
		CapturedAt time.Time
		MealTiming MealTiming
		Image      ImageRef
		Status     AnalysisStatus
	}

	MealRecordResponse struct {
		ID         string         `json:"id"`
		CapturedAt time.Time      `json:"captured_at"`
		MealTiming MealTiming     `json:"meal_timing"`
		Status     AnalysisStatus `json:"status"`
		ImageURL   string         `json:"image_url,omitempty"`
		Guest      bool           `json:"guest,omitempty"`
	}

	MealDetailResponse struct {
		MealRecordResponse
		Analysis *AnalysisResult `json:"analysis,omitempty"`
	}

	AnalyzeMealResponse struct {
		Classification ClassificationResult `json:"classification"`
		CannedResponse string               `json:"canned_response,omitempty"`
		Meal           *MealRecordResponse  `json:"meal,omitempty"`
		Analysis       *AnalysisResult      `json:"analysis,omitempty"`
	}

	// CompensationOutcome reports what happened to the compensating
	// mark-as-failed write after a persistence failure.
	CompensationOutcome struct {
		Attempted bool  `json:"attempted"`
		Succeeded bool  `json:"succeeded"`
		Err       error `json:"-"`
	}
)

func (r ImageRef) IsInline() bool {
	return r.Path == "" && r.Inline != ""
}

func (c CategoryScores) Get(category BeautyCategory) int {
	switch category {
	case SkinCare:
		return c.SkinCare
	case AntiAging:
		return c.AntiAging
	case Detox:
		return c.Detox
	case Circulation:
		return c.Circulation
	case HairNails:
		return c.HairNails
	}
	return 0
}

func (c *CategoryScores) Set(category BeautyCategory, v int) {
	switch category {
	case SkinCare:
		c.SkinCare = v
	case AntiAging:
		c.AntiAging = v
	case Detox:
		c.Detox = v
	case Circulation:
		c.Circulation = v
	case HairNails:
		c.HairNails = v
	}
}

// AnalysisError is returned once every analysis attempt has failed.
type AnalysisError struct {
	Attempts int
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("meal analysis failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// PersistError is returned when saving an analysis failed for an
// authenticated user. Compensation tells whether the record was moved to
// failed afterwards.
type PersistError struct {
	MealID       string
	Err          error
	Compensation CompensationOutcome
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist analysis for meal %s: %v", e.MealID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
