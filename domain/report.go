package domain

var (
	MessageSuccessGetWeeklyReport  = "weekly beauty report retrieved successfully"
	MessageSuccessGetMonthlyReport = "monthly beauty report retrieved successfully"
	MessageSuccessSendReportEmail  = "weekly beauty report sent"

	MessageFailedGetReport       = "failed to build beauty report"
	MessageFailedSendReportEmail = "failed to send weekly beauty report"

	PlaceholderLabel = "sample data"
)

type (
	DailyScore struct {
		Date          string `json:"date"`
		Score         int    `json:"score"`
		AnalysesCount int    `json:"analyses_count"`
	}

	CategoryAverages struct {
		SkinCare    float64 `json:"skin_care"`
		AntiAging   float64 `json:"anti_aging"`
		Detox       float64 `json:"detox"`
		Circulation float64 `json:"circulation"`
		HairNails   float64 `json:"hair_nails"`
	}

	NutritionBalance struct {
		Protein int `json:"protein"`
		Fiber   int `json:"fiber"`
		Vitamin int `json:"vitamin"`
		Mineral int `json:"mineral"`
	}

	WeeklyReport struct {
		WeekStart        string           `json:"week_start"`
		WeekEnd          string           `json:"week_end"`
		AverageScore     float64          `json:"average_score"`
		TotalAnalyses    int              `json:"total_analyses"`
		CategoryAverages CategoryAverages `json:"category_averages"`
		TopCategory      BeautyCategory   `json:"top_category"`
		Improvement      string           `json:"improvement"`
		DailyScores      []DailyScore     `json:"daily_scores"`
		Insights         []string         `json:"insights"`
		IsPlaceholder    bool             `json:"is_placeholder"`
		Label            string           `json:"label,omitempty"`
	}

	WeeklySummary struct {
		WeekStart     string  `json:"week_start"`
		AverageScore  float64 `json:"average_score"`
		TotalAnalyses int     `json:"total_analyses"`
	}

	MonthlyReport struct {
		Month            string           `json:"month"`
		AverageScore     float64          `json:"average_score"`
		TotalAnalyses    int              `json:"total_analyses"`
		ActiveDays       int              `json:"active_days"`
		CategoryAverages CategoryAverages `json:"category_averages"`
		TopCategory      BeautyCategory   `json:"top_category"`
		Improvement      string           `json:"improvement"`
		Weeks            []WeeklySummary  `json:"weeks"`
		Insights         []string         `json:"insights"`
		IsPlaceholder    bool             `json:"is_placeholder"`
		Label            string           `json:"label,omitempty"`
	}

	DailyStatResponse struct {
		Date             string           `json:"date"`
		WeekStart        string           `json:"week_start"`
		YearMonth        string           `json:"year_month"`
		DailyScore       int              `json:"daily_score"`
		AnalysesCount    int              `json:"daily_analyses_count"`
		CategoryScores   CategoryScores   `json:"category_scores"`
		NutritionBalance NutritionBalance `json:"nutrition_balance"`
	}
)

func (c CategoryAverages) Get(category BeautyCategory) float64 {
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

func (c *CategoryAverages) Set(category BeautyCategory, v float64) {
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

// PlaceholderWeeklyReport is the fixed dataset shown when a user has no
// stats for the requested week. It is always labelled so it cannot be
// mistaken for real scores.
func PlaceholderWeeklyReport(weekStart, weekEnd string) WeeklyReport {
	return WeeklyReport{
		WeekStart:    weekStart,
		WeekEnd:      weekEnd,
		AverageScore: 75,
		CategoryAverages: CategoryAverages{
			SkinCare:    78,
			AntiAging:   72,
			Detox:       70,
			Circulation: 74,
			HairNails:   76,
		},
		TopCategory: SkinCare,
		Improvement: "+5",
		DailyScores: []DailyScore{},
		Insights: []string{
			"Analyze a meal to start building your weekly beauty report.",
		},
		IsPlaceholder: true,
		Label:         PlaceholderLabel,
	}
}

func PlaceholderMonthlyReport(month string) MonthlyReport {
	return MonthlyReport{
		Month:        month,
		AverageScore: 75,
		CategoryAverages: CategoryAverages{
			SkinCare:    78,
			AntiAging:   72,
			Detox:       70,
			Circulation: 74,
			HairNails:   76,
		},
		TopCategory: SkinCare,
		Improvement: "+5",
		Weeks:       []WeeklySummary{},
		Insights: []string{
			"Analyze a meal to start building your monthly beauty report.",
		},
		IsPlaceholder: true,
		Label:         PlaceholderLabel,
	}
}
