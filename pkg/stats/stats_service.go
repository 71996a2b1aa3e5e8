package stats

import (
	"context"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type (
	StatsService interface {
		UpdateDailyStats(ctx context.Context, user domain.UserContext, result domain.AnalysisResult, at time.Time) error
		GetDailyStat(ctx context.Context, userID uuid.UUID, date string) (domain.DailyStatResponse, error)
		// BuildWeeklyReport returns nil when the week has no data or the
		// lookup fails. An empty weekStart means the current week.
		BuildWeeklyReport(ctx context.Context, userID uuid.UUID, weekStart string) *domain.WeeklyReport
		// BuildMonthlyReport returns nil when the month has no data or the
		// lookup fails. An empty month means the current month.
		BuildMonthlyReport(ctx context.Context, userID uuid.UUID, month string) *domain.MonthlyReport
		// WeekBounds resolves the week containing date, or the current week.
		WeekBounds(date string) (start, end string, err error)
		CurrentMonth() string
	}

	statsService struct {
		statsRepository StatsRepository
		loc             *time.Location
		now             func() time.Time
		log             logrus.FieldLogger
	}
)

func NewStatsService(statsRepository StatsRepository, loc *time.Location, log logrus.FieldLogger) StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &statsService{
		statsRepository: statsRepository,
		loc:             loc,
		now:             time.Now,
		log:             log,
	}
}

// FoldFor builds the single-analysis row that FoldDaily merges into the day.
func FoldFor(userID uuid.UUID, result domain.AnalysisResult, day time.Time) *entities.DailyBeautyStat {
	s := result.BeautyScore
	b := result.NutritionAnalysis.Balance()
	return &entities.DailyBeautyStat{
		UserID:        userID,
		StatDate:      formatDate(day),
		WeekStart:     formatDate(WeekStart(day)),
		YearMonth:     day.Format(domain.MonthLayout),
		AnalysesCount: 1,

		DailyScore:       s.Overall,
		SkinCareScore:    s.SkinCare,
		AntiAgingScore:   s.AntiAging,
		DetoxScore:       s.Detox,
		CirculationScore: s.Circulation,
		HairNailsScore:   s.HairNails,
		ProteinBalance:   b.Protein,
		FiberBalance:     b.Fiber,
		VitaminBalance:   b.Vitamin,
		MineralBalance:   b.Mineral,

		OverallSum:     s.Overall,
		SkinCareSum:    s.SkinCare,
		AntiAgingSum:   s.AntiAging,
		DetoxSum:       s.Detox,
		CirculationSum: s.Circulation,
		HairNailsSum:   s.HairNails,
		ProteinSum:     b.Protein,
		FiberSum:       b.Fiber,
		VitaminSum:     b.Vitamin,
		MineralSum:     b.Mineral,
	}
}

func (s *statsService) UpdateDailyStats(ctx context.Context, user domain.UserContext, result domain.AnalysisResult, at time.Time) error {
	userID, ok := user.UserID()
	if !ok {
		return nil
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.statsRepository.FoldDaily(ctx, FoldFor(userID, result, at.In(s.loc)))
}

func (s *statsService) GetDailyStat(ctx context.Context, userID uuid.UUID, date string) (domain.DailyStatResponse, error) {
	if date == "" {
		date = formatDate(s.now().In(s.loc))
	} else if _, err := parseDate(date, s.loc); err != nil {
		return domain.DailyStatResponse{}, err
	}

	stat, err := s.statsRepository.GetDaily(ctx, userID, date)
	if err != nil {
		return domain.DailyStatResponse{}, err
	}
	return domain.DailyStatResponse{
		Date:          stat.StatDate,
		WeekStart:     stat.WeekStart,
		YearMonth:     stat.YearMonth,
		DailyScore:    stat.DailyScore,
		AnalysesCount: stat.AnalysesCount,
		CategoryScores: domain.CategoryScores{
			SkinCare:    stat.SkinCareScore,
			AntiAging:   stat.AntiAgingScore,
			Detox:       stat.DetoxScore,
			Circulation: stat.CirculationScore,
			HairNails:   stat.HairNailsScore,
		},
		NutritionBalance: domain.NutritionBalance{
			Protein: stat.ProteinBalance,
			Fiber:   stat.FiberBalance,
			Vitamin: stat.VitaminBalance,
			Mineral: stat.MineralBalance,
		},
	}, nil
}

func (s *statsService) WeekBounds(date string) (string, string, error) {
	day := s.now().In(s.loc)
	if date != "" {
		var err error
		if day, err = parseDate(date, s.loc); err != nil {
			return "", "", err
		}
	}
	start := WeekStart(day)
	return formatDate(start), formatDate(start.AddDate(0, 0, 6)), nil
}

func (s *statsService) CurrentMonth() string {
	return s.now().In(s.loc).Format(domain.MonthLayout)
}

func (s *statsService) BuildWeeklyReport(ctx context.Context, userID uuid.UUID, weekStart string) *domain.WeeklyReport {
	logger := s.log.WithFields(logrus.Fields{"task": "weekly_report", "user_id": userID})

	start, end, err := s.WeekBounds(weekStart)
	if err != nil {
		logger.Warnf("invalid week start %q: %v", weekStart, err)
		return nil
	}
	startDay, _ := parseDate(start, s.loc)

	rows, err := s.statsRepository.GetRange(ctx, userID, start, end)
	if err != nil {
		logger.Errorf("failed to load week: %v", err)
		return nil
	}
	week := summarize(rows)
	if week.empty() {
		return nil
	}

	prevRows, err := s.statsRepository.GetRange(ctx, userID,
		formatDate(startDay.AddDate(0, 0, -7)), formatDate(startDay.AddDate(0, 0, -1)))
	if err != nil {
		logger.Errorf("failed to load previous week: %v", err)
		return nil
	}
	prev := summarize(prevRows)

	report := &domain.WeeklyReport{
		WeekStart:        start,
		WeekEnd:          end,
		AverageScore:     round1(week.average()),
		TotalAnalyses:    week.analyses,
		CategoryAverages: week.categoryAverages(),
		TopCategory:      week.topCategory(),
		Improvement:      improvement(week, prev),
		DailyScores:      week.dailyScores(),
	}
	report.Insights = insights(week, prev, "week", 7)
	return report
}

func (s *statsService) BuildMonthlyReport(ctx context.Context, userID uuid.UUID, month string) *domain.MonthlyReport {
	logger := s.log.WithFields(logrus.Fields{"task": "monthly_report", "user_id": userID})

	if month == "" {
		month = s.CurrentMonth()
	}
	first, err := parseMonth(month, s.loc)
	if err != nil {
		logger.Warnf("invalid month %q: %v", month, err)
		return nil
	}

	rows, err := s.statsRepository.GetMonth(ctx, userID, month)
	if err != nil {
		logger.Errorf("failed to load month: %v", err)
		return nil
	}
	current := summarize(rows)
	if current.empty() {
		return nil
	}

	prevRows, err := s.statsRepository.GetMonth(ctx, userID, first.AddDate(0, -1, 0).Format(domain.MonthLayout))
	if err != nil {
		logger.Errorf("failed to load previous month: %v", err)
		return nil
	}
	prev := summarize(prevRows)

	daysInMonth := first.AddDate(0, 1, -1).Day()
	return &domain.MonthlyReport{
		Month:            month,
		AverageScore:     round1(current.average()),
		TotalAnalyses:    current.analyses,
		ActiveDays:       current.activeDays,
		CategoryAverages: current.categoryAverages(),
		TopCategory:      current.topCategory(),
		Improvement:      improvement(current, prev),
		Weeks:            weeklyBreakdown(rows),
		Insights:         insights(current, prev, "month", daysInMonth),
	}
}
