package stats

import (
	"fmt"
	"math"
	"strconv"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
)

// summary aggregates the days of a period. Analyses are counted on every
// active day, but only days with a non-zero score feed the averages.
type summary struct {
	rows       []entities.DailyBeautyStat
	activeDays int
	scoredDays int
	analyses   int
	scoreSum   int
	categories domain.CategoryScores
}

func summarize(rows []entities.DailyBeautyStat) summary {
	var s summary
	for _, r := range rows {
		if r.AnalysesCount <= 0 {
			continue
		}
		s.rows = append(s.rows, r)
		s.activeDays++
		s.analyses += r.AnalysesCount
		if r.DailyScore == 0 {
			continue
		}
		s.scoredDays++
		s.scoreSum += r.DailyScore
		s.categories.SkinCare += r.SkinCareScore
		s.categories.AntiAging += r.AntiAgingScore
		s.categories.Detox += r.DetoxScore
		s.categories.Circulation += r.CirculationScore
		s.categories.HairNails += r.HairNailsScore
	}
	return s
}

func (s summary) empty() bool {
	return s.activeDays == 0
}

func (s summary) average() float64 {
	if s.scoredDays == 0 {
		return 0
	}
	return float64(s.scoreSum) / float64(s.scoredDays)
}

func (s summary) categoryAverages() domain.CategoryAverages {
	var avg domain.CategoryAverages
	if s.scoredDays == 0 {
		return avg
	}
	for _, c := range domain.BeautyCategories {
		avg.Set(c, round1(float64(s.categories.Get(c))/float64(s.scoredDays)))
	}
	return avg
}

// topCategory compares integer sums, which share the same divisor, so ties
// are exact and resolve to the earliest category.
func (s summary) topCategory() domain.BeautyCategory {
	best := domain.BeautyCategories[0]
	for _, c := range domain.BeautyCategories[1:] {
		if s.categories.Get(c) > s.categories.Get(best) {
			best = c
		}
	}
	return best
}

func (s summary) bottomCategory() domain.BeautyCategory {
	worst := domain.BeautyCategories[0]
	for _, c := range domain.BeautyCategories[1:] {
		if s.categories.Get(c) < s.categories.Get(worst) {
			worst = c
		}
	}
	return worst
}

func (s summary) dailyScores() []domain.DailyScore {
	scores := make([]domain.DailyScore, 0, len(s.rows))
	for _, r := range s.rows {
		scores = append(scores, domain.DailyScore{
			Date:          r.StatDate,
			Score:         r.DailyScore,
			AnalysesCount: r.AnalysesCount,
		})
	}
	return scores
}

func weeklyBreakdown(rows []entities.DailyBeautyStat) []domain.WeeklySummary {
	var weeks []domain.WeeklySummary
	groups := map[string][]entities.DailyBeautyStat{}
	for _, r := range rows {
		if r.AnalysesCount <= 0 {
			continue
		}
		if _, ok := groups[r.WeekStart]; !ok {
			weeks = append(weeks, domain.WeeklySummary{WeekStart: r.WeekStart})
		}
		groups[r.WeekStart] = append(groups[r.WeekStart], r)
	}
	for i := range weeks {
		w := summarize(groups[weeks[i].WeekStart])
		weeks[i].AverageScore = round1(w.average())
		weeks[i].TotalAnalyses = w.analyses
	}
	return weeks
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// improvement formats the change in average against the previous period
// with an explicit sign. No previous data reads as "+0".
func improvement(current, previous summary) string {
	if previous.scoredDays == 0 {
		return "+0"
	}
	return signed(round1(current.average() - previous.average()))
}

func signed(v float64) string {
	if v == 0 {
		return "+0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

func insights(current, previous summary, period string, periodDays int) []string {
	top := current.topCategory()
	out := []string{
		fmt.Sprintf("Your strongest area this %s was %s, averaging %s.",
			period, top.Label(), formatScore(current.categoryAverages().Get(top))),
	}

	if bottom := current.bottomCategory(); bottom != top {
		out = append(out, fmt.Sprintf("Give %s a boost: it averaged %s.",
			bottom.Label(), formatScore(current.categoryAverages().Get(bottom))))
	}

	if previous.scoredDays > 0 {
		delta := round1(current.average() - previous.average())
		switch {
		case delta > 0:
			out = append(out, fmt.Sprintf("Your average rose by %s points compared to last %s.", formatScore(delta), period))
		case delta < 0:
			out = append(out, fmt.Sprintf("Your average dipped by %s points compared to last %s.", formatScore(-delta), period))
		default:
			out = append(out, fmt.Sprintf("Your average held steady compared to last %s.", period))
		}
	}

	if current.activeDays*2 < periodDays {
		out = append(out, fmt.Sprintf("You logged meals on %d of %d days. Logging more often makes your report more accurate.",
			current.activeDays, periodDays))
	}

	if avg := current.average(); avg >= 80 {
		out = append(out, "Excellent results! Your meals strongly support your beauty goals.")
	} else if avg < 50 {
		out = append(out, "Try adding colorful vegetables and lean protein to lift your scores.")
	}
	return out
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
