package mailing

import (
	"html"
	"testing"

	"beautyfood-backend/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyReportMail(t *testing.T) {
	subject, body, err := WeeklyReportMail(domain.WeeklyReport{
		WeekStart:     "2024-03-04",
		WeekEnd:       "2024-03-10",
		AverageScore:  81.5,
		TotalAnalyses: 4,
		TopCategory:   domain.AntiAging,
		Improvement:   "+3.5",
		Insights:      []string{"Great week"},
	})
	require.NoError(t, err)

	assert.Equal(t, "BeautyFood weekly report (2024-03-04)", subject)
	assert.Contains(t, body, "81.5")
	assert.Contains(t, body, "&#43;3.5")
	assert.Contains(t, html.UnescapeString(body), "(+3.5 vs last week)")
	assert.Contains(t, body, "<li>Great week</li>")
	assert.Contains(t, body, "Top category: anti-aging")
	assert.NotContains(t, body, "anti_aging")
}

func TestWeeklyReportMail_Placeholder(t *testing.T) {
	_, body, err := WeeklyReportMail(domain.PlaceholderWeeklyReport("2024-03-04", "2024-03-10"))
	require.NoError(t, err)

	assert.Contains(t, body, "No meals were analyzed")
	assert.NotContains(t, body, "Average beauty score")
}

func TestSendMail_NotConfigured(t *testing.T) {
	err := NewMailer(MailConfig{}).SendMail("a@b.c", "s", "b")
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}
