package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSyntheticDay_KeepsMeansConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	userID := uuid.New()
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		row := SyntheticDay(rng, userID, day)
		assert.GreaterOrEqual(t, row.AnalysesCount, 1)
		assert.Equal(t, row.DailyScore*row.AnalysesCount, row.OverallSum)
		assert.Equal(t, row.DetoxScore*row.AnalysesCount, row.DetoxSum)
		assert.Equal(t, row.MineralBalance*row.AnalysesCount, row.MineralSum)
		assert.Equal(t, "2024-03-10", row.StatDate)
		assert.Equal(t, "2024-03-04", row.WeekStart)
		assert.Equal(t, "2024-03", row.YearMonth)
		assert.True(t, row.DailyScore >= 55 && row.DailyScore <= 95)
	}
}
