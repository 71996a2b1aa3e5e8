package meal

import (
	"context"
	"testing"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
	"beautyfood-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeUser(t *testing.T) {
	db := testdb.New(t)
	repo := NewMealRepository(db)
	ctx := context.Background()
	userID, otherID := uuid.New(), uuid.New()

	withImage := &entities.MealRecord{UserID: userID, CapturedAt: time.Now(), ImagePath: userID.String() + "/1_a.jpg", Status: string(domain.StatusPending)}
	inline := &entities.MealRecord{UserID: userID, CapturedAt: time.Now(), ImageData: "data:image/jpeg;base64,AA==", Status: string(domain.StatusPending)}
	other := &entities.MealRecord{UserID: otherID, CapturedAt: time.Now(), ImagePath: otherID.String() + "/1_b.jpg", Status: string(domain.StatusPending)}
	for _, r := range []*entities.MealRecord{withImage, inline, other} {
		require.NoError(t, repo.CreateMealRecord(ctx, r))
	}

	analysis, advice, err := toEntities(userID, sampleResult)
	require.NoError(t, err)
	require.NoError(t, repo.SaveAnalysis(ctx, withImage.ID, analysis, advice))
	require.NoError(t, repo.DeleteMealRecord(ctx, inline.ID))

	paths, err := repo.PurgeUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{withImage.ImagePath}, paths)

	var n int64
	require.NoError(t, db.Unscoped().Model(&entities.MealRecord{}).Where("user_id = ?", userID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Unscoped().Model(&entities.AdviceRecord{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&entities.MealRecord{}).Where("user_id = ?", otherID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
