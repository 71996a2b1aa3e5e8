package user

import (
	"context"
	"testing"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
	"beautyfood-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (UserRepository, UserService) {
	repo := NewUserRepository(testdb.New(t))
	return repo, NewUserService(repo)
}

func TestResolve_UnknownUserUsesTokenRole(t *testing.T) {
	_, svc := setup(t)
	id := uuid.New()

	user, profile, err := svc.Resolve(context.Background(), id, domain.RolePremium)
	require.NoError(t, err)
	got, ok := user.UserID()
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.True(t, user.IsPremium())
	assert.Equal(t, domain.DefaultUserProfile(), profile)
}

func TestResolve_StoredUserWins(t *testing.T) {
	repo, svc := setup(t)
	u := &entities.User{
		Email:           "ana@example.com",
		BeautyFocus:     entities.StringList{"detox", "hair_nails"},
		ExperienceLevel: string(domain.Advanced),
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))

	user, profile, err := svc.Resolve(context.Background(), u.ID, domain.RolePremium)
	require.NoError(t, err)
	assert.False(t, user.IsPremium())
	assert.Equal(t, []domain.BeautyCategory{domain.Detox, domain.HairNails}, profile.BeautyFocus)
	assert.Equal(t, domain.Advanced, profile.ExperienceLevel)
}

func TestUpdateProfile(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{BeautyFocus: []string{"detox"}, ExperienceLevel: "advanced"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.EnsureUser(ctx, id, "sam@example.com", "Sam")
	require.NoError(t, err)

	res, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{
		BeautyFocus:     []string{"anti_aging", "skin_care", "anti_aging"},
		ExperienceLevel: "intermediate",
	})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", res.Email)
	assert.Equal(t, []domain.BeautyCategory{domain.AntiAging, domain.SkinCare}, res.Profile.BeautyFocus)
	assert.Equal(t, domain.Intermediate, res.Profile.ExperienceLevel)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()
	id := uuid.New()

	first, err := svc.EnsureUser(ctx, id, "lee@example.com", "Lee")
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, id, "other@example.com", "Other")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "lee@example.com", second.Email)
}

func TestParseUserProfile(t *testing.T) {
	assert.Equal(t, domain.DefaultUserProfile(), domain.ParseUserProfile(nil, ""))
	assert.Equal(t, domain.DefaultUserProfile(), domain.ParseUserProfile([]string{"glow"}, "expert"))
}
