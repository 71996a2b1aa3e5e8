package domain

var (
	MessageSuccessGetUser       = "user retrieved successfully"
	MessageSuccessUpdateProfile = "beauty profile updated successfully"

	MessageFailedGetUser       = "failed to get user"
	MessageFailedUpdateProfile = "failed to update beauty profile"
)

type (
	UserResponse struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		Name      string      `json:"name"`
		IsPremium bool        `json:"is_premium"`
		Profile   UserProfile `json:"profile"`
	}

	UpdateProfileRequest struct {
		BeautyFocus     []string `json:"beauty_focus" validate:"required,min=1,dive,oneof=skin_care anti_aging detox circulation hair_nails"`
		ExperienceLevel string   `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
	}
)

// DefaultUserProfile is used for guests and for users who never set a
// profile.
func DefaultUserProfile() UserProfile {
	return UserProfile{
		BeautyFocus:     []BeautyCategory{SkinCare},
		ExperienceLevel: Beginner,
	}
}

// ParseUserProfile keeps the known categories from focus and falls back to
// the defaults for anything left empty.
func ParseUserProfile(focus []string, level string) UserProfile {
	profile := DefaultUserProfile()

	var categories []BeautyCategory
	seen := map[string]bool{}
	for _, f := range focus {
		if IsBeautyCategory(f) && !seen[f] {
			seen[f] = true
			categories = append(categories, BeautyCategory(f))
		}
	}
	if len(categories) > 0 {
		profile.BeautyFocus = categories
	}

	switch l := ExperienceLevel(level); l {
	case Beginner, Intermediate, Advanced:
		profile.ExperienceLevel = l
	}
	return profile
}
