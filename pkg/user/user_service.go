package user

import (
	"context"
	"errors"

	"beautyfood-backend/domain"
	"beautyfood-backend/entities"

	"github.com/google/uuid"
)

type (
	UserService interface {
		GetMe(ctx context.Context, userID uuid.UUID) (domain.UserResponse, error)
		UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (domain.UserResponse, error)
		// Resolve builds the pipeline identity and stored profile of a token
		// holder. Premium status comes from the users table; the token role is
		// only used when the user has no row yet.
		Resolve(ctx context.Context, userID uuid.UUID, role string) (domain.UserContext, domain.UserProfile, error)
		// EnsureUser returns the user with the given id, creating it first if
		// needed.
		EnsureUser(ctx context.Context, userID uuid.UUID, email, name string) (domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
	}
)

func NewUserService(userRepository UserRepository) UserService {
	return &userService{
		userRepository: userRepository,
	}
}

func toResponse(u *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		IsPremium: u.IsPremium,
		Profile:   domain.ParseUserProfile(u.BeautyFocus, u.ExperienceLevel),
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (domain.UserResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toResponse(u), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (domain.UserResponse, error) {
	profile := domain.ParseUserProfile(req.BeautyFocus, req.ExperienceLevel)

	focus := make(entities.StringList, 0, len(profile.BeautyFocus))
	for _, c := range profile.BeautyFocus {
		focus = append(focus, string(c))
	}
	if err := s.userRepository.UpdateProfile(ctx, userID, focus, string(profile.ExperienceLevel)); err != nil {
		return domain.UserResponse{}, err
	}
	return s.GetMe(ctx, userID)
}

func (s *userService) Resolve(ctx context.Context, userID uuid.UUID, role string) (domain.UserContext, domain.UserProfile, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Authenticated(userID, role == domain.RolePremium), domain.DefaultUserProfile(), nil
		}
		return domain.UserContext{}, domain.UserProfile{}, err
	}
	return domain.Authenticated(u.ID, u.IsPremium), domain.ParseUserProfile(u.BeautyFocus, u.ExperienceLevel), nil
}

func (s *userService) EnsureUser(ctx context.Context, userID uuid.UUID, email, name string) (domain.UserResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err == nil {
		return toResponse(u), nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserResponse{}, err
	}

	u = &entities.User{
		ID:    userID,
		Email: email,
		Name:  name,
	}
	if err := s.userRepository.CreateUser(ctx, u); err != nil {
		return domain.UserResponse{}, err
	}
	return toResponse(u), nil
}
