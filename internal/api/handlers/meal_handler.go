package handlers

import (
	"errors"
	"io"
	"strings"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/api/presenters"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/pipeline"
	"beautyfood-backend/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxImageSize = 8 << 20

type (
	MealHandler interface {
		AnalyzeMeal(c *fiber.Ctx) error
		GetMeals(c *fiber.Ctx) error
		GetMeal(c *fiber.Ctx) error
		DeleteMeal(c *fiber.Ctx) error
	}

	mealHandler struct {
		pipelineService pipeline.PipelineService
		mealService     meal.MealService
		userService     user.UserService
		validator       *validator.Validate
	}
)

func NewMealHandler(pipelineService pipeline.PipelineService, mealService meal.MealService, userService user.UserService, validator *validator.Validate) MealHandler {
	return &mealHandler{
		pipelineService: pipelineService,
		mealService:     mealService,
		userService:     userService,
		validator:       validator,
	}
}

func (h *mealHandler) AnalyzeMeal(c *fiber.Ctx) error {
	req := new(domain.AnalyzeMealRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidRequest, domain.ErrInvalidImage)
	}
	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidRequest, err)
	}

	image, err := readImage(req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidRequest, err)
	}

	input := domain.AnalyzeMealInput{
		Image:      image,
		MealTiming: domain.MealTiming(req.MealTiming),
	}
	if req.CapturedAt != "" {
		if input.CapturedAt, err = time.Parse(time.RFC3339, req.CapturedAt); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidRequest, err)
		}
	}

	userCtx := domain.Guest()
	profile := domain.DefaultUserProfile()
	if c.Locals("user_id") != nil {
		userID, err := currentUserID(c)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}
		if userCtx, profile, err = h.userService.Resolve(c.Context(), userID, currentRole(c)); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetUser, err)
		}
	}
	if len(req.BeautyFocus) > 0 || req.ExperienceLevel != "" {
		override := domain.ParseUserProfile(req.BeautyFocus, req.ExperienceLevel)
		if len(req.BeautyFocus) > 0 {
			profile.BeautyFocus = override.BeautyFocus
		}
		if req.ExperienceLevel != "" {
			profile.ExperienceLevel = override.ExperienceLevel
		}
	}
	input.Profile = profile

	res, err := h.pipelineService.AnalyzeMeal(c.Context(), userCtx, input)
	if err != nil {
		return analyzeError(c, err)
	}

	if !res.Classification.IsFood {
		return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessNonFood)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAnalyzeMeal)
}

func analyzeError(c *fiber.Ctx, err error) error {
	var analysisErr *domain.AnalysisError
	var persistErr *domain.PersistError

	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return presenters.UpgradeRequiredResponse(c, domain.MessageFailedQuotaExceeded, err)
	case errors.Is(err, domain.ErrEmptyBeautyFocus):
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidRequest, err)
	case errors.As(err, &analysisErr):
		return presenters.RetryableErrorResponse(c, fiber.StatusBadGateway, domain.MessageFailedAnalyzeMeal, err)
	case errors.As(err, &persistErr):
		return presenters.RetryableErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSaveMeal, err)
	}
	return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedProcessRequest, err)
}

func readImage(req *domain.AnalyzeMealRequest) (domain.MealImage, error) {
	if req.Image.Size == 0 || req.Image.Size > maxImageSize {
		return domain.MealImage{}, domain.ErrInvalidImage
	}
	mimeType := req.Image.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.MealImage{}, domain.ErrInvalidImage
	}

	f, err := req.Image.Open()
	if err != nil {
		return domain.MealImage{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.MealImage{}, err
	}
	return domain.MealImage{Data: data, MimeType: mimeType}, nil
}

func (h *mealHandler) GetMeals(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}
	page, limit := pagination(c)

	meals, count, err := h.mealService.GetMeals(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetMeals, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"meals": meals,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetMeals)
}

func (h *mealHandler) GetMeal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}

	res, err := h.mealService.GetMealByID(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, mealErrorStatus(err), domain.MessageFailedGetMeals, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetMeal)
}

func (h *mealHandler) DeleteMeal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}

	if err := h.mealService.DeleteMeal(c.Context(), userID, c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, mealErrorStatus(err), domain.MessageFailedDeleteMeal, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteMeal)
}

func mealErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrMealRecordNotFound), errors.Is(err, domain.ErrUnauthorizedAccess):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
