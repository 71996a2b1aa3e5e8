package handlers

import (
	"errors"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/api/presenters"
	"beautyfood-backend/pkg/stats"

	"github.com/gofiber/fiber/v2"
)

type (
	StatsHandler interface {
		GetDailyStats(c *fiber.Ctx) error
	}

	statsHandler struct {
		statsService stats.StatsService
	}
)

func NewStatsHandler(statsService stats.StatsService) StatsHandler {
	return &statsHandler{
		statsService: statsService,
	}
}

func (h *statsHandler) GetDailyStats(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}

	res, err := h.statsService.GetDailyStat(c.Context(), userID, c.Query("date"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDate):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDailyStats, err)
		case errors.Is(err, domain.ErrDailyStatNotFound):
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetDailyStats, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDailyStats, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDailyStats)
}
