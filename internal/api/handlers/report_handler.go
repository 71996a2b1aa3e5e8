package handlers

import (
	"errors"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/api/presenters"
	"beautyfood-backend/internal/utils/mailing"
	"beautyfood-backend/pkg/stats"
	"beautyfood-backend/pkg/user"

	"github.com/gofiber/fiber/v2"
)

type (
	ReportHandler interface {
		GetWeeklyReport(c *fiber.Ctx) error
		GetMonthlyReport(c *fiber.Ctx) error
		SendWeeklyReportEmail(c *fiber.Ctx) error
	}

	reportHandler struct {
		statsService stats.StatsService
		userService  user.UserService
		mailer       mailing.Mailer
	}
)

func NewReportHandler(statsService stats.StatsService, userService user.UserService, mailer mailing.Mailer) ReportHandler {
	return &reportHandler{
		statsService: statsService,
		userService:  userService,
		mailer:       mailer,
	}
}

// weeklyReport never returns a nil report: weeks without data get the
// labelled placeholder.
func (h *reportHandler) weeklyReport(c *fiber.Ctx) (domain.WeeklyReport, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	weekStart := c.Query("week_start")
	start, end, err := h.statsService.WeekBounds(weekStart)
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	if report := h.statsService.BuildWeeklyReport(c.Context(), userID, weekStart); report != nil {
		return *report, nil
	}
	return domain.PlaceholderWeeklyReport(start, end), nil
}

func (h *reportHandler) GetWeeklyReport(c *fiber.Ctx) error {
	report, err := h.weeklyReport(c)
	if err != nil {
		return reportError(c, domain.MessageFailedGetReport, err)
	}
	return presenters.SuccessResponse(c, report, fiber.StatusOK, domain.MessageSuccessGetWeeklyReport)
}

func (h *reportHandler) GetMonthlyReport(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}

	month := c.Query("month", h.statsService.CurrentMonth())
	if _, err := time.Parse(domain.MonthLayout, month); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReport, domain.ErrInvalidMonth)
	}

	report := h.statsService.BuildMonthlyReport(c.Context(), userID, month)
	if report == nil {
		placeholder := domain.PlaceholderMonthlyReport(month)
		report = &placeholder
	}
	return presenters.SuccessResponse(c, report, fiber.StatusOK, domain.MessageSuccessGetMonthlyReport)
}

func (h *reportHandler) SendWeeklyReportEmail(c *fiber.Ctx) error {
	report, err := h.weeklyReport(c)
	if err != nil {
		return reportError(c, domain.MessageFailedSendReportEmail, err)
	}

	userID, _ := currentUserID(c)
	me, err := h.userService.GetMe(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedSendReportEmail, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSendReportEmail, err)
	}

	subject, body, err := mailing.WeeklyReportMail(report)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSendReportEmail, err)
	}
	if err := h.mailer.SendMail(me.Email, subject, body); err != nil {
		if errors.Is(err, mailing.ErrMailerNotConfigured) {
			return presenters.ErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageFailedSendReportEmail, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadGateway, domain.MessageFailedSendReportEmail, err)
	}
	return presenters.SuccessResponse(c, fiber.Map{"email": me.Email, "week_start": report.WeekStart}, fiber.StatusOK, domain.MessageSuccessSendReportEmail)
}

func reportError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, message, err)
	case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrParseUUID):
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
	}
	return presenters.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}
