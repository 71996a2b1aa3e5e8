package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/api/handlers"
	"beautyfood-backend/internal/api/presenters"
	"beautyfood-backend/internal/api/routes"
	"beautyfood-backend/internal/middleware"
	"beautyfood-backend/internal/testdb"
	"beautyfood-backend/internal/utils"
	"beautyfood-backend/internal/utils/logger"
	"beautyfood-backend/pkg/jwt"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/stats"
	"beautyfood-backend/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	user  domain.UserContext
	input domain.AnalyzeMealInput
	res   domain.AnalyzeMealResponse
	err   error
	calls int
}

func (f *fakePipeline) AnalyzeMeal(_ context.Context, u domain.UserContext, in domain.AnalyzeMealInput) (domain.AnalyzeMealResponse, error) {
	f.calls++
	f.user = u
	f.input = in
	return f.res, f.err
}

type inlineBlob struct{}

func (inlineBlob) Upload(context.Context, domain.UserContext, domain.MealImage) domain.ImageRef {
	return domain.ImageRef{}
}
func (inlineBlob) Resolve(_ context.Context, ref domain.ImageRef) (string, error) {
	return ref.Inline, nil
}
func (inlineBlob) Delete(context.Context, domain.ImageRef) error { return nil }

type fakeMailer struct {
	to, subject, body string
}

func (m *fakeMailer) SendMail(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

type server struct {
	app      *fiber.App
	pipeline *fakePipeline
	users    user.UserService
	mailer   *fakeMailer
	jwt      jwt.JWTService
}

func newServer(t *testing.T) *server {
	utils.InitValidator()
	db := testdb.New(t)
	log := logger.Discard()

	s := &server{
		app:      fiber.New(),
		pipeline: &fakePipeline{res: domain.AnalyzeMealResponse{Classification: domain.ClassificationResult{IsFood: true}}},
		users:    user.NewUserService(user.NewUserRepository(db)),
		mailer:   &fakeMailer{},
		jwt:      jwt.NewJWTService("test-secret", time.Hour),
	}
	meals := meal.NewMealService(meal.NewMealRepository(db), inlineBlob{}, time.UTC, log)
	statsService := stats.NewStatsService(stats.NewStatsRepository(db), time.UTC, log)

	cfg := routes.Config{
		App:           s.app,
		UserHandler:   handlers.NewUserHandler(s.users, utils.Validate),
		MealHandler:   handlers.NewMealHandler(s.pipeline, meals, s.users, utils.Validate),
		StatsHandler:  handlers.NewStatsHandler(statsService),
		ReportHandler: handlers.NewReportHandler(statsService, s.users, s.mailer),
		Middleware:    middleware.NewMiddleware(),
		JWTService:    s.jwt,
	}
	cfg.Setup()
	return s
}

func (s *server) token(t *testing.T, userID uuid.UUID, role string) string {
	token, err := s.jwt.GenerateTokenUser(userID.String(), role)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *server) do(t *testing.T, req *http.Request) (int, presenters.Response) {
	res, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out presenters.Response
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return res.StatusCode, out
}

func analyzeRequest(t *testing.T, fields map[string]string, withImage bool) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="meal.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestPing(t *testing.T) {
	s := newServer(t)
	res, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestAnalyzeMeal_Guest(t *testing.T) {
	s := newServer(t)

	status, res := s.do(t, analyzeRequest(t, map[string]string{
		"meal_timing": "breakfast",
		"captured_at": "2024-03-06T08:15:00Z",
	}, true))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Status)
	assert.Equal(t, domain.MessageSuccessAnalyzeMeal, res.Message)

	assert.True(t, s.pipeline.user.IsGuest())
	assert.Equal(t, domain.Breakfast, s.pipeline.input.MealTiming)
	assert.Equal(t, "image/jpeg", s.pipeline.input.Image.MimeType)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, s.pipeline.input.Image.Data)
	assert.Equal(t, domain.DefaultUserProfile(), s.pipeline.input.Profile)
}

func TestAnalyzeMeal_AuthenticatedUsesStoredProfile(t *testing.T) {
	s := newServer(t)
	userID := uuid.New()
	_, err := s.users.EnsureUser(context.Background(), userID, "kim@example.com", "Kim")
	require.NoError(t, err)
	_, err = s.users.UpdateProfile(context.Background(), userID, domain.UpdateProfileRequest{
		BeautyFocus: []string{"detox"}, ExperienceLevel: "advanced",
	})
	require.NoError(t, err)

	req := analyzeRequest(t, map[string]string{"experience_level": "beginner"}, true)
	req.Header.Set("Authorization", s.token(t, userID, domain.RolePremium))
	status, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, status)

	id, ok := s.pipeline.user.UserID()
	require.True(t, ok)
	assert.Equal(t, userID, id)
	// the users table says not premium
	assert.False(t, s.pipeline.user.IsPremium())
	assert.Equal(t, []domain.BeautyCategory{domain.Detox}, s.pipeline.input.Profile.BeautyFocus)
	assert.Equal(t, domain.Beginner, s.pipeline.input.Profile.ExperienceLevel)
}

func TestAnalyzeMeal_InvalidToken(t *testing.T) {
	s := newServer(t)
	req := analyzeRequest(t, nil, true)
	req.Header.Set("Authorization", "Bearer nope")

	status, res := s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, res.Status)
	assert.Zero(t, s.pipeline.calls)
}

func TestAnalyzeMeal_Validation(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, analyzeRequest(t, nil, false))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, analyzeRequest(t, map[string]string{"meal_timing": "brunch"}, true))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, analyzeRequest(t, map[string]string{"captured_at": "yesterday"}, true))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, s.pipeline.calls)
}

func TestAnalyzeMeal_ErrorMapping(t *testing.T) {
	cases := []struct {
		name            string
		err             error
		status          int
		retryable       bool
		upgradeRequired bool
	}{
		{"quota", domain.ErrQuotaExceeded, http.StatusTooManyRequests, false, true},
		{"analysis", &domain.AnalysisError{Attempts: 3, Err: errors.New("timeout")}, http.StatusBadGateway, true, false},
		{"persist", &domain.PersistError{MealID: "m1", Err: errors.New("db down")}, http.StatusInternalServerError, true, false},
		{"other", errors.New("boom"), http.StatusInternalServerError, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			s.pipeline.err = tc.err

			status, res := s.do(t, analyzeRequest(t, nil, true))
			assert.Equal(t, tc.status, status)
			assert.False(t, res.Status)
			assert.Equal(t, tc.retryable, res.Retryable)
			assert.Equal(t, tc.upgradeRequired, res.UpgradeRequired)
		})
	}
}

func TestAnalyzeMeal_NonFood(t *testing.T) {
	s := newServer(t)
	s.pipeline.res = domain.AnalyzeMealResponse{
		Classification: domain.ClassificationResult{IsFood: false, DetectedObject: "cat"},
		CannedResponse: "Cute, but not a meal.",
	}

	status, res := s.do(t, analyzeRequest(t, nil, true))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.MessageSuccessNonFood, res.Message)
}

func TestWeeklyReport_Placeholder(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/weekly?week_start=2024-03-06", nil)
	req.Header.Set("Authorization", s.token(t, uuid.New(), domain.RoleUser))

	status, res := s.do(t, req)
	require.Equal(t, http.StatusOK, status)
	data := res.Data.(map[string]any)
	assert.Equal(t, true, data["is_placeholder"])
	assert.Equal(t, domain.PlaceholderLabel, data["label"])
	assert.Equal(t, "2024-03-04", data["week_start"])
	assert.Equal(t, "2024-03-10", data["week_end"])
}

func TestReports_InvalidDates(t *testing.T) {
	s := newServer(t)
	auth := s.token(t, uuid.New(), domain.RoleUser)

	for _, url := range []string{
		"/api/v1/reports/weekly?week_start=06-03-2024",
		"/api/v1/reports/monthly?month=2024-13",
		"/api/v1/stats/daily?date=tomorrow",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Authorization", auth)
		status, _ := s.do(t, req)
		assert.Equal(t, http.StatusBadRequest, status, url)
	}
}

func TestMonthlyReport_Placeholder(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?month=2024-02", nil)
	req.Header.Set("Authorization", s.token(t, uuid.New(), domain.RoleUser))

	status, res := s.do(t, req)
	require.Equal(t, http.StatusOK, status)
	data := res.Data.(map[string]any)
	assert.Equal(t, true, data["is_placeholder"])
	assert.Equal(t, "2024-02", data["month"])
}

func TestDailyStats_NotFound(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/daily?date=2024-03-06", nil)
	req.Header.Set("Authorization", s.token(t, uuid.New(), domain.RoleUser))

	status, _ := s.do(t, req)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSendWeeklyReportEmail(t *testing.T) {
	s := newServer(t)
	userID := uuid.New()
	_, err := s.users.EnsureUser(context.Background(), userID, "rin@example.com", "Rin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/weekly/email?week_start=2024-03-04", nil)
	req.Header.Set("Authorization", s.token(t, userID, domain.RoleUser))

	status, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rin@example.com", s.mailer.to)
	assert.Contains(t, s.mailer.subject, "2024-03-04")
	assert.Contains(t, s.mailer.body, "No meals were analyzed")
}

func TestUserProfile(t *testing.T) {
	s := newServer(t)
	userID := uuid.New()
	auth := s.token(t, userID, domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", auth)
	status, _ := s.do(t, req)
	assert.Equal(t, http.StatusNotFound, status)

	_, err := s.users.EnsureUser(context.Background(), userID, "jo@example.com", "Jo")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/me/profile",
		bytes.NewBufferString(`{"beauty_focus":["glow"],"experience_level":"advanced"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	status, _ = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, status)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/me/profile",
		bytes.NewBufferString(`{"beauty_focus":["hair_nails","detox"],"experience_level":"advanced"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	status, res := s.do(t, req)
	require.Equal(t, http.StatusOK, status)
	profile := res.Data.(map[string]any)["profile"].(map[string]any)
	assert.Equal(t, []any{"hair_nails", "detox"}, profile["beauty_focus"])
	assert.Equal(t, "advanced", profile["experience_level"])
}

func TestMealHistory_RequiresAuth(t *testing.T) {
	s := newServer(t)
	status, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", s.token(t, uuid.New(), domain.RoleUser))
	status, _ = s.do(t, req)
	assert.Equal(t, http.StatusNotFound, status)
}
