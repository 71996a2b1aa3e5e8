package config

import (
	"context"
	"fmt"
	"io"
	"time"

	"beautyfood-backend/internal/api/handlers"
	"beautyfood-backend/internal/api/routes"
	"beautyfood-backend/internal/middleware"
	"beautyfood-backend/internal/utils"
	"beautyfood-backend/internal/utils/broker"
	"beautyfood-backend/internal/utils/mailing"
	"beautyfood-backend/internal/utils/storage"
	"beautyfood-backend/pkg/analysis"
	"beautyfood-backend/pkg/blob"
	"beautyfood-backend/pkg/jwt"
	"beautyfood-backend/pkg/llm"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/pipeline"
	"beautyfood-backend/pkg/stats"
	"beautyfood-backend/pkg/user"
	"beautyfood-backend/pkg/vision"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewApp wires every client, repository, service and handler once. The
// returned cleanup releases the broker connection and model clients.
func NewApp(ctx context.Context, db *gorm.DB, log *logrus.Logger) (*fiber.App, func(), error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         10 << 20,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate
	loc := utils.Location()

	// setting up logging and limiter
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   loc.String(),
		Output:     log.Writer(),
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        utils.GetConfigInt("RATE_LIMIT_MAX", 10),
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3(ctx)
	if err != nil {
		return nil, nil, err
	}
	model, err := llm.NewVisionModel(ctx, utils.GetConfig("LLM_PROVIDER"), llm.Config{
		OpenAIAPIKey:  utils.GetConfig("OPENAI_API_KEY"),
		OpenAIModel:   utils.GetConfig("OPENAI_MODEL"),
		OpenAIBaseURL: utils.GetConfig("OPENAI_BASE_URL"),
		GeminiAPIKey:  utils.GetConfig("GEMINI_API_KEY"),
		GeminiModel:   utils.GetConfig("GEMINI_MODEL"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("vision model: %w", err)
	}
	publisher, err := broker.NewPublisher(utils.GetConfig("RABBITMQ_URL"), utils.GetConfig("RABBITMQ_EXCHANGE"), log)
	if err != nil {
		log.Warnf("rabbitmq unavailable, events disabled: %v", err)
		publisher, _ = broker.NewPublisher("", "", log)
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig())

	classifier, err := newClassifier(ctx, model, log)
	if err != nil {
		return nil, nil, err
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	mealRepository := meal.NewMealRepository(db)
	statsRepository := stats.NewStatsRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"), utils.GetConfigDuration("JWT_TTL", 24*time.Hour))
	userService := user.NewUserService(userRepository)
	blobService := blob.NewBlobService(s3, utils.GetConfigDuration("SIGNED_URL_TTL", blob.DefaultSignedURLTTL), log)
	analysisService := analysis.NewAnalysisService(model, analysis.Options{
		MaxAttempts: utils.GetConfigInt("ANALYSIS_MAX_ATTEMPTS", analysis.DefaultMaxAttempts),
		BackoffBase: utils.GetConfigDuration("ANALYSIS_BACKOFF_BASE", analysis.DefaultBackoffBase),
	}, log)
	mealService := meal.NewMealService(mealRepository, blobService, loc, log)
	statsService := stats.NewStatsService(statsRepository, loc, log)
	pipelineService := pipeline.NewPipelineService(
		classifier,
		analysisService,
		blobService,
		mealService,
		statsService,
		publisher,
		pipeline.Options{FreeDailyQuota: utils.GetConfigInt("FREE_DAILY_QUOTA", pipeline.DefaultFreeDailyQuota)},
		log,
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	mealHandler := handlers.NewMealHandler(pipelineService, mealService, userService, validator)
	statsHandler := handlers.NewStatsHandler(statsService)
	reportHandler := handlers.NewReportHandler(statsService, userService, mailer)

	// routes
	routesConfig := routes.Config{
		App:           app,
		UserHandler:   userHandler,
		MealHandler:   mealHandler,
		StatsHandler:  statsHandler,
		ReportHandler: reportHandler,
		Middleware:    middlewares,
		JWTService:    jwtService,
	}
	routesConfig.Setup()

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("close publisher: %v", err)
		}
		if closer, ok := model.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Warnf("close %s client: %v", model.Name(), err)
			}
		}
	}
	return app, cleanup, nil
}

func newClassifier(ctx context.Context, model llm.VisionModel, log logrus.FieldLogger) (vision.ClassifierService, error) {
	switch provider := utils.GetConfigDefault("CLASSIFIER_PROVIDER", "llm"); provider {
	case "llm":
		return vision.NewLLMClassifier(model, log), nil
	case "rekognition":
		cfg, err := storage.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return vision.NewRekognitionClassifier(rekognition.NewFromConfig(cfg), log), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", provider)
	}
}
