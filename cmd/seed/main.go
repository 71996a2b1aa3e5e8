// Command seed backfills synthetic daily beauty stats for one user so the
// report screens have data during development.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"beautyfood-backend/cmd/config"
	migration "beautyfood-backend/cmd/database/migrate"
	"beautyfood-backend/domain"
	"beautyfood-backend/entities"
	"beautyfood-backend/internal/utils"
	"beautyfood-backend/internal/utils/logger"
	"beautyfood-backend/pkg/stats"
	"beautyfood-backend/pkg/user"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	userFlag  = flag.String("user", "", "User id to seed")
	emailFlag = flag.String("email", "", "Create the user with this email when it does not exist")
	daysFlag  = flag.Int("days", 14, "Number of days to backfill, ending at -end")
	endFlag   = flag.String("end", "", "Last day to seed (YYYY-MM-DD), defaults to today")
	seedFlag  = flag.Int64("seed", 1, "Random seed")
)

func main() {
	flag.Parse()
	utils.LoadConfig()
	log := logger.New()

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("invalid -user: %v", err)
	}

	loc := utils.Location()
	end := time.Now().In(loc)
	if *endFlag != "" {
		if end, err = time.ParseInLocation(domain.DateLayout, *endFlag, loc); err != nil {
			log.Fatalf("invalid -end: %v", err)
		}
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	if *emailFlag != "" {
		if _, err := user.NewUserService(user.NewUserRepository(db)).EnsureUser(ctx, userID, *emailFlag, ""); err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
	}

	repo := stats.NewStatsRepository(db)
	rng := rand.New(rand.NewSource(*seedFlag))
	for i := *daysFlag - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		row := SyntheticDay(rng, userID, day)
		if err := repo.SaveDaily(ctx, row); err != nil {
			log.Fatalf("failed to seed %s: %v", row.StatDate, err)
		}
		log.WithFields(logrus.Fields{"task": "seed", "user_id": userID}).
			Infof("seeded %s: score %d over %d analyses", row.StatDate, row.DailyScore, row.AnalysesCount)
	}
}

// SyntheticDay builds one consistent row: every stored mean equals its sum
// divided by the analysis count.
func SyntheticDay(rng *rand.Rand, userID uuid.UUID, day time.Time) *entities.DailyBeautyStat {
	count := 1 + rng.Intn(3)
	score := func() int { return 55 + rng.Intn(41) }

	result := domain.AnalysisResult{
		BeautyScore: domain.BeautyScore{
			CategoryScores: domain.CategoryScores{
				SkinCare:    score(),
				AntiAging:   score(),
				Detox:       score(),
				Circulation: score(),
				HairNails:   score(),
			},
			Overall: score(),
		},
		NutritionAnalysis: domain.NutritionAnalysis{
			Protein: float64(10 + rng.Intn(25)),
			Fiber:   float64(2 + rng.Intn(7)),
			Vitamins: domain.Vitamins{
				VitaminC: float64(score()), VitaminE: float64(score()),
				VitaminA: float64(score()), VitaminBComplex: float64(score()),
			},
			Minerals: domain.Minerals{
				Iron: float64(score()), Zinc: float64(score()),
				Calcium: float64(score()), Magnesium: float64(score()),
			},
		},
	}

	row := stats.FoldFor(userID, result, day)
	row.AnalysesCount = count
	row.OverallSum = row.DailyScore * count
	row.SkinCareSum = row.SkinCareScore * count
	row.AntiAgingSum = row.AntiAgingScore * count
	row.DetoxSum = row.DetoxScore * count
	row.CirculationSum = row.CirculationScore * count
	row.HairNailsSum = row.HairNailsScore * count
	row.ProteinSum = row.ProteinBalance * count
	row.FiberSum = row.FiberBalance * count
	row.VitaminSum = row.VitaminBalance * count
	row.MineralSum = row.MineralBalance * count
	return row
}
