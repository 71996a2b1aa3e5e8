// Command reset removes every meal, analysis, advice row and daily stat of
// one user, including the stored images. Development and test use only.
package main

import (
	"context"
	"flag"

	"beautyfood-backend/cmd/config"
	"beautyfood-backend/domain"
	"beautyfood-backend/internal/utils"
	"beautyfood-backend/internal/utils/logger"
	"beautyfood-backend/internal/utils/storage"
	"beautyfood-backend/pkg/blob"
	"beautyfood-backend/pkg/meal"
	"beautyfood-backend/pkg/stats"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var userFlag = flag.String("user", "", "User id to reset")

func main() {
	flag.Parse()
	utils.LoadConfig()
	log := logger.New()

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("invalid -user: %v", err)
	}
	resetLog := log.WithFields(logrus.Fields{"task": "reset", "user_id": userID})

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	s3, err := storage.NewAwsS3(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}
	blobs := blob.NewBlobService(s3, 0, log)

	paths, err := meal.NewMealRepository(db).PurgeUser(ctx, userID)
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, p := range paths {
		if err := blobs.Delete(ctx, domain.ImageRef{Path: p}); err != nil {
			resetLog.Warnf("failed to delete image %s: %v", p, err)
		}
	}

	n, err := stats.NewStatsRepository(db).DeleteForUser(ctx, userID)
	if err != nil {
		log.Fatalf("failed to delete daily stats: %v", err)
	}
	resetLog.Infof("removed %d meal images and %d daily stat rows", len(paths), n)
}
