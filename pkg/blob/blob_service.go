package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beautyfood-backend/domain"
	"beautyfood-backend/internal/utils/storage"
	"beautyfood-backend/pkg/llm"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultSignedURLTTL = time.Hour

type (
	BlobService interface {
		// Upload stores the image and returns its path. Guests and failed
		// uploads get the image back inline as a data URI instead.
		Upload(ctx context.Context, user domain.UserContext, image domain.MealImage) domain.ImageRef
		// Resolve turns a reference into something a client can load. Paths are
		// signed fresh on every call.
		Resolve(ctx context.Context, ref domain.ImageRef) (string, error)
		Delete(ctx context.Context, ref domain.ImageRef) error
	}

	blobService struct {
		s3    storage.AwsS3
		ttl   time.Duration
		now   func() time.Time
		newID func() string
		log   logrus.FieldLogger
	}
)

func NewBlobService(s3 storage.AwsS3, ttl time.Duration, log logrus.FieldLogger) BlobService {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &blobService{
		s3:    s3,
		ttl:   ttl,
		now:   time.Now,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
		log:   log,
	}
}

// ObjectKey builds <userId>/<unixMillis>_<randomId>.jpg.
func ObjectKey(userID uuid.UUID, at time.Time, randomID string) string {
	return fmt.Sprintf("%s/%d_%s.jpg", userID, at.UnixMilli(), randomID)
}

func (s *blobService) Upload(ctx context.Context, user domain.UserContext, image domain.MealImage) domain.ImageRef {
	inline := domain.ImageRef{Inline: llm.DataURL(image.MimeType, image.Data)}

	userID, ok := user.UserID()
	if !ok {
		return inline
	}

	key := ObjectKey(userID, s.now(), s.newID())
	contentType := image.MimeType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := s.s3.UploadBytes(ctx, key, image.Data, contentType); err != nil {
		s.log.WithFields(logrus.Fields{"task": "upload", "user_id": userID}).
			Warnf("upload degraded to inline image: %v", err)
		return inline
	}
	return domain.ImageRef{Path: key}
}

func (s *blobService) Resolve(ctx context.Context, ref domain.ImageRef) (string, error) {
	if ref.Path == "" {
		return ref.Inline, nil
	}
	return s.s3.PresignGet(ctx, ref.Path, s.ttl)
}

func (s *blobService) Delete(ctx context.Context, ref domain.ImageRef) error {
	if ref.Path == "" {
		return nil
	}
	return s.s3.DeleteObject(ctx, ref.Path)
}
