package vision

import (
	"context"
	"fmt"
	"strings"

	"beautyfood-backend/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/sirupsen/logrus"
)

var foodLabels = map[string]struct{}{
	"food": {}, "meal": {}, "dish": {}, "dinner": {}, "lunch": {}, "breakfast": {},
	"fruit": {}, "vegetable": {}, "produce": {}, "bread": {}, "dessert": {},
	"beverage": {}, "drink": {}, "salad": {}, "soup": {}, "bowl": {}, "noodle": {},
	"pasta": {}, "pizza": {}, "burger": {}, "sushi": {}, "rice": {}, "meat": {},
	"seafood": {}, "egg": {}, "snack": {}, "cake": {}, "sandwich": {},
}

type (
	DetectLabelsAPI interface {
		DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	}

	rekognitionLabeler struct {
		client DetectLabelsAPI
	}
)

func NewRekognitionClassifier(client DetectLabelsAPI, log logrus.FieldLogger) ClassifierService {
	return &classifierService{backend: &rekognitionLabeler{client: client}, log: log}
}

func (r *rekognitionLabeler) label(ctx context.Context, image domain.MealImage) (domain.ClassificationResult, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image.Data},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("detect labels: %w", err)
	}
	if len(out.Labels) == 0 {
		return domain.ClassificationResult{}, fmt.Errorf("detect labels: no labels above threshold")
	}
	return classifyLabels(out.Labels), nil
}

// classifyLabels treats the image as food when any returned label is a known
// food label. The top label names the detected object otherwise.
func classifyLabels(labels []types.Label) domain.ClassificationResult {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, aws.ToString(l.Name))
	}

	for _, l := range labels {
		name := strings.ToLower(aws.ToString(l.Name))
		if _, ok := foodLabels[name]; ok {
			return domain.ClassificationResult{
				IsFood:         true,
				DetectedObject: name,
				Confidence:     float64(aws.ToFloat32(l.Confidence)) / 100,
				Description:    strings.Join(names, ", "),
			}
		}
	}

	top := labels[0]
	return domain.ClassificationResult{
		IsFood:         false,
		DetectedObject: strings.ToLower(aws.ToString(top.Name)),
		Confidence:     float64(aws.ToFloat32(top.Confidence)) / 100,
		Description:    strings.Join(names, ", "),
	}
}
