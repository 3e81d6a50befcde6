package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"nutrilog/common"
)

// FoodCandidate is one recognized food in a photo, with the model's
// confidence. Each candidate is convertible into a LogItem draft once the
// user confirms it and nutrients are looked up.
type FoodCandidate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// PhotoRecognizer is the photo-recognition collaborator; only the candidate
// list shape matters to the core.
type PhotoRecognizer interface {
	Recognize(ctx context.Context, imageData []byte) ([]FoodCandidate, error)
}

// RekognitionService recognizes foods with AWS Rekognition DetectLabels.
type RekognitionService struct {
	client *rekognition.Client
}

func NewRekognitionService(ctx context.Context) (*RekognitionService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", common.ErrUpstreamUnavailable, err)
	}
	return &RekognitionService{client: rekognition.NewFromConfig(cfg)}, nil
}

func (r *RekognitionService) Recognize(ctx context.Context, imageData []byte) ([]FoodCandidate, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: imageData},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(60),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: detect labels: %v", common.ErrUpstreamUnavailable, err)
	}

	candidates := make([]FoodCandidate, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name == nil || l.Confidence == nil {
			continue
		}
		candidates = append(candidates, FoodCandidate{
			Label:      *l.Name,
			Confidence: float64(*l.Confidence),
		})
	}
	return candidates, nil
}

// DecodeImageDataURI strips a data:image/...;base64, prefix and decodes the
// payload. Accepts a bare base64 string too.
func DecodeImageDataURI(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:image") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed image data URI", common.ErrValidation)
		}
		s = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", common.ErrValidation)
	}
	return data, nil
}
