package rekognition

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// Client is the subset of the Rekognition API used by Recognizer.
type Client interface {
	RecognizeCelebrities(ctx context.Context, params *rekognition.RecognizeCelebritiesInput, optFns ...func(*rekognition.Options)) (*rekognition.RecognizeCelebritiesOutput, error)
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Mode selects the Rekognition operation.
type Mode string

const (
	ModeCelebrities Mode = "celebrities"
	ModeLabels      Mode = "labels"
)

// Options tune the labels mode; celebrities mode has no knobs.
type Options struct {
	MaxLabels     int32
	MinConfidence float32
}

// Recognizer sends image bytes to Rekognition and returns its results as
// opaque entities, keeping the SDK's field names.
type Recognizer struct {
	client Client
	mode   Mode
	opts   Options
}

// Ensure Recognizer implements port.Recognizer.
var _ port.Recognizer = (*Recognizer)(nil)

func NewRecognizer(client Client, mode Mode, opts Options) *Recognizer {
	return &Recognizer{client: client, mode: mode, opts: opts}
}

// Recognize returns celebrity faces or labels in the order Rekognition reports them.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]domain.Entity, error) {
	img := &types.Image{Bytes: image}

	switch r.mode {
	case ModeLabels:
		input := &rekognition.DetectLabelsInput{Image: img}
		if r.opts.MaxLabels > 0 {
			input.MaxLabels = aws.Int32(r.opts.MaxLabels)
		}
		if r.opts.MinConfidence > 0 {
			input.MinConfidence = aws.Float32(r.opts.MinConfidence)
		}

		out, err := r.client.DetectLabels(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("rekognition detect labels: %w", err)
		}
		return toEntities(out.Labels)
	default:
		out, err := r.client.RecognizeCelebrities(ctx, &rekognition.RecognizeCelebritiesInput{Image: img})
		if err != nil {
			return nil, fmt.Errorf("rekognition recognize celebrities: %w", err)
		}
		return toEntities(out.CelebrityFaces)
	}
}

// toEntities converts SDK result structs into generic entities.
func toEntities[T any](results []T) ([]domain.Entity, error) {
	entities := make([]domain.Entity, 0, len(results))
	for i := range results {
		raw, err := json.Marshal(results[i])
		if err != nil {
			return nil, fmt.Errorf("encode result %d: %w", i, err)
		}

		var entity domain.Entity
		if err := json.Unmarshal(raw, &entity); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}
		entities = append(entities, domain.Entity(pruneNulls(map[string]any(entity))))
	}
	return entities, nil
}

// pruneNulls drops fields the SDK left unset so stored records only carry
// what the service returned.
func pruneNulls(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			m[k] = pruneNulls(val)
		case []any:
			for i, item := range val {
				if nested, ok := item.(map[string]any); ok {
					val[i] = pruneNulls(nested)
				}
			}
		}
	}
	return m
}
