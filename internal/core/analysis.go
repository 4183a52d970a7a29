package core

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/edvin/skinsight/internal/model"
	"github.com/edvin/skinsight/internal/platform"
)

// analysisModelVersion tags mock results so they can be told apart from a
// real model's output later.
const analysisModelVersion = "v1.0.0-mock"

// AnalysisService generates and persists skin analysis results. The analysis
// itself is mocked: random skin type, one to three distinct issues, and a
// confidence score in [0.75, 0.98].
type AnalysisService struct {
	db DB
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(db DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// Analyze produces a new analysis result for the image and persists it.
// It fails with ErrNotFound if the image does not exist.
func (s *AnalysisService) Analyze(ctx context.Context, imageID string) (*model.ImageAnalysis, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM images WHERE id = $1 AND is_deleted = FALSE)`, imageID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check image %s: %w", imageID, err)
	}
	if !exists {
		return nil, fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}

	analysis, err := mockAnalysis(imageID)
	if err != nil {
		return nil, fmt.Errorf("generate analysis: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO image_analysis (id, image_id, skin_type, issues, confidence_score, model_version, is_deleted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		analysis.ID, analysis.ImageID, analysis.SkinType, analysis.Issues,
		analysis.Confidence, analysis.ModelVersion, analysis.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}
	return analysis, nil
}

// LatestByImage returns the most recent analysis for an image.
func (s *AnalysisService) LatestByImage(ctx context.Context, imageID string) (*model.ImageAnalysis, error) {
	var a model.ImageAnalysis
	err := s.db.QueryRow(ctx,
		`SELECT id, image_id, skin_type, issues, confidence_score, model_version, created_at
		 FROM image_analysis
		 WHERE image_id = $1 AND is_deleted = FALSE
		 ORDER BY created_at DESC LIMIT 1`, imageID,
	).Scan(&a.ID, &a.ImageID, &a.SkinType, &a.Issues, &a.Confidence, &a.ModelVersion, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("analysis for image %s: %w", imageID, ErrNotFound)
		}
		return nil, fmt.Errorf("get analysis for image %s: %w", imageID, err)
	}
	return &a, nil
}

func mockAnalysis(imageID string) (*model.ImageAnalysis, error) {
	skinType, err := randomChoice(model.SkinTypes)
	if err != nil {
		return nil, err
	}

	numIssues, err := randomInt(3)
	if err != nil {
		return nil, err
	}
	issues, err := randomSample(model.SkinIssues, numIssues+1)
	if err != nil {
		return nil, err
	}

	// Two-decimal confidence in [0.75, 0.98].
	n, err := randomInt(24)
	if err != nil {
		return nil, err
	}
	confidence := 0.75 + float64(n)/100

	return &model.ImageAnalysis{
		ID:           platform.NewID(),
		ImageID:      imageID,
		SkinType:     skinType,
		Issues:       issues,
		Confidence:   confidence,
		ModelVersion: analysisModelVersion,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}

func randomChoice(options []string) (string, error) {
	i, err := randomInt(len(options))
	if err != nil {
		return "", err
	}
	return options[i], nil
}

// randomSample picks n distinct elements without reordering the source.
func randomSample(options []string, n int) ([]string, error) {
	pool := append([]string(nil), options...)
	if n > len(pool) {
		n = len(pool)
	}
	sample := make([]string, 0, n)
	for len(sample) < n {
		i, err := randomInt(len(pool))
		if err != nil {
			return nil, err
		}
		sample = append(sample, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return sample, nil
}
