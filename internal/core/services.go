package core

import "github.com/rs/zerolog"

type Services struct {
	APIKey   *APIKeyService
	Image    *ImageService
	Analysis *AnalysisService
	Review   *ReviewService
}

func NewServices(db DB, logger zerolog.Logger) *Services {
	return &Services{
		APIKey:   NewAPIKeyService(db, logger),
		Image:    NewImageService(db),
		Analysis: NewAnalysisService(db),
		Review:   NewReviewService(db),
	}
}
