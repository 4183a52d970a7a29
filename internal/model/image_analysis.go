package model

import "time"

// Skin types reported by the analysis model.
const (
	SkinTypeOily        = "Oily"
	SkinTypeDry         = "Dry"
	SkinTypeCombination = "Combination"
	SkinTypeNormal      = "Normal"
)

// SkinTypes lists every skin type the analysis model can report.
var SkinTypes = []string{SkinTypeOily, SkinTypeDry, SkinTypeCombination, SkinTypeNormal}

// Skin issues reported by the analysis model.
const (
	SkinIssueAcne              = "Acne"
	SkinIssueHyperpigmentation = "Hyperpigmentation"
	SkinIssueWrinkles          = "Wrinkles"
	SkinIssueRedness           = "Redness"
)

// SkinIssues lists every issue the analysis model can report.
var SkinIssues = []string{SkinIssueAcne, SkinIssueHyperpigmentation, SkinIssueWrinkles, SkinIssueRedness}

// ImageAnalysis is a single analysis result for an image. An image can have
// several results; readers want the latest.
type ImageAnalysis struct {
	ID           string    `json:"id"`
	ImageID      string    `json:"image_id"`
	SkinType     string    `json:"skin_type"`
	Issues       []string  `json:"issues"`
	Confidence   float64   `json:"confidence_score"`
	ModelVersion string    `json:"model_version"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
