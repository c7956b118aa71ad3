package dto

import "github.com/noah-isme/syntheses-api/internal/models"

// UploadMetadata is submitted alongside every upload shape.
type UploadMetadata struct {
	Course      string      `form:"cours" json:"cours" validate:"required"`
	Title       string      `form:"titre" json:"titre" validate:"required"`
	Author      string      `form:"nomDiscord" json:"nomDiscord" validate:"required"`
	Description string      `form:"description" json:"description"`
	SchoolYear  string      `form:"anneeScolaire" json:"anneeScolaire" validate:"required"`
	Year        OptionalInt `form:"annee" json:"annee" validate:"omitempty,min=1,max=99"`
	UploadType  string      `form:"uploadType" json:"uploadType"`
}

// VideoSubmission registers an external video link.
type VideoSubmission struct {
	UploadMetadata
	VideoURL string `form:"videoUrl" json:"videoUrl" validate:"required"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Message string        `json:"message"`
	Record  models.Record `json:"record"`
}
