package models

import "time"

// Artifact locates the finished video of a presentation. Exactly one of
// Path and RedirectURL is set.
type Artifact struct {
	PresentationID string `json:"presentation_id"`
	Path           string `json:"-"`
	RedirectURL    string `json:"url,omitempty"`
}

type ExportRecord struct {
	JobID          string    `json:"job_id" db:"job_id"`
	PresentationID string    `json:"presentation_id" db:"presentation_id"`
	Status         JobStatus `json:"status" db:"status"`
	TotalSlides    int       `json:"total_slides" db:"total_slides"`
	Error          string    `json:"error,omitempty" db:"error"`
	VideoURL       string    `json:"video_url,omitempty" db:"video_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	CompletedAt    time.Time `json:"completed_at" db:"completed_at"`
}

type ExportHistory struct {
	PresentationID string          `json:"presentation_id"`
	TotalCount     int             `json:"total_count"`
	TotalPages     int             `json:"total_pages"`
	Page           int             `json:"page"`
	Size           int             `json:"size"`
	HasMore        bool            `json:"has_more"`
	Exports        []*ExportRecord `json:"exports"`
}
