package models

import "time"

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// IsActive reports whether a job in state s blocks new exports of the same presentation.
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

type ExportPhase string

const (
	PhaseQueued               ExportPhase = "queued"
	PhaseCheckingDependencies ExportPhase = "checking_dependencies"
	PhaseParsing              ExportPhase = "parsing"
	PhaseSynthesizingAudio    ExportPhase = "synthesizing_audio"
	PhaseRenderingSlides      ExportPhase = "rendering_slides"
	PhaseBuildingSegments     ExportPhase = "building_segments"
	PhaseConcatenating        ExportPhase = "concatenating"
	PhaseFinished             ExportPhase = "finished"
)

type ExportJob struct {
	JobID           string      `json:"job_id" db:"job_id" redis:"job_id"`
	PresentationID  string      `json:"presentation_id" db:"presentation_id" redis:"presentation_id"`
	Status          JobStatus   `json:"status" db:"status" redis:"status"`
	Progress        int         `json:"progress" db:"progress" redis:"progress"`
	Phase           ExportPhase `json:"phase" db:"phase" redis:"phase"`
	Stage           string      `json:"stage" db:"stage" redis:"stage"`
	TotalSlides     int         `json:"total_slides" db:"total_slides" redis:"total_slides"`
	ProcessedSlides int         `json:"processed_slides" db:"processed_slides" redis:"processed_slides"`
	Error           string      `json:"error,omitempty" db:"error" redis:"error"`
	VideoURL        string      `json:"video_url,omitempty" db:"video_url" redis:"video_url"`
	CancelRequested bool        `json:"cancel_requested" db:"cancel_requested" redis:"cancel_requested"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at" redis:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty" db:"started_at" redis:"started_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty" db:"completed_at" redis:"completed_at"`
}

// ExportParams carries the per-job pipeline inputs. It is kept next to the job
// record and never returned by the polling API.
type ExportParams struct {
	Content         string
	Theme           string
	Voice           string
	Speed           float64
	DefaultDuration float64
}

type ExportInput struct {
	PresentationID  string  `json:"presentation_id" validate:"required,presentationid"`
	Content         string  `json:"content" validate:"max=2097152"`
	Theme           string  `json:"theme" validate:"omitempty,lte=128"`
	Voice           string  `json:"voice" validate:"omitempty,lte=128"`
	Speed           float64 `json:"speed" validate:"omitempty,gte=0.5,lte=2"`
	DefaultDuration float64 `json:"default_duration" validate:"omitempty,gte=1,lte=30"`
}
