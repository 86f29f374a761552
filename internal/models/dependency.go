package models

import "time"

type DependencyStatus string

const (
	DependencyStatusPass DependencyStatus = "pass"
	DependencyStatusFail DependencyStatus = "fail"
)

type DependencyItem struct {
	Name    string           `json:"name"`
	Status  DependencyStatus `json:"status"`
	Message string           `json:"message"`
}

type DependencyReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	HasFailures bool             `json:"has_failures"`
	Items       []DependencyItem `json:"items"`
}
