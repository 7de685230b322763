package api

import (
	"github.com/starford/brewstock/internal/brewfather"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/report"
)

// DashboardResponse is the full dashboard with the error of the last refresh,
// if it failed after an earlier success.
type DashboardResponse struct {
	*dashboard.Snapshot
	LastError string `json:"lastError,omitempty" example:"brewfather request failed"`
}

// TableResponse is a single inventory table.
type TableResponse = report.Table

// BatchResponse is the detail of one batch.
type BatchResponse = brewfather.BatchDetail

// CredentialsRequest is the request body for saving credentials.
type CredentialsRequest struct {
	UserID string `json:"userId" example:"aBcD1234" validate:"required"`
	APIKey string `json:"apiKey" example:"xyz..." validate:"required"`
}

// CredentialsResponse reports whether credentials are configured. The API key is masked.
type CredentialsResponse = dashboard.CredentialsStatus

// CredentialsSaveResponse is returned after credentials are saved. RefreshError
// is set when the saved pair could not be used to load the dashboard.
type CredentialsSaveResponse struct {
	Credentials  CredentialsResponse `json:"credentials" validate:"required"`
	RefreshError string              `json:"refreshError,omitempty" example:"brewfather rejected the credentials"`
}
