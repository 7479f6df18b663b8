package services

import (
	"context"

	"github.com/oarepo/depositd/deposit"
)

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"depositd" doc:"The name of the service API"`
	Version       string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
}

// a response for a metadata validation request (POST); on failure it
// enumerates every failing field, not just the first
type ValidationResultResponse struct {
	// an HTTP status code (200 for valid metadata, 400 otherwise)
	Status int `json:"status"`
	// a descriptive message
	Message string `json:"message"`
	// all field-level failures, with fully-qualified dotted field paths
	Errors []deposit.FieldError `json:"errors,omitempty"`
	// the normalized metadata, when validation succeeded
	Metadata *deposit.Metadata `json:"metadata,omitempty"`
}

// a response for an expired-embargo query (GET)
type ExpiredEmbargoesResponse struct {
	// identifiers of records whose embargo period has expired
	Ids []string `json:"ids"`
}

// DepositService defines the interface for our deposit metadata service.
type DepositService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
