package storage

import (
	"context"
	"errors"

	"github.com/mgmcet/admission-portal/internal/models"
)

// ErrCounterMissing is returned when the application counter row has not
// been provisioned. Provisioning is an out-of-band admin action; allocation
// never creates the counter itself.
var ErrCounterMissing = errors.New("application counter does not exist")

// ErrApplicationNotFound is returned when no record exists for an app id.
var ErrApplicationNotFound = errors.New("application not found")

// Repository defines the interface for admission persistence
type Repository interface {
	// AllocateApplication assigns the next application number and persists
	// the record under it, as one atomic unit. On success app.AppID and
	// app.SubmittedAt are set and the new id is returned.
	AllocateApplication(ctx context.Context, app *models.Application) (string, error)

	// GetApplication retrieves a record by its application id.
	GetApplication(ctx context.Context, appID string) (*models.Application, error)

	// ListApplications returns records ordered by submission time ascending.
	ListApplications(ctx context.Context, limit, offset int) ([]*models.Application, error)

	// CounterValue reads the current counter value without advancing it.
	CounterValue(ctx context.Context) (int64, error)

	// Admin clients
	GetAdminByAPIKey(ctx context.Context, apiKey string) (*models.AdminClient, error)
	UpdateAdminLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
