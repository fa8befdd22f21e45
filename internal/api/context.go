package api

import (
	"context"

	"github.com/mgmcet/admission-portal/internal/models"
)

type contextKey string

const adminContextKey contextKey = "admin_client"

// AdminFromContext extracts the authenticated AdminClient from context
func AdminFromContext(ctx context.Context) *models.AdminClient {
	client, ok := ctx.Value(adminContextKey).(*models.AdminClient)
	if !ok {
		return nil
	}
	return client
}

// ContextWithAdmin adds an AdminClient to context
func ContextWithAdmin(ctx context.Context, client *models.AdminClient) context.Context {
	return context.WithValue(ctx, adminContextKey, client)
}
