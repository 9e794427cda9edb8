package api

import (
	"github.com/stacksapp/stacks-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
}
