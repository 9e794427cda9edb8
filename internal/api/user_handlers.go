package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stacksapp/stacks-server/internal/domain"
	"github.com/stacksapp/stacks-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users",
		Summary:     "Create account",
		Description: "Creates a new account. Usernames are globally unique. No password is stored; login uses the server-wide shared password.",
		Tags:        []string{"Users"},
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Current account",
		Description: "Returns the account the request's token resolves to, or null for anonymous requests",
		Tags:        []string{"Users"},
	}, s.handleMe)
}

// CreateUserInput wraps the account creation request for Huma.
type CreateUserInput struct {
	Body service.CreateUserRequest
}

// UserOutput wraps an account for Huma.
type UserOutput struct {
	Body domain.User
}

// MeResponse carries the resolved account, null when anonymous.
type MeResponse struct {
	User *domain.User `json:"user" doc:"Resolved account, null for anonymous requests"`
}

// MeOutput wraps the me response for Huma.
type MeOutput struct {
	Body MeResponse
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Auth.CreateUser(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	return &MeOutput{Body: MeResponse{User: CurrentUser(ctx)}}, nil
}
