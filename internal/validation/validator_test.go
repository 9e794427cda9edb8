package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/stacksapp/stacks-server/internal/errors"
)

type addBookInput struct {
	Title     string `json:"title" validate:"required,min=2"`
	Author    string `json:"author" validate:"required,min=4"`
	Published int    `json:"published" validate:"required"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(addBookInput{
		Title:     "Refactoring",
		Author:    "Martin Fowler",
		Published: 1999,
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(addBookInput{Title: "x", Author: "abc"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 2 characters", fields["title"])
	assert.Equal(t, "must be at least 4 characters", fields["author"])
	assert.Equal(t, "is required", fields["published"])
}

func TestValidate_UsesJSONTagNames(t *testing.T) {
	v := New()

	type input struct {
		FavoriteGenre string `json:"favoriteGenre" validate:"required"`
	}

	err := v.Validate(input{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	fields := domainErr.Details.(map[string]string)
	_, hasJSONName := fields["favoriteGenre"]
	assert.True(t, hasJSONName)
}
