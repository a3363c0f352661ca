package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/validation"
)

type createRequest struct {
	Question string   `json:"question" validate:"required,min=1,max=500"`
	TreeID   uint     `json:"treeId" validate:"required,gte=1"`
	Tags     []string `json:"tags" validate:"max=2"`
	Internal string   `validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(createRequest{Question: "What is a tree?", TreeID: 1, Internal: "x"})
	assert.NoError(t, err)
}

func TestValidator_ValidateUsesJSONNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(createRequest{Tags: []string{"a", "b", "c"}})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Equal(t, "is required", appErr.Details["question"])
	assert.Equal(t, "is required", appErr.Details["treeId"])
	assert.Equal(t, "must contain at most 2 items", appErr.Details["tags"])
	assert.Equal(t, "is required", appErr.Details["Internal"])
}

func TestValidator_DetailsNilWhenValid(t *testing.T) {
	v := validation.New()

	assert.Nil(t, v.Details(createRequest{Question: "q", TreeID: 3, Internal: "x"}))
	assert.Equal(t, "must not exceed 500 characters",
		v.Details(createRequest{Question: string(make([]byte, 501)), TreeID: 3, Internal: "x"})["question"])
}
