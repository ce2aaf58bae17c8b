package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("pgRepo.Find: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"validation", NewValidationError("email", "Email is invalid"), http.StatusBadRequest},
		{"generator syntax", ErrGeneratorSyntax, http.StatusInternalServerError},
		{"generator execution", ErrGeneratorExecution, http.StatusInternalServerError},
		{"unclassified", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}
