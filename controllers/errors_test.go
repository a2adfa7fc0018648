package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&services.ValidationError{Fields: map[string]string{"title": "is required"}}, http.StatusBadRequest},
		{fmt.Errorf("book %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: nope", services.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("email %w", services.ErrConflict), http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			w := httptest.NewRecorder()
			handleServiceError(restful.NewResponse(w), zap.New(core), tt.err)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, 1, logs.Len())
				assert.NotContains(t, w.Body.String(), "disk on fire")
			} else {
				assert.Zero(t, logs.Len())
			}
		})
	}
}
