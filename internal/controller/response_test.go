package controller_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/postcampaign-backend/internal/controller"
	appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"post not found":     {appErrors.NewPostNotFound(3), http.StatusNotFound},
		"campaign not found": {fmt.Errorf("load: %w", appErrors.NewCampaignNotFound(1)), http.StatusNotFound},
		"locked":             {appErrors.ErrPostLocked, http.StatusConflict},
		"version":            {appErrors.ErrVersionConflict, http.StatusConflict},
		"invalid status":     {fmt.Errorf("%w: %q", appErrors.ErrInvalidStatus, "X"), http.StatusUnprocessableEntity},
		"too many media":     {appErrors.ErrTooManyMedia, http.StatusUnprocessableEntity},
		"empty patch":        {appErrors.ErrEmptyPatch, http.StatusUnprocessableEntity},
		"invalid input":      {appErrors.ErrInvalidInput, http.StatusUnprocessableEntity},
		"no edit":            {fmt.Errorf("%w: post 4", appErrors.ErrNoEdit), http.StatusConflict},
		"other":              {errors.New("connection reset"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, controller.StatusFor(tc.err))
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	controller.WriteError(rr, errors.New("pq: password authentication failed"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestWriteError_ExposesClientErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	controller.WriteError(rr, appErrors.ErrPostLocked)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, appErrors.ErrPostLocked.Error(), body["error"])
}
