// internal/controller/response.go
package controller

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(v); err != nil {
        log.Println("Failed to encode response:", err)
    }
}

// StatusFor maps a service error to the HTTP status the dashboard expects.
func StatusFor(err error) int {
    switch {
    case appErrors.IsNotFound(err):
        return http.StatusNotFound
    case errors.Is(err, appErrors.ErrPostLocked),
        errors.Is(err, appErrors.ErrVersionConflict),
        errors.Is(err, appErrors.ErrNoEdit):
        return http.StatusConflict
    case errors.Is(err, appErrors.ErrInvalidStatus),
        errors.Is(err, appErrors.ErrTooManyMedia),
        errors.Is(err, appErrors.ErrEmptyPatch),
        errors.Is(err, appErrors.ErrInvalidInput):
        return http.StatusUnprocessableEntity
    default:
        return http.StatusInternalServerError
    }
}

// WriteError replies with {success:false, error}. Internal errors are logged
// and their text is not exposed.
func WriteError(w http.ResponseWriter, err error) {
    status := StatusFor(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        log.Println("❌ request failed:", err)
        msg = "internal server error"
    }
    writeJSON(w, status, map[string]interface{}{
        "success": false,
        "error":   msg,
    })
}

// BadRequest replies 400 with {success:false, error}.
func BadRequest(w http.ResponseWriter, msg string) {
    writeJSON(w, http.StatusBadRequest, map[string]interface{}{
        "success": false,
        "error":   msg,
    })
}

// idParam reads the {id} URL parameter. It writes a 400 and returns false when
// the parameter is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
    id, err := strconv.Atoi(chi.URLParam(r, "id"))
    if err != nil || id < 1 {
        BadRequest(w, "invalid id")
        return 0, false
    }
    return id, true
}
