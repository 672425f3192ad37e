package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// requestError marks a malformed request parameter.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest
	case domain.IsLoadError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoDataset):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSourceDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "invalid request",
	http.StatusUnprocessableEntity: "could not read the file as CSV or a spreadsheet",
	http.StatusConflict:            "dataset not loaded; upload a file or load sample data first",
	http.StatusNotFound:            "not found",
	http.StatusServiceUnavailable:  "dataset source is not configured",
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message, ok := statusMessages[status]
	if !ok {
		message = "internal error"
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
