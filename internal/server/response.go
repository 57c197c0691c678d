package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/textlab/textlab/internal/auth"
	"github.com/textlab/textlab/internal/document"
)

// Error codes carried in the error envelope.
const (
	codeInvalidInput       = "invalid_input"
	codeInvalidID          = "invalid_id"
	codeUnauthorized       = "unauthorized"
	codeInvalidCredentials = "invalid_credentials"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeConflict           = "conflict"
	codeRateLimited        = "rate_limited"
	codeInternal           = "internal_error"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		Error: apiError{Message: message, Code: code},
	})
}

// fail maps a service error to a status code and writes the envelope.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, document.ErrForbidden):
		respondError(c, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, document.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidRole):
		respondError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(c, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, codeUnauthorized, err.Error())
	default:
		s.log.Error("request failed", "method", c.Request.Method, "route", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
}
