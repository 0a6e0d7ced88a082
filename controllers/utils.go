package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"paletteapi/apperrors"
	"paletteapi/models"
	"paletteapi/services"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func currentUser(c echo.Context) models.UserAccount {
	return c.Get("currentUser").(models.UserAccount)
}

// statusOf maps an error to the response status and the message the
// client sees.
func statusOf(err error) (int, string) {
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, apperrors.ErrInsufficientFeatureData):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrFeatureExtraction):
		return http.StatusBadGateway, apperrors.ErrFeatureExtraction.Error()
	case errors.Is(err, apperrors.ErrUpstream):
		return http.StatusBadGateway, apperrors.ErrUpstream.Error()
	case errors.Is(err, apperrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, apperrors.ErrMissingRequiredField), errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func respondError(c echo.Context, err error) error {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}
	return c.JSON(status, echo.Map{"error": message})
}

// validationError turns validator output into the domain errors. A missing
// required field wins over any other failure.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	var invalid []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s", apperrors.ErrMissingRequiredField, fe.Field())
		}
		invalid = append(invalid, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(invalid, ", "))
}

// readImage reads the multipart "image" field and checks it is a supported
// picture no larger than maxBytes.
func readImage(c echo.Context, maxBytes int64) ([]byte, string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, "", fmt.Errorf("%w: image", apperrors.ErrMissingRequiredField)
	}
	if header.Size > maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes, limit %d", apperrors.ErrFileTooLarge, header.Size, maxBytes)
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	mimeType, err := services.ValidateImage(data, maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}
