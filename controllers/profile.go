package controllers

import (
	"errors"
	"net/http"

	"paletteapi/apperrors"
	"paletteapi/models"
	"paletteapi/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type PushTokenIn struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,platform"`
}

type ProfileIn struct {
	FullName         *string `json:"full_name" validate:"omitempty,max=100"`
	Age              *int    `json:"age" validate:"omitempty,min=13,max=120"`
	GenderExpression *string `json:"gender_expression" validate:"omitempty,max=50"`
	StylePreferences *string `json:"style_preferences" validate:"omitempty,max=1000"`
}

type ProfileController struct {
	Style          *services.StyleService
	MaxUploadBytes int64
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("", controller.GetProfile)
	g.PUT("", controller.UpdateProfile)
	g.POST("/analyze-photo", controller.AnalyzePhoto)
	g.GET("/analysis", controller.GetAnalysis)
	g.POST("/push-token", controller.RegisterPushToken)
}

func (controller *ProfileController) GetProfile(c echo.Context) error {
	profile, err := controller.Style.GetProfile(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (controller *ProfileController) UpdateProfile(c echo.Context) error {
	var req ProfileIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	profile, err := controller.Style.UpdateProfile(c.Request().Context(), currentUser(c).ID, models.ProfileUpdate{
		FullName:         req.FullName,
		Age:              req.Age,
		GenderExpression: req.GenderExpression,
		StylePreferences: req.StylePreferences,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (controller *ProfileController) AnalyzePhoto(c echo.Context) error {
	user := currentUser(c)
	image, mimeType, err := readImage(c, controller.MaxUploadBytes)
	if err != nil {
		return respondError(c, err)
	}
	analysis, err := controller.Style.AnalyzePhoto(c.Request().Context(), user.ID, image, mimeType)
	if err != nil {
		return respondError(c, err)
	}
	log.Info().
		Uint("user_id", user.ID).
		Str("season", analysis.SeasonSubtype).
		Uint("version", analysis.Version).
		Msg("profile analyzed")
	return c.JSON(http.StatusCreated, analysis)
}

func (controller *ProfileController) GetAnalysis(c echo.Context) error {
	analysis, err := controller.Style.GetAnalysis(c.Request().Context(), currentUser(c).ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis not found"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (controller *ProfileController) RegisterPushToken(c echo.Context) error {
	var req PushTokenIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	err := controller.Style.RegisterPushToken(c.Request().Context(), currentUser(c).ID, models.Platform(req.Platform), req.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "registered"})
}
