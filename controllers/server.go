package controllers

import (
	"net/http"
	"reflect"
	"strings"

	"paletteapi/config"
	"paletteapi/models"
	"paletteapi/repository"
	"paletteapi/services"
	"paletteapi/tasks"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return validationError(err)
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("seasonality", models.ValidateSeasonality)
	v.RegisterValidation("platform", models.ValidatePlatform)
	return &CustomValidator{validator: v}
}

func SetupServer(
	cfg *config.Config,
	repo repository.Repository,
	style *services.StyleService,
	queue tasks.Enqueuer,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = respondError(c, err)
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__repo", repo)
			c.Set("__asynqclient", queue)
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api", echojwt.JWT([]byte(cfg.JWTSecret)), UserMiddleware)

	profileController := ProfileController{Style: style, MaxUploadBytes: cfg.Uploads.MaxBytes()}
	profileController.ProfileRoutes(api.Group("/profile"))

	wardrobeController := WardrobeController{Style: style, MaxUploadBytes: cfg.Uploads.MaxBytes()}
	wardrobeController.WardrobeRoutes(api.Group("/wardrobe"))

	stylistController := StylistController{Style: style}
	stylistController.OutfitRoutes(api.Group("/outfits"))
	stylistController.StylistRoutes(api.Group("/stylist"))

	return e
}
