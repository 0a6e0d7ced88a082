package controllers

import (
	"net/http"

	"paletteapi/models"
	"paletteapi/services"
	"paletteapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type WardrobeUploadIn struct {
	Category    string `form:"category" validate:"omitempty,category"`
	Subcategory string `form:"subcategory" validate:"omitempty,max=100"`
	ColorHex    string `form:"color_hex" validate:"omitempty,max=16"`
}

type WardrobeListIn struct {
	Season string `query:"season" validate:"omitempty,seasonality"`
}

type WardrobeListResponse struct {
	Items []services.WardrobeEntry `json:"items"`
}

type WardrobeController struct {
	Style          *services.StyleService
	MaxUploadBytes int64
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.GET("", controller.ListWardrobe)
	g.POST("", controller.UploadItem)
	g.DELETE("/:id", controller.DeleteItem)
}

func (controller *WardrobeController) ListWardrobe(c echo.Context) error {
	var req WardrobeListIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	entries, err := controller.Style.ListWardrobe(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if req.Season != "" {
		season, _ := models.ParseSeasonality(req.Season)
		filtered := []services.WardrobeEntry{}
		for _, entry := range entries {
			if entry.HasSeason(season) || entry.HasSeason(models.AllSeason) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	return c.JSON(http.StatusOK, WardrobeListResponse{Items: entries})
}

func (controller *WardrobeController) UploadItem(c echo.Context) error {
	var req WardrobeUploadIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	user := currentUser(c)
	image, mimeType, err := readImage(c, controller.MaxUploadBytes)
	if err != nil {
		return respondError(c, err)
	}

	item, err := controller.Style.UploadWardrobeItem(c.Request().Context(), user.ID, image, mimeType, services.UploadHint{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		ColorHex:    req.ColorHex,
	})
	if err != nil {
		return respondError(c, err)
	}

	// tagging only enriches the item; it is already stored and graded
	if queue, ok := c.Get("__asynqclient").(tasks.Enqueuer); ok && queue != nil {
		if err := tasks.EnqueueTagging(queue, item.ID); err != nil {
			log.Error().Err(err).Uint("item_id", item.ID).Msg("tagging not scheduled")
			sentry.CaptureException(err)
		}
	}
	return c.JSON(http.StatusCreated, item)
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	var id uint
	if err := echo.PathParamsBinder(c).Uint("id", &id).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid item id"})
	}
	if err := controller.Style.DeleteWardrobeItem(c.Request().Context(), currentUser(c).ID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
