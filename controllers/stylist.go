package controllers

import (
	"net/http"

	"paletteapi/models"
	"paletteapi/services"

	"github.com/labstack/echo/v4"
)

type OutfitIn struct {
	Occasion string `json:"occasion" validate:"required,max=100"`
	Weather  string `json:"weather" validate:"max=100"`
	Vibe     string `json:"vibe" validate:"max=100"`
}

type ChatIn struct {
	Message        string `json:"message" validate:"required,max=4000"`
	ConversationID string `json:"conversation_id" validate:"omitempty,max=64"`
}

type StylistController struct {
	Style *services.StyleService
}

func (controller *StylistController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfit)
}

func (controller *StylistController) StylistRoutes(g *echo.Group) {
	g.POST("/chat", controller.Chat)
}

func (controller *StylistController) GenerateOutfit(c echo.Context) error {
	var req OutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	outfit, err := controller.Style.GenerateOutfit(c.Request().Context(), currentUser(c).ID, models.OutfitRequest{
		Occasion: req.Occasion,
		Weather:  req.Weather,
		Vibe:     req.Vibe,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, outfit)
}

func (controller *StylistController) Chat(c echo.Context) error {
	var req ChatIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	reply, err := controller.Style.Chat(c.Request().Context(), currentUser(c).ID, req.Message, req.ConversationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}
