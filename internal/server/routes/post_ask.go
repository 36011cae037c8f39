package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/server/middleware"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/query"
)

// AskHandler answers a user question. Downstream failures degrade the
// response body; only a malformed request produces a non-200 status. An empty
// question is still processed: extraction finds no entities and the engine
// routes it to the general-knowledge branch.
func AskHandler(c echo.Context) error {
	type askBody struct {
		Question string              `json:"question"`
		Filters  map[string][]string `json:"filters"`
	}

	body := new(askBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	resp := app.Engine.Answer(c.Request().Context(), query.Query{
		Question: body.Question,
		Filters:  body.Filters,
	})

	return c.JSON(http.StatusOK, resp)
}
