package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Domains are the research areas the indexed corpus covers.
var domains = []string{"bone", "immune", "neuro", "plants", "microbiome", "methods"}

func DomainsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"domains": domains})
}
