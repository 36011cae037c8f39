package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/server/middleware"
)

type healthComponents struct {
	NERModel                   bool `json:"ner_model"`
	RAGSystem                  bool `json:"rag_system"`
	KnowledgeGraph             bool `json:"knowledge_graph"`
	GenerationAPIKeyConfigured bool `json:"generation_api_key_configured"`
}

type healthResponse struct {
	Status     string           `json:"status"`
	Timestamp  int64            `json:"timestamp"`
	Components healthComponents `json:"components"`
}

func HealthHandler(c echo.Context) error {
	components := c.(*middleware.AppContext).App.Components

	return c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Components: healthComponents{
			NERModel:                   components.NERModel,
			RAGSystem:                  components.RAGSystem,
			KnowledgeGraph:             components.KnowledgeGraph,
			GenerationAPIKeyConfigured: components.GenerationKey,
		},
	})
}
