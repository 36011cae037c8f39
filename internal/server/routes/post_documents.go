package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/queue"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/server/middleware"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
)

// IndexDocumentHandler enqueues a document for the batch indexer. The worker
// chunks, embeds, and folds it into the knowledge graph asynchronously; the
// correlation id ties the job to the worker's logs.
func IndexDocumentHandler(c echo.Context) error {
	type indexBody struct {
		DocumentID string `json:"document_id" validate:"required"`
		Text       string `json:"text" validate:"required"`
	}

	body := new(indexBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Indexing is not configured"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	msg, err := json.Marshal(queue.IndexDocumentMsg{
		CorrelationID: correlationID,
		DocumentID:    body.DocumentID,
		Text:          body.Text,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.IndexQueue, msg); err != nil {
		logger.Error("Failed to publish index job", "document_id", body.DocumentID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message":        "Document queued for indexing",
		"correlation_id": correlationID,
	})
}
