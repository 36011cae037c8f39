package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/FaiyazAwsaf/space-biology-engine/pkg/query"
)

// Components records which collaborators loaded at startup. A false flag
// degrades the matching pipeline step instead of failing requests.
type Components struct {
	NERModel       bool
	RAGSystem      bool
	KnowledgeGraph bool
	GenerationKey  bool
}

type AppUser struct {
	Subject string
	Role    string
}

type App struct {
	Engine     *query.Engine
	Key        *keyfunc.Keyfunc
	Queue      *amqp091.Channel
	Components Components
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
