package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-categorias/pkg/requestid"
)

// RequestLogger asigna un request id (o respeta el X-Request-ID entrante), lo propaga en el
// contexto de usuario para las llamadas salientes y registra cada petición al terminar.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(requestid.Header)
		if id == "" {
			id = requestid.New()
		}
		c.Set(requestid.Header, id)
		c.SetUserContext(requestid.NewContext(c.UserContext(), id))

		err := c.Next()
		if err != nil {
			// el ErrorHandler de Fiber escribe la respuesta; aquí solo fijamos el status para el log
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("company_id", GetCompanyID(c)).
			Msg("http request")
		return nil
	}
}
