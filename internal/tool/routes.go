package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/njchilds90/examgen/internal/observability"
)

// MaxBodyBytes caps the size of a tool request.
const MaxBodyBytes = 1 << 20

// RequestTimeout bounds a tool call, including any wait for the tangent
// scanner to finish warming.
const RequestTimeout = 10 * time.Second

// Register mounts the tool endpoints:
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus scrape endpoint
func Register(app *fiber.App, h *Handler) {
	app.Post("/tool", h.serveTool)
	app.Get("/schema", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(SpecJSON())
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	app.Get("/metrics", observability.MetricsHandler())
}

func (h *Handler) serveTool(c *fiber.Ctx) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()

	var req ToolRequest
	if err := dec.Decode(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if dec.More() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON: trailing data"})
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), RequestTimeout)
	defer cancel()
	return c.JSON(h.Handle(ctx, req))
}
