package observability_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/observability"
)

func TestCollectorsAreShared(t *testing.T) {
	require.Same(t, observability.ProblemsGenerated(), observability.ProblemsGenerated())
	require.Same(t, observability.SamplerAttempts(), observability.SamplerAttempts())
}

func TestMetricsHandler(t *testing.T) {
	observability.ToolRequests().WithLabelValues("generate_function", "ok").Inc()

	app := fiber.New()
	app.Get("/metrics", observability.MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "examgen_tool_requests_total")
}
