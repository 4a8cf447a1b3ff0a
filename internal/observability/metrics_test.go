package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
	require.NotNil(t, CVPipelineOutcomes())
	require.NotNil(t, SSEClientsActive())
}

func TestMetricsHandlerServesScrape(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	ScreeningSubmissions().WithLabelValues("accepted").Inc()
	CVPipelineOutcomes().WithLabelValues("succeeded").Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "stagehub_screening_submissions_total")
	require.Contains(t, string(body), "stagehub_cv_pipeline_outcomes_total")
}
