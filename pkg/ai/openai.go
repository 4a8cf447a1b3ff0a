package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stagehub",
		Subsystem: "ai",
		Name:      "summarization_duration_seconds",
		Help:      "Duration of CV summarization requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagehub",
		Subsystem: "ai",
		Name:      "summarization_failures_total",
		Help:      "Number of CV summarization requests that fell back or could not be parsed",
	}, []string{"model", "reason"})
)

const chatCompletionsSuffix = "/chat/completions"

// OpenAIConfig defines configuration options for the chat-completion summarizer.
type OpenAIConfig struct {
	// Endpoint is the full chat-completion URL; the client base URL is derived from it.
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// OpenAISummarizer implements Summarizer against an OpenAI compatible chat completion API.
type OpenAISummarizer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAISummarizer builds a summarizer. A missing API key is accepted and
// makes every call return the fallback summary.
func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if base := baseURL(cfg.Endpoint); base != "" {
		config.BaseURL = base
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	config.HTTPClient = httpClient

	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/stagehub-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "cv_summarizer").Logger(),
	}
}

// Summarize sends one chat completion request and parses the structured reply.
func (s *OpenAISummarizer) Summarize(parent context.Context, text string) CVSummary {
	ctx, span := s.tracer.Start(parent, "openai.summarize", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.Int("input.length", len(text)),
	))
	defer span.End()

	if strings.TrimSpace(s.cfg.APIKey) == "" {
		s.logger.Warn().Msg("ai api key missing, using fallback summary")
		aiFailures.WithLabelValues(s.cfg.Model, "missing_key").Inc()
		span.SetStatus(codes.Error, "missing api key")
		return fallback()
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text),
			},
		},
	})
	aiDuration.WithLabelValues(s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn().Err(err).Msg("summarization request failed")
		aiFailures.WithLabelValues(s.cfg.Model, "request").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fallback()
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from summarization endpoint")
		s.logger.Warn().Err(err).Msg("summarization request failed")
		aiFailures.WithLabelValues(s.cfg.Model, "empty").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fallback()
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	summary, err := ParseSummary(content)
	if err != nil {
		s.logger.Warn().Err(err).Msg("summarization reply is not structured, keeping raw text")
		aiFailures.WithLabelValues(s.cfg.Model, "parse").Inc()
		span.RecordError(err)
	}

	return summary
}

func baseURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return strings.TrimSuffix(endpoint, chatCompletionsSuffix)
}

func buildPrompt(text string) string {
	var builder strings.Builder
	builder.WriteString("Analyse the following CV and answer with a JSON object only, using this shape:\n")
	builder.WriteString(`{"summary": "three to five sentences", "skills": {"technical": ["..."], "organizational": ["..."]}}`)
	builder.WriteString("\nTechnical skills are tools, languages and methods. Organizational skills are soft and management skills.\n\n")
	builder.WriteString("## CV\n")
	builder.WriteString(text)
	return builder.String()
}
