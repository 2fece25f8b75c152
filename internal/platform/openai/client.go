package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

// Client is the LLM and embedding client used by the rest of the backend.
type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)

	// GenerateJSON asks for a strict json_schema response and returns the
	// extracted JSON document.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema *jsonschema.Definition) (json.RawMessage, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	EmbedModel  string
	Timeout     time.Duration
	Temperature float32
}

type client struct {
	log         *logger.Logger
	api         *goopenai.Client
	model       string
	embedModel  string
	temperature float32
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	clientCfg := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = goopenai.GPT4oMini
	}
	embed := strings.TrimSpace(cfg.EmbedModel)
	if embed == "" {
		embed = string(goopenai.SmallEmbedding3)
	}

	return &client{
		log:         log.With("client", "OpenAIClient"),
		api:         goopenai.NewClientWithConfig(clientCfg),
		model:       model,
		embedModel:  embed,
		temperature: cfg.Temperature,
	}, nil
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(c.embedModel),
		Input: clean,
	})
	if err != nil {
		observability.Current().ObserveLLMRequest(c.embedModel, "embed", "error", time.Since(start), 0, 0)
		return nil, classifyError(err, c.embedModel)
	}
	observability.Current().ObserveLLMRequest(c.embedModel, "embed", "ok", time.Since(start), resp.Usage.PromptTokens, 0)

	out := make([][]float32, len(clean))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		if idx < len(out) {
			out[idx] = d.Embedding
		}
	}
	for i := range out {
		if len(out[i]) == 0 {
			return nil, &Error{
				Kind:    KindMalformed,
				Model:   c.embedModel,
				Message: fmt.Sprintf("embeddings missing index %d: requested=%d returned=%d", i, len(clean), len(resp.Data)),
			}
		}
	}
	return out, nil
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema *jsonschema.Definition) (json.RawMessage, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		observability.Current().ObserveLLMRequest(c.model, schemaName, "error", time.Since(start), 0, 0)
		c.log.Warn("LLM request failed", "schema", schemaName, "elapsed", time.Since(start), "error", err)
		return nil, classifyError(err, c.model)
	}
	observability.Current().ObserveLLMRequest(c.model, schemaName, "ok", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindMalformed, Model: c.model, Message: "no choices in response"}
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, &Error{Kind: KindRefused, Model: c.model, Message: msg.Refusal}
	}
	raw, err := ExtractJSON(msg.Content)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Model: c.model, Message: "parse model JSON", Cause: err}
	}
	c.log.Debug("LLM request completed",
		"schema", schemaName,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed", time.Since(start),
	)
	return json.RawMessage(raw), nil
}
