package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/domains/summary"
)

const defaultTimeout = 60 * time.Second

// Client is the adapter for the OpenAI API. GenerateText goes through the
// Responses API, GenerateTextFallback through Chat Completions.
type Client struct {
	apiKey  string
	timeout time.Duration
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{apiKey: apiKey, timeout: timeout}
}

func (c *Client) api() openai.Client {
	return openai.NewClient(
		option.WithAPIKey(c.apiKey),
	)
}

// GenerateText calls the Responses API. Extraction is layered: the
// consolidated output text first, otherwise the first non-empty text part
// found scanning output items in order.
func (c *Client) GenerateText(ctx context.Context, req summary.GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(req.Model),
		Instructions: openai.String(req.Instruction),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Input),
		},
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	client := c.api()
	resp, err := client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}

	if text := strings.TrimSpace(resp.OutputText()); text != "" {
		return text, nil
	}
	for _, item := range resp.Output {
		for _, part := range item.Content {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", nil
}

// GenerateTextFallback calls Chat Completions with conservative params.
func (c *Client) GenerateTextFallback(ctx context.Context, req summary.GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instruction),
			openai.UserMessage(req.Input),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	client := c.api()
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// RelevanceClassifier turns a text generator into a yes/no relevance gate.
type RelevanceClassifier struct {
	generator summary.TextGenerator
	model     string
}

func NewRelevanceClassifier(generator summary.TextGenerator, model string) *RelevanceClassifier {
	return &RelevanceClassifier{generator: generator, model: model}
}

// Classify asks the model whether an article is relevant. Any transport or
// provider failure maps to an indeterminate verdict; only a clean yes/no
// answer produces a definitive one.
func (r *RelevanceClassifier) Classify(ctx context.Context, text string) gating.Verdict {
	if r.generator == nil || strings.TrimSpace(text) == "" {
		return gating.VerdictIndeterminate
	}

	out, err := r.generator.GenerateText(ctx, summary.GenerateRequest{
		Instruction:     roleClassificationInstruction,
		Input:           "Article:\n" + text,
		Model:           r.model,
		MaxOutputTokens: 16,
	})
	if err != nil {
		logrus.WithError(err).Warn("[GATING] Model relevance check failed")
		return gating.VerdictIndeterminate
	}

	switch answer := strings.ToLower(strings.TrimSpace(out)); {
	case strings.HasPrefix(answer, "yes"):
		return gating.VerdictAllow
	case strings.HasPrefix(answer, "no"):
		return gating.VerdictDeny
	default:
		logrus.Warnf("[GATING] Model relevance check returned unexpected answer %q", out)
		return gating.VerdictIndeterminate
	}
}

const roleClassificationInstruction = "Eres un clasificador de noticias. Recibiras el texto de un articulo " +
	"y responderas con una sola palabra: 'yes' si trata sobre politica, " +
	"economia o actualidad institucional, 'no' en caso contrario. " +
	"No agregues nada mas."
