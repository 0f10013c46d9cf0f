package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultTimeout = 60 * time.Second

const videoPrompt = "You are an expert video summarizer. Summarize this video for a " +
	"Discord chat. Be concise (2-3 sentences) and capture the video's " +
	"main points and conclusion. Do not add any preamble like 'This video discusses...'"

// Client genera briefs de video via la API de Gemini.
type Client struct {
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-flash-latest"
	}
	return &Client{apiKey: apiKey, model: model}
}

// SummarizeVideo produces a short brief for a video URL. The returned bool
// reports whether there is text worth publishing; quota and availability
// failures still yield a user-facing message, matching how briefs are
// surfaced downstream.
func (c *Client) SummarizeVideo(ctx context.Context, videoURL string) (string, bool) {
	if strings.TrimSpace(videoURL) == "" || c.apiKey == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logrus.WithError(err).Error("[GEMINI] Failed to initialize client")
		return "", false
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: videoPrompt},
				{FileData: &genai.FileData{FileURI: videoURL}},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		logrus.WithError(err).Errorf("[GEMINI] Video summary failed for %s", videoURL)
		return briefFromError(err)
	}
	if result == nil {
		return "", false
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// briefFromError convierte fallos de la API en avisos publicables. Cuota
// agotada y videos inaccesibles producen texto igualmente; cualquier otro
// error no genera brief.
func briefFromError(err error) (string, bool) {
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return "AI summary failed: The API is busy. Please try again later.", true
	}
	if strings.Contains(msg, "400") {
		return "AI summary failed: The video might be private, deleted, or otherwise unavailable.", true
	}
	return "", false
}
