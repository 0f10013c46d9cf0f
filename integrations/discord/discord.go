package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/sirupsen/logrus"
)

const httpTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

// ColorBlue es el color de embed que usamos para las noticias.
const ColorBlue = 0x3498db

type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Publisher publica embeds en un webhook de Discord.
type Publisher struct {
	webhookURL string
}

func NewPublisher(webhookURL string) *Publisher {
	return &Publisher{webhookURL: webhookURL}
}

// PublishEmbed sends a single embed as a JSON webhook execution.
func (p *Publisher) PublishEmbed(ctx context.Context, embed Embed) error {
	if p.webhookURL == "" {
		return fmt.Errorf("discord: no webhook URL configured")
	}

	body, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.execute(req)
}

// PublishEmbedWithImage uploads the image alongside the embed and points the
// embed's image at the attachment, so Discord renders it inline.
func (p *Publisher) PublishEmbedWithImage(ctx context.Context, embed Embed, image []byte, filename string) error {
	if p.webhookURL == "" {
		return fmt.Errorf("discord: no webhook URL configured")
	}
	if len(image) == 0 {
		return p.PublishEmbed(ctx, embed)
	}
	if filename == "" {
		filename = "image.jpg"
	}

	embed.Image = &EmbedImage{URL: "attachment://" + filename}

	payload, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("payload_json", string(payload))

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[0]"; filename="%s"`, filename))
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return p.execute(req)
}

func (p *Publisher) execute(req *http.Request) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook failed: status=%d body=%s", resp.StatusCode, string(b))
	}

	logrus.Debugf("[DISCORD] Webhook delivered (status %d)", resp.StatusCode)
	return nil
}
