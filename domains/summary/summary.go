package summary

import "context"

type Role string

const (
	RoleArticle        Role = "article"
	RoleAudioBrief     Role = "audio_brief"
	RoleClassification Role = "classification"
)

// InputBudget returns the per-role input cap in characters.
func (r Role) InputBudget() int {
	switch r {
	case RoleAudioBrief:
		return 4000
	case RoleClassification:
		return 8000
	default:
		return 6000
	}
}

// SummarizeRequest is the REST payload for an ad-hoc summarization.
type SummarizeRequest struct {
	Text string `json:"text"`
	Role Role   `json:"role"`
}

// GenerateRequest is a single summarization attempt against a provider.
type GenerateRequest struct {
	Instruction     string
	Input           string
	Model           string
	MaxOutputTokens int
	Temperature     float64
}

// TextGenerator is the provider boundary for the degrade-once chain:
// GenerateText is the preferred calling convention, GenerateTextFallback the
// conservative one. Both return the extracted text or an error; an empty
// string with nil error counts as no result.
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
	GenerateTextFallback(ctx context.Context, req GenerateRequest) (string, error)
}

// VideoSummarizer produces a short brief for a video URL.
type VideoSummarizer interface {
	SummarizeVideo(ctx context.Context, videoURL string) (string, bool)
}

type ISummaryUsecase interface {
	// Summarize returns the summary text and whether anything was produced.
	// Callers cannot distinguish provider failure from empty output.
	Summarize(ctx context.Context, text string, role Role) (string, bool)
}
