package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-digest/core/config"
	"github.com/AzielCF/az-digest/domains/summary"
	"github.com/AzielCF/az-digest/pkg/textnorm"
)

type summaryService struct {
	generator summary.TextGenerator
	ai        config.AIConfig
}

// NewSummaryService builds the summarizer chain on top of a text generator.
func NewSummaryService(generator summary.TextGenerator, ai config.AIConfig) summary.ISummaryUsecase {
	return &summaryService{generator: generator, ai: ai}
}

// Summarize runs the degrade-once chain: one attempt on the preferred
// calling convention, one on the conservative fallback, no retries in
// between. Any failure collapses to (_, false).
func (s *summaryService) Summarize(ctx context.Context, text string, role summary.Role) (string, bool) {
	if strings.TrimSpace(text) == "" || s.generator == nil {
		return "", false
	}

	roleCfg := s.ai.RoleFor(role)
	req := summary.GenerateRequest{
		Instruction:     roleInstruction(role),
		Input:           "Article:\n" + textnorm.Truncate(text, role.InputBudget()),
		Model:           roleCfg.Model,
		MaxOutputTokens: roleCfg.MaxOutputTokens,
		Temperature:     roleCfg.Temperature,
	}

	out, err := s.generator.GenerateText(ctx, req)
	if err == nil && strings.TrimSpace(out) != "" {
		return strings.TrimSpace(out), true
	}
	if err != nil {
		logrus.Errorf("[SUMMARY] primary generation failed (role %s): %v", role, err)
	}

	req.Model = roleCfg.FallbackModel
	out, err = s.generator.GenerateTextFallback(ctx, req)
	if err != nil {
		logrus.Errorf("[SUMMARY] fallback generation failed (role %s): %v", role, err)
		return "", false
	}
	if strings.TrimSpace(out) == "" {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// roleInstruction returns the system instruction for each summarizer role.
func roleInstruction(role summary.Role) string {
	switch role {
	case summary.RoleAudioBrief:
		return "Eres un locutor de noticias. Recibiras el texto de una noticia y " +
			"redactaras un brief hablado de dos o tres frases, en espanol, listo " +
			"para ser leido en voz alta. Texto plano, sin markdown, sin preambulos."
	case summary.RoleClassification:
		return "Eres un clasificador de noticias. Recibiras el texto de un articulo " +
			"y responderas con una sola palabra: 'yes' si trata sobre politica, " +
			"economia o actualidad institucional, 'no' en caso contrario. " +
			"No agregues nada mas."
	default:
		return "Eres un analista politico y economico con un estilo directo. " +
			"Recibiras el texto completo de una noticia. Tu trabajo es analizarla y " +
			"redactar un resumen breve en espanol, destacando las implicaciones " +
			"politicas y economicas mas relevantes. " +
			"No te limites a describir los hechos, ofrece una lectura critica " +
			"con un lenguaje directo y sin rodeos."
	}
}
