package rest

import (
	"github.com/gofiber/fiber/v2"

	domainSummary "github.com/AzielCF/az-digest/domains/summary"
	"github.com/AzielCF/az-digest/pkg/utils"
	"github.com/AzielCF/az-digest/validations"
)

type Summary struct {
	Service domainSummary.ISummaryUsecase
}

func InitRestSummary(app fiber.Router, service domainSummary.ISummaryUsecase) Summary {
	handler := Summary{Service: service}

	app.Post("/api/summary", handler.Summarize)

	return handler
}

func (h *Summary) Summarize(c *fiber.Ctx) error {
	var request domainSummary.SummarizeRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateSummarizeRequest(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	role := request.Role
	if role == "" {
		role = domainSummary.RoleArticle
	}

	text, ok := h.Service.Summarize(c.UserContext(), request.Text, role)
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(utils.ResponseData{
			Status:  502,
			Code:    "SUMMARY_UNAVAILABLE",
			Message: "Could not produce a summary",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Summary generated",
		Results: fiber.Map{
			"role":    role,
			"summary": text,
		},
	})
}
