package rest

import (
	"github.com/gofiber/fiber/v2"

	domainGating "github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/pkg/utils"
	"github.com/AzielCF/az-digest/validations"
)

type Gating struct {
	Service domainGating.IGatingUsecase
}

func InitRestGating(app fiber.Router, service domainGating.IGatingUsecase) Gating {
	handler := Gating{Service: service}

	app.Post("/api/gating/decide", handler.Decide)

	return handler
}

func (h *Gating) Decide(c *fiber.Ctx) error {
	var request domainGating.DecideRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateDecideRequest(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	decision := h.Service.Decide(c.UserContext(), request.Text)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Gating decision computed",
		Results: decision,
	})
}
