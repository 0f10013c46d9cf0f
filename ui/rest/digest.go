package rest

import (
	"github.com/gofiber/fiber/v2"

	domainFeed "github.com/AzielCF/az-digest/domains/feed"
	"github.com/AzielCF/az-digest/pkg/utils"
	"github.com/AzielCF/az-digest/usecase"
	"github.com/AzielCF/az-digest/validations"
)

type Digest struct {
	Service *usecase.DigestService
}

func InitRestDigest(app fiber.Router, service *usecase.DigestService) Digest {
	handler := Digest{Service: service}

	app.Post("/api/digest/run", handler.Run)
	app.Get("/api/digest/stats", handler.Stats)

	return handler
}

// Run lanza una pasada sobre los feeds configurados. El dispatch es
// sincrónico, el procesamiento de cada item corre en el pool.
func (h *Digest) Run(c *fiber.Ctx) error {
	var request domainFeed.RunRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateRunRequest(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	var report domainFeed.RunReport
	switch request.Kind {
	case domainFeed.KindYoutube:
		report, err = h.Service.RunYoutube(c.UserContext())
	default:
		report, err = h.Service.RunNews(c.UserContext())
	}
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Digest run dispatched",
		Results: report,
	})
}

func (h *Digest) Stats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Worker pool stats",
		Results: h.Service.Stats(),
	})
}
