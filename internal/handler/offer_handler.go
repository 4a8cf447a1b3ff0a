package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// OfferHandler serves offers and their screening tests.
type OfferHandler struct {
	service service.OfferService
	logger  zerolog.Logger
}

// NewOfferHandler constructs the handler.
func NewOfferHandler(service service.OfferService, logger zerolog.Logger) *OfferHandler {
	return &OfferHandler{
		service: service,
		logger:  logger.With().Str("component", "offer_handler").Logger(),
	}
}

// Register binds the offer routes on an authenticated router.
func (h *OfferHandler) Register(router fiber.Router) {
	router.Get("/offers", middleware.WithAuth(h.list, anyUser))
	router.Post("/offers", middleware.WithAuth(h.create, companyOnly))
	router.Get("/offers/:id", middleware.WithAuth(h.get, anyUser))
	router.Patch("/offers/:id", middleware.WithAuth(h.update, companyOnly))
	router.Patch("/offers/:id/status", middleware.WithAuth(h.changeStatus, companyOnly))
	router.Delete("/offers/:id", middleware.WithAuth(h.delete, companyOnly))
	router.Put("/offers/:id/test", middleware.WithAuth(h.replaceTest, companyOnly))
	router.Get("/offers/:id/test", middleware.WithAuth(h.ownerTest, companyOnly))
	router.Get("/companies/me/offers", middleware.WithAuth(h.listMine, companyOnly))
}

func (h *OfferHandler) list(c *fiber.Ctx) error {
	var req dto.OfferListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	offers, err := h.service.ListPublic(requestContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, offers.Items, "offers retrieved", offers.Pagination)
}

func (h *OfferHandler) listMine(c *fiber.Ctx) error {
	var req dto.ListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	offers, err := h.service.ListMine(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, offers.Items, "offers retrieved", offers.Pagination)
}

func (h *OfferHandler) create(c *fiber.Ctx) error {
	var req dto.OfferCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	offer, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "offer created", offer)
}

func (h *OfferHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	offer, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "offer retrieved", offer)
}

func (h *OfferHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.OfferUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	offer, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "offer updated", offer)
}

func (h *OfferHandler) changeStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.OfferStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	offer, err := h.service.ChangeStatus(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "offer status updated", offer)
}

func (h *OfferHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OfferHandler) replaceTest(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.ScreeningTestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	test, err := h.service.ReplaceTest(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "screening test saved", test)
}

func (h *OfferHandler) ownerTest(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	test, err := h.service.OwnerTest(requestContext(c), principal(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "screening test retrieved", test)
}
