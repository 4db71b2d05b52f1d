package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// PublicHandler serves the unauthenticated lead submission endpoint.
type PublicHandler struct {
	leads *service.LeadService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(leadService *service.LeadService) *PublicHandler {
	return &PublicHandler{leads: leadService}
}

// SubmitLead POST /public/leads.
func (h *PublicHandler) SubmitLead(c *fiber.Ctx) error {
	var req dto.PublicLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.leads.CreatePublic(c.Context(), service.LeadCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      req.Source,
		Course:      req.Course,
		Institution: req.Institution,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}
