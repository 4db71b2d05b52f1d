package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/export"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// exportListLimit bounds how many leads a single spreadsheet export carries.
const exportListLimit = 10000

// LeadsHandler manages staff lead endpoints.
type LeadsHandler struct {
	leads       *service.LeadService
	assignments *service.AssignmentService
	reports     *service.ReportService
	staff       *service.StaffService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService, assignmentService *service.AssignmentService, reportService *service.ReportService, staffService *service.StaffService) *LeadsHandler {
	return &LeadsHandler{
		leads:       leadService,
		assignments: assignmentService,
		reports:     reportService,
		staff:       staffService,
	}
}

// ListLeads GET /staff/leads.
func (h *LeadsHandler) ListLeads(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	leads, err := h.leads.List(c.Context(), caller, parseLeadFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, dto.NewLeadResponse(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateLead POST /staff/leads.
func (h *LeadsHandler) CreateLead(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	lead, err := h.leads.Create(c.Context(), caller, service.LeadCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      req.Source,
		Course:      req.Course,
		Institution: req.Institution,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// GetLead GET /staff/leads/:id.
func (h *LeadsHandler) GetLead(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	lead, err := h.leads.Get(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// UpdateLead PUT /staff/leads/:id.
func (h *LeadsHandler) UpdateLead(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	lead, err := h.leads.Update(c.Context(), caller, c.Params("id"), service.LeadUpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      req.Source,
		Course:      req.Course,
		Institution: req.Institution,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// UpdateStatus PATCH /staff/leads/:id/status.
func (h *LeadsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	lead, err := h.leads.SetStatus(c.Context(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// DeleteLead DELETE /staff/leads/:id.
func (h *LeadsHandler) DeleteLead(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	if err := h.leads.Delete(c.Context(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AssignLeads POST /staff/leads/assign.
func (h *LeadsHandler) AssignLeads(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.AssignLeadsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.assignments.Assign(c.Context(), caller, req.LeadIDs, req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignLeadsResponse{
		Assigned: result.Assigned,
		Failed:   result.Failed,
	}})
}

// ExportLeads GET /staff/leads/export. Renders the caller's visible leads as
// an .xlsx workbook; the list is access-filtered before it reaches the
// export adapter.
func (h *LeadsHandler) ExportLeads(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	filter := parseLeadFilter(c)
	filter.Limit = exportListLimit
	filter.Offset = 0
	leads, err := h.leads.List(c.Context(), caller, filter)
	if err != nil {
		return err
	}

	names := map[string]string{}
	for i := range leads {
		if leads[i].AssignedTo == nil {
			continue
		}
		id := *leads[i].AssignedTo
		if _, ok := names[id]; ok {
			continue
		}
		if account, err := h.staff.GetByID(c.Context(), id); err == nil {
			names[id] = account.Name
		}
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="leads.xlsx"`)
	if err := export.WriteLeadsWorkbook(c.Response().BodyWriter(), leads, names); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ReportSummary GET /staff/reports/summary.
func (h *LeadsHandler) ReportSummary(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	summary, err := h.reports.Summary(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func staffCaller(c *fiber.Ctx) (*domain.StaffAccount, error) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return caller, nil
}

func parseLeadFilter(c *fiber.Ctx) service.LeadListFilter {
	filter := service.LeadListFilter{}
	if statusStr := c.Query("status"); statusStr != "" && !strings.EqualFold(statusStr, "all") {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.LeadStatus(strings.TrimSpace(part)))
		}
	}
	if source := c.Query("source"); source != "" {
		filter.Source = &source
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if unassigned := c.Query("unassigned"); unassigned != "" {
		filter.Unassigned, _ = strconv.ParseBool(unassigned)
	}
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)
	return filter
}
