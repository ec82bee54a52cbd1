package handlers

import (
	"errors"

	"linecheck/internal/app"
	"linecheck/internal/logger"
	"linecheck/internal/models"
	"linecheck/internal/repositories"
	"linecheck/internal/services"
	"linecheck/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type ChecklistHandler struct {
	Handler
	repo     repositories.ChecklistRepository
	reset    *services.ResetController
	toggle   *services.ToggleService
	boundary *utils.DayBoundary
}

type ToggleRequest struct {
	TaskID string `json:"taskId" validate:"required"`
	Notes  string `json:"notes"  validate:"max=500"`
}

func NewChecklistHandler(app app.App, router fiber.Router) *ChecklistHandler {
	log := logger.New("handlers").File("checklist_handler")
	return &ChecklistHandler{
		repo:     app.ChecklistRepo,
		reset:    app.ResetController,
		toggle:   app.ToggleService,
		boundary: app.Boundary,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ChecklistHandler) Register() {
	checklists := h.router.Group("/checklists")
	checklists.Get("/:type", h.getChecklist)
	checklists.Post("/:type/toggle", h.toggleTask)
}

// getChecklist returns the merged task view for one shift type. The boundary
// check runs first so a request after midnight never serves yesterday's
// completion state.
func (h *ChecklistHandler) getChecklist(c *fiber.Ctx) error {
	log := h.log.Function("getChecklist")

	shift := models.ShiftType(c.Params("type"))
	if !shift.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown shift type",
		})
	}

	ctx := c.UserContext()

	if _, err := h.reset.CheckNow(ctx); err != nil {
		log.Warn("day boundary check failed, serving current state", "error", err)
	}

	date := h.boundary.Today()
	tasks, err := h.repo.MergedTasks(ctx, shift, date)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"shiftType": shift,
		"date":      date,
		"tasks":     tasks,
	})
}

func (h *ChecklistHandler) toggleTask(c *fiber.Ctx) error {
	shift := models.ShiftType(c.Params("type"))
	if !shift.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown shift type",
		})
	}

	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.toggle.ToggleTask(c.UserContext(), shift, req.TaskID, req.Notes)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(result)
}

// mapError translates service errors to status codes. Notifications were
// already emitted by the service layer; the handler only shapes the response.
func (h *ChecklistHandler) mapError(c *fiber.Ctx, err error) error {
	var gatewayErr *services.GatewayError

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "task not found in current checklist",
		})
	case errors.Is(err, services.ErrToggleInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a toggle for this task is already in flight",
		})
	case errors.As(err, &gatewayErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "upstream operations API unavailable",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
