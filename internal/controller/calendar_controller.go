package controller

import (
	"time"

	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICalendarController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type calendarController struct {
	calendarService service.ICalendarService
}

func NewCalendarController(calendarService service.ICalendarService) ICalendarController {
	return &calendarController{calendarService: calendarService}
}

func (c *calendarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calendar/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *calendarController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateCalendarEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.calendarService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Event created", res))
}

func (c *calendarController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var from, to *time.Time
	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return serverutils.NewValidationError("invalid from timestamp")
		}
		from = &t
	}
	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return serverutils.NewValidationError("invalid to timestamp")
		}
		to = &t
	}

	res, err := c.calendarService.List(ctx.Context(), userId, from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Events", res))
}

func (c *calendarController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid event id")
	}

	var req dto.UpdateCalendarEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.calendarService.Update(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Event updated", res))
}

func (c *calendarController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewValidationError("invalid event id")
	}

	if err := c.calendarService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Event deleted", nil))
}
