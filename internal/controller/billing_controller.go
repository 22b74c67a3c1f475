// FILE: internal/controller/billing_controller.go
package controller

import (
	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
	Portal(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	Await(ctx *fiber.Ctx) error
}

type billingController struct {
	billingService service.IBillingService
}

func NewBillingController(billingService service.IBillingService) IBillingController {
	return &billingController{billingService: billingService}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing/v1")
	h.Post("/webhook", c.Webhook)
	h.Get("/plans", c.GetPlans)

	// Protected Routes
	h.Post("/checkout", serverutils.JwtMiddleware, c.Checkout)
	h.Post("/sync", serverutils.JwtMiddleware, c.Sync)
	h.Post("/portal", serverutils.JwtMiddleware, c.Portal)
	h.Get("/status", serverutils.JwtMiddleware, c.GetStatus)
	h.Get("/await", serverutils.JwtMiddleware, c.Await)
}

func (c *billingController) GetPlans(ctx *fiber.Ctx) error {
	res := c.billingService.GetPlans(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Plans", res))
}

func (c *billingController) Checkout(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.billingService.CreateCheckoutSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout session created", res))
}

// Webhook receives provider deliveries. The raw body goes to the service
// untouched because the signature covers the exact bytes on the wire.
func (c *billingController) Webhook(ctx *fiber.Ctx) error {
	payload := ctx.Body()
	sigHeader := ctx.Get("Stripe-Signature")

	if err := c.billingService.HandleWebhook(ctx.Context(), payload, sigHeader); err != nil {
		// 400 makes the provider redeliver later.
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"received": true})
}

func (c *billingController) Sync(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.billingService.SyncFromCheckoutSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription synced", res))
}

func (c *billingController) Portal(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.billingService.CreatePortalSession(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Portal session created", res))
}

func (c *billingController) GetStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.billingService.GetSubscriptionStatus(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}

func (c *billingController) Await(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.billingService.AwaitAccess(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Access state", res))
}
