package controller

import (
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/apperror"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	CreateMessage(ctx *fiber.Ctx) error
}

type roomController struct {
	service service.IRoomService
}

func NewRoomController(service service.IRoomService) IRoomController {
	return &roomController{service: service}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware) // ✅ PROTECTED
	h.Get("/rooms", c.GetAll)
	h.Post("/rooms", c.Create)
	h.Get("/rooms/:uuid/messages", c.GetMessages)
	h.Post("/rooms/:uuid/messages", c.CreateMessage)
}

func (c *roomController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string) // Extract User ID
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all rooms", res))
}

func (c *roomController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create room", res))
}

func (c *roomController) GetMessages(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	roomUuid, err := uuid.Parse(ctx.Params("uuid"))
	if err != nil {
		return &apperror.ValidationError{Reason: "invalid room identifier"}
	}

	res, err := c.service.GetMessages(ctx.Context(), userId, roomUuid)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get room messages", res))
}

func (c *roomController) CreateMessage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	roomUuid, err := uuid.Parse(ctx.Params("uuid"))
	if err != nil {
		return &apperror.ValidationError{Reason: "invalid room identifier"}
	}

	var req dto.CreateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateMessage(ctx.Context(), userId, roomUuid, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create room message", res))
}
