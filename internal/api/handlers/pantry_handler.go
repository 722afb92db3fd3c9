package handlers

import (
	"smart-kitchen/domain"
	"smart-kitchen/internal/api/presenters"
	"smart-kitchen/pkg/pantry"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PantryHandler interface {
		AddItem(c *fiber.Ctx) error
		AddItems(c *fiber.Ctx) error
		GetItems(c *fiber.Ctx) error
		GetItem(c *fiber.Ctx) error
		UpdateItem(c *fiber.Ctx) error
		DeleteItem(c *fiber.Ctx) error
		ClearPantry(c *fiber.Ctx) error
		ConsumeItem(c *fiber.Ctx) error
		ScanReceipt(c *fiber.Ctx) error
		ConfirmReceipt(c *fiber.Ctx) error
	}

	pantryHandler struct {
		pantryService pantry.PantryService
		validator     *validator.Validate
	}
)

func NewPantryHandler(pantryService pantry.PantryService, validator *validator.Validate) PantryHandler {
	return &pantryHandler{
		pantryService: pantryService,
		validator:     validator,
	}
}

func (h *pantryHandler) AddItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.AddPantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddPantryItem, err)
	}

	res, err := h.pantryService.AddItem(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedAddPantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddPantryItem)
}

func (h *pantryHandler) AddItems(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.AddPantryItemsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddPantryItem, err)
	}

	res, err := h.pantryService.AddItems(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedAddPantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddPantryItems)
}

func (h *pantryHandler) GetItems(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := parsePagination(c)

	items, count, err := h.pantryService.ListItems(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetPantryItems, err)
	}

	return presenters.SuccessResponse(c, paginated(items, page, limit, count), fiber.StatusOK, domain.MessageSuccessGetPantryItems)
}

func (h *pantryHandler) GetItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	item, err := h.pantryService.GetItem(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetPantryItems, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusOK, domain.MessageSuccessGetPantryItems)
}

func (h *pantryHandler) UpdateItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdatePantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePantryItem, err)
	}

	res, err := h.pantryService.UpdateItem(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdatePantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePantryItem)
}

func (h *pantryHandler) DeleteItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.pantryService.DeleteItem(c.Context(), c.Params("id"), userID); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDeletePantryItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeletePantryItem)
}

func (h *pantryHandler) ClearPantry(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	removed, err := h.pantryService.ClearPantry(c.Context(), userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedClearPantry, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"removed": removed}, fiber.StatusOK, domain.MessageSuccessClearPantry)
}

func (h *pantryHandler) ConsumeItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ConsumePantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConsumePantryItem, err)
	}

	res, err := h.pantryService.ConsumeItem(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedConsumePantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConsumePantryItem)
}

func (h *pantryHandler) ScanReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ScanReceiptRequest)

	file, err := c.FormFile("receipt_image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	req.ReceiptImage = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedScanReceipt, err)
	}

	res, err := h.pantryService.ScanReceipt(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedScanReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessScanReceipt)
}

func (h *pantryHandler) ConfirmReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ConfirmReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmReceipt, err)
	}

	res, err := h.pantryService.ConfirmReceipt(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedConfirmReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessConfirmReceipt)
}
