package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/orders"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

type OrderItemRequest struct {
	MenuItemID          uint   `json:"menuItemId" binding:"required"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreateOrderRequest struct {
	RestaurantID        uint               `json:"restaurantId" binding:"required"`
	TableID             *uint              `json:"tableId"`
	RoomID              *uint              `json:"roomId"`
	OrderType           string             `json:"orderType"`
	CustomerInfo        CustomerInfo       `json:"customerInfo"`
	Items               []OrderItemRequest `json:"items"`
	SpecialInstructions string             `json:"specialInstructions"`
}

type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type UpdateItemRequest struct {
	Status    string  `json:"status" binding:"required"`
	ChefNotes *string `json:"chef_notes"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type TransferRequest struct {
	KitchenID uint `json:"kitchenId" binding:"required"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderListResponse struct {
	Orders any   `json:"orders"`
	Total  int64 `json:"total"`
	Page   int   `json:"page"`
	Limit  int   `json:"limit"`
}

func bind(ctx *gin.Context, body any) error {
	if err := ctx.ShouldBindJSON(body); err != nil {
		return apperrors.Validation("", "Invalid request: %v", err)
	}
	return nil
}

func itemInputs(items []OrderItemRequest) []orders.ItemInput {
	out := make([]orders.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemInput{
			MenuItemID:          it.MenuItemID,
			Quantity:            it.Quantity,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	return out
}

func (h *Handler) CreateOrder(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	var body CreateOrderRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	order, err := h.orders.CreateOrder(ctx.Request.Context(), actor, orders.CreateOrderInput{
		RestaurantID:        body.RestaurantID,
		TableID:             body.TableID,
		RoomID:              body.RoomID,
		OrderType:           types.OrderType(body.OrderType),
		CustomerName:        body.CustomerInfo.Name,
		CustomerPhone:       body.CustomerInfo.Phone,
		SpecialInstructions: body.SpecialInstructions,
		Items:               itemInputs(body.Items),
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{"order": order})
}

func (h *Handler) ListOrders(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	var f orders.ListFilter
	var err error

	if f.Page, err = utils.QueryInt(ctx, "page"); err != nil {
		h.fail(ctx, err)
		return
	}
	if f.Limit, err = utils.QueryInt(ctx, "limit"); err != nil {
		h.fail(ctx, err)
		return
	}
	restaurantID, err := utils.QueryInt(ctx, "restaurantId")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	tableID, err := utils.QueryInt(ctx, "tableId")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	f.RestaurantID = uint(restaurantID)
	f.TableID = uint(tableID)

	if s := ctx.Query("status"); s != "" {
		status, err := types.ParseOrderStatus(s)
		if err != nil {
			h.fail(ctx, apperrors.Validation("", "%v", err))
			return
		}
		f.Status = status
	}

	list, total, err := h.orders.ListOrders(ctx.Request.Context(), actor, f)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = orders.DefaultPageSize
	}
	if limit > orders.MaxPageSize {
		limit = orders.MaxPageSize
	}

	utils.Respond(ctx, http.StatusOK, OrderListResponse{Orders: list, Total: total, Page: page, Limit: limit})
}

func (h *Handler) GetOrder(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx.Request.Context(), actor, ids[0])
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"order": order})
}

func (h *Handler) AddItems(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id")
	if !ok {
		return
	}

	var body AddItemsRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	order, err := h.orders.SubmitRound(ctx.Request.Context(), actor, ids[0], itemInputs(body.Items))
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{"order": order})
}

func (h *Handler) UpdateItemStatus(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id", "itemId")
	if !ok {
		return
	}

	var body UpdateItemRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	item, err := h.orders.UpdateItemStatus(ctx.Request.Context(), actor, ids[0], ids[1], orders.ItemStatusInput{
		Status:    body.Status,
		ChefNotes: body.ChefNotes,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) CancelItem(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id", "itemId")
	if !ok {
		return
	}

	var body ReasonRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	item, err := h.orders.CancelItem(ctx.Request.Context(), actor, ids[0], ids[1], body.Reason)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) TransferItem(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id", "itemId")
	if !ok {
		return
	}

	var body TransferRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	item, err := h.orders.TransferItem(ctx.Request.Context(), actor, ids[0], ids[1], body.KitchenID)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) UpdateOrderStatus(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id")
	if !ok {
		return
	}

	var body OrderStatusRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(ctx.Request.Context(), actor, ids[0], body.Status)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"order": order})
}
