package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/orders"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/tables"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

type AcceptRequest struct {
	EstimatedMinutes *int   `json:"estimatedMinutes"`
	Notes            string `json:"notes"`
}

type BindKitchenRequest struct {
	KitchenID uint `json:"kitchenId" binding:"required"`
}

type CreateTableRequest struct {
	TableNumber string `json:"tableNumber" binding:"required"`
	Capacity    int    `json:"capacity"`
}

// AcceptOrder acknowledges a kitchen's share of an order. The restaurantId
// path segment names the kitchen.
func (h *Handler) AcceptOrder(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "restaurantId", "id")
	if !ok {
		return
	}

	var body AcceptRequest
	if ctx.Request.ContentLength != 0 {
		if err := bind(ctx, &body); err != nil {
			h.fail(ctx, err)
			return
		}
	}

	ack, err := h.orders.AcceptOrder(ctx.Request.Context(), actor, ids[0], ids[1], orders.AcceptInput{
		EstimatedMinutes: body.EstimatedMinutes,
		Notes:            body.Notes,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"acknowledgement": ack})
}

func (h *Handler) RejectOrder(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "restaurantId", "id")
	if !ok {
		return
	}

	var body ReasonRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	ack, err := h.orders.RejectOrder(ctx.Request.Context(), actor, ids[0], ids[1], body.Reason)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"acknowledgement": ack})
}

func (h *Handler) KitchenQueue(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "restaurantId")
	if !ok {
		return
	}

	tickets, err := h.orders.KitchenQueue(ctx.Request.Context(), actor, ids[0])
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"orders": tickets})
}

func (h *Handler) BindKitchen(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	if !types.Can(actor.Role, types.CapManageTables) {
		h.fail(ctx, apperrors.Forbidden("Not allowed to manage kitchens"))
		return
	}
	ids, ok := h.ids(ctx, "restaurantId")
	if !ok {
		return
	}

	var body BindKitchenRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	binding, err := h.directory.BindKitchen(ctx.Request.Context(), h.db, ids[0], body.KitchenID)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{"binding": binding})
}

func (h *Handler) ListTables(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "restaurantId")
	if !ok {
		return
	}

	views, err := h.tables.List(ctx.Request.Context(), actor, ids[0])
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"tables": views})
}

func (h *Handler) CreateTable(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "restaurantId")
	if !ok {
		return
	}

	var body CreateTableRequest
	if err := bind(ctx, &body); err != nil {
		h.fail(ctx, err)
		return
	}

	table, err := h.tables.CreateTable(ctx.Request.Context(), actor, ids[0], tables.CreateInput{
		TableNumber: body.TableNumber,
		Capacity:    body.Capacity,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{"table": table})
}
