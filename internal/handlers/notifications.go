package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

func (h *Handler) ListNotifications(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	var f notifications.ListFilter
	var err error

	if f.Page, err = utils.QueryInt(ctx, "page"); err != nil {
		h.fail(ctx, err)
		return
	}
	if f.Limit, err = utils.QueryInt(ctx, "limit"); err != nil {
		h.fail(ctx, err)
		return
	}
	if raw := ctx.Query("read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(ctx, apperrors.Validation("", "Invalid read %q", raw))
			return
		}
		f.Read = &read
	}
	f.Type = types.NotificationType(ctx.Query("type"))

	page, err := h.notes.List(ctx.Request.Context(), actor.ID, f)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, page)
}

func (h *Handler) UnreadCount(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	count, err := h.notes.UnreadCount(ctx.Request.Context(), actor.ID)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkNotificationRead(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id")
	if !ok {
		return
	}

	n, err := h.notes.MarkRead(ctx.Request.Context(), actor.ID, ids[0])
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsRead(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	updated, err := h.notes.MarkAllRead(ctx.Request.Context(), actor.ID)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"updated": updated})
}

func (h *Handler) DeleteNotification(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}
	ids, ok := h.ids(ctx, "id")
	if !ok {
		return
	}

	if err := h.notes.Delete(ctx.Request.Context(), actor.ID, ids[0]); err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"deleted": 1})
}

func (h *Handler) ClearNotifications(ctx *gin.Context) {
	actor, ok := h.identity(ctx)
	if !ok {
		return
	}

	deleted, err := h.notes.ClearAll(ctx.Request.Context(), actor.ID)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"deleted": deleted})
}
