package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	report := h.health.Check(ctx.Request.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
		h.log.Warn("health check degraded", slog.Any("checks", report.Checks))
	}

	ctx.JSON(status, utils.Envelope{Success: report.Healthy(), Data: report})
}

func (h *Handler) Me(ctx *gin.Context) {
	id, ok := h.identity(ctx)
	if !ok {
		return
	}

	utils.Respond(ctx, http.StatusOK, id.Response())
}

// WebSocket upgrades an authenticated request and hands the connection to
// the hub, which owns it until it closes.
func (h *Handler) WebSocket(ctx *gin.Context) {
	id, ok := h.identity(ctx)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		utils.RequestLogger(ctx, h.log).Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.hub.Serve(conn, id)
}
