package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/health"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/kitchen"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/orders"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/tables"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
	"gorm.io/gorm"
)

type Deps struct {
	DB             *gorm.DB
	Orders         *orders.Service
	Tables         *tables.Service
	Notifications  *notifications.Store
	Directory      *kitchen.Directory
	Hub            *realtime.Hub
	Health         *health.Checker
	AllowedOrigins []string
	Log            *slog.Logger
}

// Handler serves the REST surface and the socket upgrade.
type Handler struct {
	db        *gorm.DB
	orders    *orders.Service
	tables    *tables.Service
	notes     *notifications.Store
	directory *kitchen.Directory
	hub       *realtime.Hub
	health    *health.Checker
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		db:        d.DB,
		orders:    d.Orders,
		tables:    d.Tables,
		notes:     d.Notifications,
		directory: d.Directory,
		hub:       d.Hub,
		health:    d.Health,
		log:       d.Log,
	}

	allowed := make(map[string]bool, len(d.AllowedOrigins))
	for _, origin := range d.AllowedOrigins {
		allowed[origin] = true
	}

	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin.
			return origin == "" || allowed[origin]
		},
	}

	return h
}

func (h *Handler) fail(ctx *gin.Context, err error) {
	utils.RespondError(ctx, h.log, err)
}

// identity returns the caller or writes the error and reports false.
func (h *Handler) identity(ctx *gin.Context) (types.Identity, bool) {
	id, err := utils.GetCurrentUser(ctx)
	if err != nil {
		h.fail(ctx, err)
		return types.Identity{}, false
	}
	return id, true
}

// ids parses the named numeric path parameters in order.
func (h *Handler) ids(ctx *gin.Context, names ...string) ([]uint, bool) {
	out := make([]uint, 0, len(names))
	for _, name := range names {
		id, err := utils.ParamID(ctx, name)
		if err != nil {
			h.fail(ctx, err)
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}
