package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type HealthHandler struct {
	render *render.Render
	db     *gorm.DB
}

func NewHealthHandler(r *render.Render, db *gorm.DB) *HealthHandler {
	return &HealthHandler{render: r, db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		helpers.RespondError(h.render, w, http.StatusServiceUnavailable, "database unavailable", helpers.Payload{"status": "degraded"})
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "ok", helpers.Payload{"status": "ok"})
}
