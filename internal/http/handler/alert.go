package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/dto"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

type AlertHandler struct {
	alertService service.AlertService
}

func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

func (h *AlertHandler) ListActive(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	alerts, err := h.alertService.ListActive(ctx, tenantID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": dto.ToAlertResponses(alerts)})
}

func (h *AlertHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	alertID, ok := pathID(c, "alert_id")
	if !ok {
		return
	}

	if err := h.alertService.Resolve(ctx, tenantID, alertID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "active alert not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to resolve alert", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve alert"})
		return
	}

	c.Status(http.StatusNoContent)
}
