package handlers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/concurrency"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/service"
)

const maxBatch = 100

type BatchPriceRequest struct {
	Requests []service.PriceRequest `json:"requests"`
}

type BatchPriceResponse struct {
	Carts []models.Cart `json:"carts"`
}

type PricingHandler struct {
	service *service.PricingService
	workers int
	logger  *zap.Logger
}

func NewPricingHandler(svc *service.PricingService, workers int, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{service: svc, workers: workers, logger: logger}
}

// Price handles POST /carts/price.
func (h *PricingHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req service.PriceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrgID == "" {
		writeError(w, http.StatusBadRequest, errOrgRequired)
		return
	}

	cart, err := h.service.CalculateAdjustments(r.Context(), req)
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// PriceBatch handles POST /carts/price/batch. Requests are independent and priced
// concurrently; the response keeps request order.
func (h *PricingHandler) PriceBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchPriceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Requests) > maxBatch {
		writeError(w, http.StatusBadRequest, "too_many_requests_in_batch")
		return
	}
	for i, pr := range req.Requests {
		if pr.OrgID == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("requests[%d]: %s", i, errOrgRequired))
			return
		}
	}

	carts := make([]models.Cart, len(req.Requests))
	err := concurrency.ForEach(r.Context(), h.workers, len(req.Requests), func(ctx context.Context, i int) error {
		cart, err := h.service.CalculateAdjustments(ctx, req.Requests[i])
		if err != nil {
			return err
		}
		carts[i] = cart
		return nil
	})
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchPriceResponse{Carts: carts})
}

// Totals handles POST /carts/totals.
func (h *PricingHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var cart models.Cart
	if err := decodeBody(w, r, &cart); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.Totalize(cart))
}
