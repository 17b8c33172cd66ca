package handlers

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/service"
)

type RedemptionHandler struct {
	service *service.RedemptionService
	logger  *zap.Logger
}

func NewRedemptionHandler(svc *service.RedemptionService, logger *zap.Logger) *RedemptionHandler {
	return &RedemptionHandler{service: svc, logger: logger}
}

// Redeem handles POST /redemptions.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req service.RedeemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrgID == "" {
		writeError(w, http.StatusBadRequest, errOrgRequired)
		return
	}
	if req.DiscountID == "" {
		writeError(w, http.StatusBadRequest, "discountId required")
		return
	}

	redemption, err := h.service.Redeem(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrDiscountNotFound):
		writeError(w, http.StatusNotFound, "discount_not_found")
	case errors.Is(err, service.ErrRedemptionLimit), errors.Is(err, service.ErrNotRedeemable):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeInternal(w, r, h.logger, err)
	default:
		writeJSON(w, http.StatusCreated, redemption)
	}
}
