package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/service"
)

type ValidateDiscountRequest struct {
	OrgID        string           `json:"orgId"`
	DiscountID   string           `json:"discountId,omitempty"`
	DiscountCode string           `json:"discountCode,omitempty"`
	Cart         models.Cart      `json:"cart"`
	Customer     *models.Customer `json:"customer,omitempty"`
}

type BestDiscountRequest struct {
	OrgID    string           `json:"orgId"`
	Cart     models.Cart      `json:"cart"`
	Customer *models.Customer `json:"customer,omitempty"`
}

type BestDiscountResponse struct {
	Discount *models.Discount `json:"discount"`
	Amount   decimal.Decimal  `json:"amount"`
}

type DiscountHandler struct {
	resolver *service.Resolver
	writer   interfaces.DiscountWriter
	logger   *zap.Logger
}

func NewDiscountHandler(resolver *service.Resolver, writer interfaces.DiscountWriter, logger *zap.Logger) *DiscountHandler {
	return &DiscountHandler{resolver: resolver, writer: writer, logger: logger}
}

// Validate handles POST /discounts/validate.
func (h *DiscountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateDiscountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrgID == "" {
		writeError(w, http.StatusBadRequest, errOrgRequired)
		return
	}
	if req.DiscountID == "" && req.DiscountCode == "" {
		writeError(w, http.StatusBadRequest, "discountId or discountCode required")
		return
	}

	d, err := h.resolver.Lookup(r.Context(), req.OrgID, req.DiscountID, req.DiscountCode)
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	result, err := h.resolver.ValidateDiscount(r.Context(), d, req.Cart, req.Customer)
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Best handles POST /discounts/best.
func (h *DiscountHandler) Best(w http.ResponseWriter, r *http.Request) {
	var req BestDiscountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrgID == "" {
		writeError(w, http.StatusBadRequest, errOrgRequired)
		return
	}

	best, err := h.resolver.FindBestAutoDiscount(r.Context(), service.ResolveRequest{
		OrgID:    req.OrgID,
		Cart:     req.Cart,
		Customer: req.Customer,
	})
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}

	resp := BestDiscountResponse{Amount: decimal.Zero}
	if best != nil {
		resp.Discount = &best.Discount
		resp.Amount = best.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /admin/discounts.
func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d models.Discount
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateNewDiscount(d); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if d.Mode == "" {
		d.Mode = models.ModeDiscount
	}

	created, err := h.writer.CreateDiscount(r.Context(), d)
	if err != nil {
		writeInternal(w, r, h.logger, err)
		return
	}
	h.logger.Info("discount created", zap.String("discount_id", created.ID), zap.String("org", created.OrgID))
	writeJSON(w, http.StatusCreated, created)
}

func validateNewDiscount(d models.Discount) string {
	switch {
	case d.OrgID == "":
		return "org required"
	case d.Name == "":
		return "name required"
	case d.Type != models.DiscountPercent && d.Type != models.DiscountFlat:
		return "type must be percent or flat"
	case d.Value.IsNegative():
		return "value must not be negative"
	case d.Mode != "" && d.Mode != models.ModeDiscount && d.Mode != models.ModeSurcharge:
		return "mode must be discount or surcharge"
	case d.MaxAmount.Valid && d.MaxAmount.Decimal.IsNegative():
		return "maxAmount must not be negative"
	case d.Bogo != nil && d.Bogo.Enabled && (d.Bogo.BuyQty < 1 || d.Bogo.GetQty < 1):
		return "bogo buyQty and getQty must be positive"
	}
	return ""
}
