package memory

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

type catalogFile struct {
	Discounts []discountEntry `yaml:"discounts"`
}

type discountEntry struct {
	ID         string       `yaml:"id"`
	Org        string       `yaml:"org"`
	Name       string       `yaml:"name"`
	Code       string       `yaml:"code"`
	Type       string       `yaml:"type"`
	Value      float64      `yaml:"value"`
	Mode       string       `yaml:"mode"`
	Products   []string     `yaml:"products"`
	Categories []string     `yaml:"categories"`
	Bogo       *bogoEntry   `yaml:"bogo"`
	Limits     *limitsEntry `yaml:"limits"`
	Start      *time.Time   `yaml:"start"`
	Expiry     *time.Time   `yaml:"expiry"`
	AutoAssign bool         `yaml:"autoAssign"`
	MaxAmount  *float64     `yaml:"maxAmount"`
	ArchivedAt *time.Time   `yaml:"archivedAt"`
	CreatedAt  *time.Time   `yaml:"createdAt"`
}

type bogoEntry struct {
	Enabled         bool    `yaml:"enabled"`
	BuyQty          int     `yaml:"buyQty"`
	GetQty          int     `yaml:"getQty"`
	DiscountPercent float64 `yaml:"discountPercent"`
}

type limitsEntry struct {
	UsageLimit  *int `yaml:"usageLimit"`
	PerCustomer *struct {
		Total     *int `yaml:"total"`
		Frequency *struct {
			Count  int    `yaml:"count"`
			Period string `yaml:"period"`
		} `yaml:"frequency"`
	} `yaml:"perCustomer"`
}

// LoadCatalogFile reads a YAML discount catalog from path.
func LoadCatalogFile(path string) ([]models.Discount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]models.Discount, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}

	out := make([]models.Discount, 0, len(f.Discounts))
	for i, e := range f.Discounts {
		if e.ID == "" {
			return nil, errors.Errorf("discounts[%d]: id is required", i)
		}
		out = append(out, e.toModel())
	}
	return out, nil
}

func (e discountEntry) toModel() models.Discount {
	d := models.Discount{
		ID:         e.ID,
		OrgID:      e.Org,
		Name:       e.Name,
		Code:       e.Code,
		Type:       models.DiscountType(e.Type),
		Value:      decimal.NewFromFloat(e.Value),
		Mode:       models.AdjustmentMode(e.Mode),
		Products:   e.Products,
		Categories: e.Categories,
		Start:      e.Start,
		Expiry:     e.Expiry,
		AutoAssign: e.AutoAssign,
		ArchivedAt: e.ArchivedAt,
	}
	if d.Mode == "" {
		d.Mode = models.ModeDiscount
	}
	if e.CreatedAt != nil {
		d.CreatedAt = *e.CreatedAt
	}
	if e.MaxAmount != nil {
		d.MaxAmount = decimal.NewNullDecimal(decimal.NewFromFloat(*e.MaxAmount))
	}
	if e.Bogo != nil {
		d.Bogo = &models.Bogo{
			Enabled:         e.Bogo.Enabled,
			BuyQty:          e.Bogo.BuyQty,
			GetQty:          e.Bogo.GetQty,
			DiscountPercent: decimal.NewFromFloat(e.Bogo.DiscountPercent),
		}
	}
	if e.Limits != nil {
		d.Limits = &models.Limits{UsageLimit: e.Limits.UsageLimit}
		if pc := e.Limits.PerCustomer; pc != nil {
			d.Limits.PerCustomer = &models.PerCustomerLimit{Total: pc.Total}
			if f := pc.Frequency; f != nil {
				d.Limits.PerCustomer.Frequency = &models.Frequency{Count: f.Count, Period: models.Period(f.Period)}
			}
		}
	}
	return d
}
