package http

import (
	"time"

	"screenapi/internal/catalog"
	"screenapi/internal/packages"
	"screenapi/internal/pricing"
	"screenapi/internal/selection"
)

// dollars converts integer cents to the two-decimal boundary representation
func dollars(cents int64) float64 {
	return float64(cents) / 100
}

// ServicePayload is the wire shape of a catalog service
type ServicePayload struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BasePrice    float64  `json:"base_price"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies"`
	Conflicts    []string `json:"conflicts"`
}

func servicePayload(svc catalog.Service) ServicePayload {
	deps := svc.Dependencies
	if deps == nil {
		deps = []string{}
	}
	conflicts := svc.Conflicts
	if conflicts == nil {
		conflicts = []string{}
	}
	return ServicePayload{
		ID:           svc.ID,
		Name:         svc.Name,
		BasePrice:    dollars(svc.BasePriceCents),
		Category:     string(svc.Category),
		Dependencies: deps,
		Conflicts:    conflicts,
	}
}

func servicePayloads(services []catalog.Service) []ServicePayload {
	out := make([]ServicePayload, len(services))
	for i, svc := range services {
		out[i] = servicePayload(svc)
	}
	return out
}

// LinePayload is one itemized service line
type LinePayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func linePayloads(items []pricing.LineItem) []LinePayload {
	out := make([]LinePayload, len(items))
	for i, item := range items {
		out[i] = LinePayload{ID: item.ID, Name: item.Name, Price: dollars(item.PriceCents)}
	}
	return out
}

// DiscountPayload is one applied discount line
type DiscountPayload struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// PricingPayload is the wire shape of a pricing breakdown
type PricingPayload struct {
	Subtotal      float64           `json:"subtotal"`
	Discounts     []DiscountPayload `json:"discounts"`
	TotalDiscount float64           `json:"total_discount"`
	Total         float64           `json:"total"`
	ServiceCount  int               `json:"service_count"`
}

func pricingPayload(result pricing.Result) PricingPayload {
	discounts := make([]DiscountPayload, len(result.Discounts))
	for i, d := range result.Discounts {
		discounts[i] = DiscountPayload{
			Type:   string(d.Kind),
			Name:   d.Label,
			Amount: dollars(d.AmountCents),
		}
	}
	return PricingPayload{
		Subtotal:      dollars(result.SubtotalCents),
		Discounts:     discounts,
		TotalDiscount: dollars(result.TotalDiscountCents),
		Total:         dollars(result.TotalCents),
		ServiceCount:  result.ResolvedServiceCount,
	}
}

// priceResponse pairs itemized lines with the pricing breakdown
type priceResponse struct {
	Services []LinePayload  `json:"services"`
	Pricing  PricingPayload `json:"pricing"`
}

func newPriceResponse(breakdown selection.PriceBreakdown) priceResponse {
	return priceResponse{
		Services: linePayloads(breakdown.Items),
		Pricing:  pricingPayload(breakdown.Result),
	}
}

// PackagePayload is the wire shape of a saved package
type PackagePayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ServiceIDs []string  `json:"service_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func packagePayload(pkg packages.Package) PackagePayload {
	ids := pkg.ServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return PackagePayload{
		ID:         pkg.ID,
		Name:       pkg.Name,
		ServiceIDs: ids,
		CreatedAt:  pkg.CreatedAt,
		UpdatedAt:  pkg.UpdatedAt,
	}
}
