package pricing

import (
	"fmt"
	"sort"

	"screenapi/internal/catalog"
)

// DiscountKind distinguishes the two discount families
type DiscountKind string

// Discount kinds
const (
	KindVolume DiscountKind = "volume"
	KindBundle DiscountKind = "bundle"
)

// VolumeTier grants a percentage discount once the distinct resolved
// service count reaches MinServices. At most one tier applies.
type VolumeTier struct {
	MinServices int
	Percent     int
}

// Bundle grants a fixed discount when every listed service id is present
// in the selection.
type Bundle struct {
	ID          string
	Name        string
	ServiceIDs  []string
	AmountCents int64
}

// Config is the full discount rule table for an engine
type Config struct {
	VolumeTiers []VolumeTier
	Bundles     []Bundle
}

// Discount is a single applied discount line
type Discount struct {
	Kind        DiscountKind `json:"type"`
	Label       string       `json:"name"`
	AmountCents int64        `json:"amount_cents"`
}

// LineItem is one itemized service at its catalog price
type LineItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// Result is the full pricing breakdown for a selection
type Result struct {
	SubtotalCents        int64      `json:"subtotal_cents"`
	Discounts            []Discount `json:"discounts"`
	TotalDiscountCents   int64      `json:"total_discount_cents"`
	TotalCents           int64      `json:"total_cents"`
	ResolvedServiceCount int        `json:"service_count"`
}

// Engine evaluates the discount rule table against selections. Construct
// once and share; it has no mutable state.
type Engine struct {
	tiers   []VolumeTier
	bundles []Bundle
}

// NewEngine creates a pricing engine. Tiers are sorted highest threshold
// first so the best qualifying tier always wins.
func NewEngine(cfg Config) *Engine {
	tiers := append([]VolumeTier(nil), cfg.VolumeTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinServices > tiers[j].MinServices })

	return &Engine{
		tiers:   tiers,
		bundles: append([]Bundle(nil), cfg.Bundles...),
	}
}

// Itemize resolves each requested id against the catalog in the caller's
// order, silently skipping ids that do not resolve.
func (e *Engine) Itemize(cat *catalog.Catalog, selection []string) []LineItem {
	items := make([]LineItem, 0, len(selection))
	for _, id := range selection {
		svc, ok := cat.Get(id)
		if !ok {
			continue
		}
		items = append(items, LineItem{ID: svc.ID, Name: svc.Name, PriceCents: svc.BasePriceCents})
	}
	return items
}

// Calculate computes the full pricing breakdown. The selection is
// de-duplicated before anything else, so both the subtotal and the volume
// tier are sized off the distinct resolved service count. Bundle membership
// keys off id presence. There are no error conditions: an empty or
// all-unknown selection prices to zero.
func (e *Engine) Calculate(cat *catalog.Catalog, selection []string) Result {
	ids := dedupe(selection)
	services := cat.GetMany(ids)

	var subtotal int64
	for _, svc := range services {
		subtotal += svc.BasePriceCents
	}

	discounts := make([]Discount, 0, 1+len(e.bundles))
	if d, ok := e.volumeDiscount(len(services), subtotal); ok {
		discounts = append(discounts, d)
	}
	discounts = append(discounts, e.bundleDiscounts(ids)...)

	var totalDiscount int64
	for _, d := range discounts {
		totalDiscount += d.AmountCents
	}

	total := subtotal - totalDiscount
	if total < 0 {
		total = 0
	}

	return Result{
		SubtotalCents:        subtotal,
		Discounts:            discounts,
		TotalDiscountCents:   totalDiscount,
		TotalCents:           total,
		ResolvedServiceCount: len(services),
	}
}

// volumeDiscount returns the highest qualifying tier, if any
func (e *Engine) volumeDiscount(resolvedCount int, subtotal int64) (Discount, bool) {
	for _, tier := range e.tiers {
		if resolvedCount >= tier.MinServices {
			return Discount{
				Kind:        KindVolume,
				Label:       fmt.Sprintf("Volume Discount (%d%% for %d+ services)", tier.Percent, tier.MinServices),
				AmountCents: percentOf(subtotal, tier.Percent),
			}, true
		}
	}
	return Discount{}, false
}

// bundleDiscounts returns every bundle whose full id set is present.
// Bundles stack with each other and with the volume discount.
func (e *Engine) bundleDiscounts(ids []string) []Discount {
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}

	var discounts []Discount
	for _, b := range e.bundles {
		complete := true
		for _, id := range b.ServiceIDs {
			if _, ok := selected[id]; !ok {
				complete = false
				break
			}
		}
		if complete {
			discounts = append(discounts, Discount{
				Kind:        KindBundle,
				Label:       b.Name,
				AmountCents: b.AmountCents,
			})
		}
	}
	return discounts
}

// percentOf computes pct% of an integer-cent amount, rounded half-up
func percentOf(amountCents int64, pct int) int64 {
	return (amountCents*int64(pct) + 50) / 100
}

func dedupe(selection []string) []string {
	seen := make(map[string]struct{}, len(selection))
	out := make([]string, 0, len(selection))
	for _, id := range selection {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
