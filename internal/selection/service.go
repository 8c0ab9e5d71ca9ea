package selection

import (
	"context"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"screenapi/internal/catalog"
	"screenapi/internal/config"
	"screenapi/internal/infrastructure"
	"screenapi/internal/pricing"
	"screenapi/internal/rules"
)

// PriceBreakdown pairs the itemized lines with the computed totals
type PriceBreakdown struct {
	Items  []pricing.LineItem
	Result pricing.Result
}

// Service composes the validator and pricing engine over the current
// catalog snapshot. It is the single rule source both the authoritative
// server path and any optimistic client copy must agree with.
type Service struct {
	store     *catalog.Store
	validator *rules.Validator
	engine    *pricing.Engine
	logger    *slog.Logger
	metrics   *infrastructure.RequestMetrics
}

// New creates the selection service from already-built collaborators
func New(store *catalog.Store, validator *rules.Validator, engine *pricing.Engine, logger *slog.Logger, metrics *infrastructure.RequestMetrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		validator: validator,
		engine:    engine,
		logger:    logger.With(slog.String("component", "selection_service")),
		metrics:   metrics,
	}
}

// NewFromConfig builds the validator and engine from the configured
// discount tables and wires them to the catalog store.
func NewFromConfig(store *catalog.Store, discounts config.DiscountsConfig, logger *slog.Logger, metrics *infrastructure.RequestMetrics) *Service {
	return New(store, rules.NewValidator(recommendations(discounts)), pricing.NewEngine(engineConfig(discounts)), logger, metrics)
}

// Validate checks a selection against the current catalog generation
func (s *Service) Validate(ctx context.Context, serviceIDs []string) (rules.Result, error) {
	if err := rules.CheckSelection(serviceIDs); err != nil {
		return rules.Result{}, err
	}
	s.count(ctx, "validate")
	return s.validator.Validate(s.store.Snapshot(), serviceIDs), nil
}

// Price itemizes and totals a selection against one catalog snapshot
func (s *Service) Price(ctx context.Context, serviceIDs []string) (PriceBreakdown, error) {
	if err := rules.CheckSelection(serviceIDs); err != nil {
		return PriceBreakdown{}, err
	}
	s.count(ctx, "price")

	cat := s.store.Snapshot()
	return PriceBreakdown{
		Items:  s.engine.Itemize(cat, serviceIDs),
		Result: s.engine.Calculate(cat, serviceIDs),
	}, nil
}

// CanAdd checks whether candidateID may join the selection
func (s *Service) CanAdd(ctx context.Context, serviceIDs []string, candidateID string) (rules.Decision, error) {
	if err := rules.CheckSelection(append([]string{candidateID}, serviceIDs...)); err != nil {
		return rules.Decision{}, err
	}
	s.count(ctx, "can_add")
	return s.validator.CanAdd(s.store.Snapshot(), serviceIDs, candidateID), nil
}

// CanRemove reports the cascade impact of removing targetID
func (s *Service) CanRemove(ctx context.Context, serviceIDs []string, targetID string) (rules.RemovalImpact, error) {
	if err := rules.CheckSelection(append([]string{targetID}, serviceIDs...)); err != nil {
		return rules.RemovalImpact{}, err
	}
	s.count(ctx, "can_remove")
	return s.validator.CanRemove(s.store.Snapshot(), serviceIDs, targetID), nil
}

func (s *Service) count(ctx context.Context, op string) {
	if s.metrics == nil || s.metrics.RuleEvaluations == nil {
		return
	}
	s.metrics.RuleEvaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// engineConfig converts the configured discount tables into the pricing
// engine's rule table, moving dollar amounts to integer cents.
func engineConfig(discounts config.DiscountsConfig) pricing.Config {
	cfg := pricing.Config{}
	for _, t := range discounts.VolumeTiers {
		cfg.VolumeTiers = append(cfg.VolumeTiers, pricing.VolumeTier{
			MinServices: t.MinServices,
			Percent:     t.Percent,
		})
	}
	for _, b := range discounts.Bundles {
		cfg.Bundles = append(cfg.Bundles, pricing.Bundle{
			ID:          b.ID,
			Name:        b.Name,
			ServiceIDs:  append([]string(nil), b.ServiceIDs...),
			AmountCents: dollarsToCents(b.Amount),
		})
	}
	return cfg
}

// recommendations derives the advisory nudges from the bundle tables. The
// nudge starts at half the bundle size (minimum one), which reproduces the
// 2-of-4 and 1-of-3 thresholds of the stock bundles.
func recommendations(discounts config.DiscountsConfig) []rules.Recommendation {
	var recs []rules.Recommendation
	for _, b := range discounts.Bundles {
		min := len(b.ServiceIDs) / 2
		if min < 1 {
			min = 1
		}
		unit := b.Unit
		if unit == "" {
			unit = "service"
		}
		label := b.ShortName
		if label == "" {
			label = b.Name
		}
		recs = append(recs, rules.Recommendation{
			Label:       label,
			Unit:        unit,
			ServiceIDs:  append([]string(nil), b.ServiceIDs...),
			AmountCents: dollarsToCents(b.Amount),
			MinSelected: min,
		})
	}
	return recs
}

func dollarsToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
