package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/hints"
	applog "scadenze/internal/log"
	"scadenze/internal/recurring"
	"scadenze/internal/sheets"
)

// AlertPublisher delivers obligation alerts. *amqp.Client implements it.
type AlertPublisher interface {
	PublishObligationAlert(ctx context.Context, msg *amqp.ObligationAlertMessage) error
}

// ForecastConfig tunes a ForecastService.
type ForecastConfig struct {
	LookbackMonths int
	Options        recurring.Options
	// AlertMinRisk is the lowest risk that gets published.
	AlertMinRisk recurring.Risk
}

// DefaultForecastConfig returns the configuration used when nothing is set.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		LookbackMonths: 6,
		Options: recurring.Options{
			HorizonMonths:  recurring.DefaultHorizonMonths,
			MaxOccurrences: recurring.DefaultMaxOccurrences,
		},
		AlertMinRisk: recurring.RiskMedium,
	}
}

// Result is the outcome of one forecast run.
type Result struct {
	RunID        string
	GeneratedAt  time.Time
	Today        core.Date
	Since        core.Date
	Transactions int
	Events       []recurring.PredictedEvent
	Alerts       int
}

// ForecastService loads the lookback window from a feed and turns it into
// upcoming obligations.
type ForecastService struct {
	feed        sheets.TransactionLister
	categorizer hints.Categorizer
	publisher   AlertPublisher
	config      ForecastConfig
	newRunID    func() string
}

// NewForecastService creates a service. categorizer and publisher are optional.
func NewForecastService(feed sheets.TransactionLister, categorizer hints.Categorizer, publisher AlertPublisher, config ForecastConfig) *ForecastService {
	if config.LookbackMonths <= 0 {
		config.LookbackMonths = DefaultForecastConfig().LookbackMonths
	}
	if config.AlertMinRisk == "" {
		config.AlertMinRisk = recurring.RiskMedium
	}
	return &ForecastService{
		feed:        feed,
		categorizer: categorizer,
		publisher:   publisher,
		config:      config,
		newRunID:    uuid.NewString,
	}
}

// Run computes the forecast as of now and publishes the alerts.
func (s *ForecastService) Run(ctx context.Context, now time.Time) (Result, error) {
	if s.feed == nil {
		return Result{}, errors.New("forecast service not properly initialized")
	}

	start := time.Now()
	res := Result{
		RunID:       s.newRunID(),
		GeneratedAt: now,
		Today:       core.DateOf(now),
	}
	res.Since = res.Today.AddMonths(-s.config.LookbackMonths)

	logger := applog.FromContext(ctx).
		WithComponent(applog.ComponentForecast).
		WithFields(applog.NewFields().WithRunID(res.RunID))
	ctx = applog.WithContext(ctx, logger)

	txs, err := s.feed.ListTransactionsSince(ctx, res.Since)
	if err != nil {
		return Result{}, fmt.Errorf("list transactions since %s: %w", res.Since, err)
	}
	res.Transactions = len(txs)

	opts := s.config.Options
	opts.Hints = s.resolveHints(ctx, txs)

	res.Events = recurring.Detect(txs, res.Today, opts)
	res.Alerts = s.publishAlerts(ctx, res.RunID, res.Events)

	logger.InfoContext(ctx, "Forecast computed",
		"today", res.Today.String(),
		"since", res.Since.String(),
		"transactions", res.Transactions,
		"events", len(res.Events),
		"alerts", res.Alerts,
		applog.FieldDuration, time.Since(start).Milliseconds())

	return res, nil
}

// Evaluate returns the classification of every candidate group in the
// lookback window, including the rejected ones.
func (s *ForecastService) Evaluate(ctx context.Context, now time.Time) ([]recurring.Evaluation, error) {
	if s.feed == nil {
		return nil, errors.New("forecast service not properly initialized")
	}
	since := core.DateOf(now).AddMonths(-s.config.LookbackMonths)
	txs, err := s.feed.ListTransactionsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list transactions since %s: %w", since, err)
	}
	h := s.resolveHints(ctx, txs)
	return recurring.Evaluate(recurring.GroupWithHints(txs, h), h), nil
}

// resolveHints merges configured hints with the categorizer's answer for
// the candidate groups. Categorizer failures leave the configured hints.
func (s *ForecastService) resolveHints(ctx context.Context, txs []core.Transaction) recurring.Hints {
	merged := make(recurring.Hints, len(s.config.Options.Hints))
	for k, v := range s.config.Options.Hints {
		merged[k] = v
	}
	if s.categorizer == nil {
		return merged
	}

	groups := recurring.Group(txs)
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		if _, ok := merged[g.CanonicalKey]; !ok {
			keys = append(keys, g.CanonicalKey)
		}
	}
	if len(keys) == 0 {
		return merged
	}

	found, err := s.categorizer.Categorize(ctx, keys)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Categorization unavailable, continuing without hints",
			applog.FieldOperation, applog.OpCategorize,
			applog.FieldError, err)
		return merged
	}
	for k, v := range found {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

func (s *ForecastService) publishAlerts(ctx context.Context, runID string, events []recurring.PredictedEvent) int {
	if s.publisher == nil {
		return 0
	}
	logger := applog.FromContext(ctx)

	published := 0
	for _, ev := range events {
		if !ev.Risk.AtLeast(s.config.AlertMinRisk) {
			continue
		}
		fields := applog.NewFields().
			WithOperation(applog.OpPublish).
			WithObligation(ev.CanonicalKey, string(ev.Cadence), string(ev.Risk), ev.Date.String(), ev.Amount.Cents)

		if err := s.publisher.PublishObligationAlert(ctx, amqp.NewObligationAlertMessage(runID, ev)); err != nil {
			logger.WithFields(fields.WithError(err)).ErrorContext(ctx, "Failed to publish obligation alert")
			continue
		}
		logger.WithFields(fields).DebugContext(ctx, "Obligation alert published")
		published++
	}
	return published
}
