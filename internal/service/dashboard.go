package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/fetch"
	"oyna-console/internal/logging"
)

// Card is one stats card on the dashboard.
type Card struct {
	Resource string         `json:"resource"`
	Label    string         `json:"label"`
	Errored  bool           `json:"errored"`
	Error    string         `json:"error,omitempty"`
	Stats    map[string]any `json:"stats,omitempty"`
}

// DashboardService collects the stats cards of every resource.
type DashboardService struct {
	registry    *Registry
	log         logging.Logger
	concurrency int
	timeout     time.Duration
}

// NewDashboardService creates a dashboard over registry.
func NewDashboardService(registry *Registry, log logging.Logger) *DashboardService {
	if log == nil {
		log = logging.Nop()
	}
	return &DashboardService{
		registry:    registry,
		log:         log.With("component", "dashboard"),
		concurrency: 4,
		timeout:     10 * time.Second,
	}
}

// Cards loads every card concurrently. A failing card is reported as errored;
// it never fails the dashboard.
func (s *DashboardService) Cards(ctx context.Context, client *apiclient.Client) []Card {
	var resources []Resource
	for _, res := range s.registry.All() {
		if res.HasStats() {
			resources = append(resources, res)
		}
	}
	cards := make([]Card, len(resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, res := range resources {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			card := Card{Resource: res.Name(), Label: res.Label()}
			stats, err := res.Stats(cctx, client)
			if err != nil {
				card.Errored = true
				card.Error = fetch.ErrorMessage(err)
				s.log.Warn(ctx, "stats card failed", "resource", res.Name(), "error", err)
			} else {
				card.Stats = stats
			}
			cards[i] = card
			return nil
		})
	}
	_ = g.Wait()

	return cards
}
