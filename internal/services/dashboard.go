package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// ChartPoint is one day of the simulated traffic chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Views int64  `json:"views"`
}

// DashboardService backs the admin overview page.
type DashboardService struct {
	store storage.Store
}

func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Overview returns the aggregate post counters.
func (s *DashboardService) Overview(ctx context.Context) (storage.PostTotals, error) {
	return s.store.PostTotals(ctx)
}

// RecentPosts returns the latest posts for the dashboard table, drafts
// included.
func (s *DashboardService) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts, _, err := s.store.Posts(ctx, storage.PostQuery{Page: 1, Limit: limit})
	return posts, err
}

// TrafficChart simulates daily traffic from the total view counter. There is
// no per-day analytics table, so the average daily views get a random
// fluctuation of up to 40%, alternating above and below the baseline.
func (s *DashboardService) TrafficChart(ctx context.Context, days int) ([]ChartPoint, error) {
	totals, err := s.store.PostTotals(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	today := time.Now()
	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)

		var baseDaily int64
		if totals.Views > 0 {
			baseDaily = (totals.Views + 29) / 30
		}
		var fluctuation int64
		if baseDaily > 0 {
			fluctuation = rand.Int63n(baseDaily*2/5 + 1)
		}
		views := baseDaily + fluctuation
		if i%2 != 0 {
			views = baseDaily - fluctuation
		}
		if views < 0 {
			views = 0
		}
		points = append(points, ChartPoint{Name: day.Format("Mon"), Views: views})
	}
	return points, nil
}
