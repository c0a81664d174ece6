package checkouts

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// RepositoryPort abstracts checkout order access for the service.
type RepositoryPort interface {
	ListOrders(ctx context.Context) ([]CheckoutOrder, error)
	GetOrder(ctx context.Context, id int64) (CheckoutOrder, error)
	UpdateOrder(ctx context.Context, order CheckoutOrder) error
	DeleteOrder(ctx context.Context, id int64) error
	BusiestTimes(ctx context.Context) ([]BusySlot, error)
	UpdateItem(ctx context.Context, item CheckoutItem) error
	DeleteItem(ctx context.Context, id int64) error
	PopularItems(ctx context.Context) ([]PopularItem, error)
	PopularCategories(ctx context.Context) ([]PopularCategory, error)
}

// Service coordinates checkout history and statistics screens.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// History returns checkout orders, most recent first.
func (s *Service) History(ctx context.Context) ([]CheckoutOrder, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Date().After(orders[j].Date())
	})
	return orders, nil
}

// Order returns one order with its items.
func (s *Service) Order(ctx context.Context, id int64) (CheckoutOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// Update replaces an order's header fields.
func (s *Service) Update(ctx context.Context, order CheckoutOrder) error {
	return s.repo.UpdateOrder(ctx, order)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteOrder(ctx, id)
}

// UpdateLine replaces a checkout item line.
func (s *Service) UpdateLine(ctx context.Context, item CheckoutItem) error {
	return s.repo.UpdateItem(ctx, item)
}

// DeleteLine removes a checkout item line.
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

// PopularStats bundles the item and category leaderboards.
type PopularStats struct {
	Items      []PopularItem
	Categories []PopularCategory
}

// Popular fetches both leaderboards concurrently.
func (s *Service) Popular(ctx context.Context) (PopularStats, error) {
	var stats PopularStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.repo.PopularItems(ctx)
		if err != nil {
			return err
		}
		stats.Items = items
		return nil
	})
	g.Go(func() error {
		categories, err := s.repo.PopularCategories(ctx)
		if err != nil {
			return err
		}
		stats.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return PopularStats{}, err
	}
	return stats, nil
}

// Weekday display order for the busy-times chart.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// BusyHistogram shapes the raw day/hour slots for charting.
type BusyHistogram struct {
	HourLabels []string
	HourTotals []float64
	DayLabels  []string
	DayTotals  []float64
}

// Busiest aggregates the backend's day/hour slots into hourly and daily
// totals. Slots with an hour outside 0-23 are dropped; hours inside the
// reported range with no traffic render as zero.
func (s *Service) Busiest(ctx context.Context) (BusyHistogram, error) {
	slots, err := s.repo.BusiestTimes(ctx)
	if err != nil {
		return BusyHistogram{}, err
	}

	byHour := make(map[int]int)
	byDay := make(map[string]int)
	minHour, maxHour := 24, -1
	for _, slot := range slots {
		// A slot outside 0-23 is a malformed backend row, not an hour.
		if slot.Hour < 0 || slot.Hour > 23 {
			continue
		}
		byHour[slot.Hour] += slot.TotalCheckouts
		byDay[slot.Day] += slot.TotalCheckouts
		if slot.Hour < minHour {
			minHour = slot.Hour
		}
		if slot.Hour > maxHour {
			maxHour = slot.Hour
		}
	}

	var hist BusyHistogram
	for hour := minHour; hour <= maxHour; hour++ {
		hist.HourLabels = append(hist.HourLabels, hourLabel(hour))
		hist.HourTotals = append(hist.HourTotals, float64(byHour[hour]))
	}
	for _, day := range weekdays {
		if total, ok := byDay[day]; ok {
			hist.DayLabels = append(hist.DayLabels, day[:3])
			hist.DayTotals = append(hist.DayTotals, float64(total))
		}
	}
	return hist, nil
}

func hourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12am"
	case hour < 12:
		return strconv.Itoa(hour) + "am"
	case hour == 12:
		return "12pm"
	default:
		return strconv.Itoa(hour-12) + "pm"
	}
}
