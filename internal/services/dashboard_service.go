package services

import (
	"context"
	"fmt"
	"time"

	"spendlog/internal/cache"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentExpensesLimit = 10
	topCategoriesLimit  = 5
	dailyWindowDays     = 30
)

const (
	MsgStartDateInvalid = "The start date is not a valid date."
	MsgEndDateInvalid   = "The end date is not a valid date."
	MsgEndBeforeStart   = "The end date must be a date after or equal to start date."
)

// DashboardStore is the aggregate reads needed by DashboardService.
type DashboardStore interface {
	SumExpenses(ctx context.Context, rng core.DateRange) (core.Money, int64, error)
	CategoryBreakdown(ctx context.Context, rng core.DateRange) ([]storage.CategoryTotal, error)
	RecentExpenses(ctx context.Context, rng core.DateRange, limit int) ([]core.Expense, error)
	DailyTotals(ctx context.Context, rng core.DateRange) ([]storage.DailyTotal, error)
	TopCategories(ctx context.Context, limit int) ([]storage.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, year int) ([]storage.MonthTotal, error)
}

// CacheRecorder counts cache lookups by outcome.
type CacheRecorder interface {
	ObserveCache(name string, hit bool)
}

type (
	Summary struct {
		TotalExpenses core.Money `json:"total_expenses"`
		TotalCount    int64      `json:"total_count"`
		AveragePerDay core.Money `json:"average_per_day"`
		MonthlyGrowth float64    `json:"monthly_growth"`
	}

	CategoryBreakdownItem struct {
		Category    core.CategoryRef `json:"category"`
		TotalAmount core.Money       `json:"total_amount"`
		Count       int64            `json:"count"`
		Percentage  float64          `json:"percentage"`
	}

	DailyExpense struct {
		Date   core.Date  `json:"date"`
		Amount core.Money `json:"amount"`
	}

	TopCategory struct {
		ID           int64      `json:"id"`
		Name         string     `json:"name"`
		Color        string     `json:"color"`
		TotalSpent   core.Money `json:"total_spent"`
		ExpenseCount int64      `json:"expense_count"`
	}

	DateRangeInfo struct {
		StartDate core.Date `json:"start_date"`
		EndDate   core.Date `json:"end_date"`
	}

	PeriodInfo struct {
		DaysInPeriod       int        `json:"days_in_period"`
		CurrentMonthTotal  core.Money `json:"current_month_total"`
		PreviousMonthTotal core.Money `json:"previous_month_total"`
	}

	// Dashboard is the composite summary of one date range.
	Dashboard struct {
		Summary           Summary                 `json:"summary"`
		CategoryBreakdown []CategoryBreakdownItem `json:"category_breakdown"`
		RecentExpenses    []core.Expense          `json:"recent_expenses"`
		DailyExpenses     []DailyExpense          `json:"daily_expenses"`
		TopCategories     []TopCategory           `json:"top_categories"`
		DateRange         DateRangeInfo           `json:"date_range"`
		PeriodInfo        PeriodInfo              `json:"period_info"`
	}

	MonthStat struct {
		Month         int        `json:"month"`
		MonthName     string     `json:"month_name"`
		TotalAmount   core.Money `json:"total_amount"`
		ExpenseCount  int64      `json:"expense_count"`
		AveragePerDay core.Money `json:"average_per_day"`
	}

	MonthlyStats struct {
		Year         int         `json:"year"`
		MonthlyStats []MonthStat `json:"monthly_stats"`
	}
)

// DashboardQuery holds the raw range parameters; empty means current month.
type DashboardQuery struct {
	StartDate string
	EndDate   string
}

// DashboardService computes read-only summaries over expenses.
type DashboardService struct {
	store    DashboardStore
	stats    cache.Cache[int, MonthlyStats]
	recorder CacheRecorder
	now      func() time.Time
	logger   *log.Logger
}

// NewDashboardService builds the service. stats may be nil to disable caching.
func NewDashboardService(store DashboardStore, stats cache.Cache[int, MonthlyStats], recorder CacheRecorder) *DashboardService {
	return &DashboardService{
		store:    store,
		stats:    stats,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithComponent(log.ComponentDashboard),
	}
}

// InvalidateMonthlyStats drops every cached year.
func (s *DashboardService) InvalidateMonthlyStats() {
	if s.stats != nil {
		s.stats.Purge()
	}
}

// resolveRange applies the current-month defaults and validates the result.
func (s *DashboardService) resolveRange(q DashboardQuery, today core.Date) (core.DateRange, error) {
	ve := core.NewValidationError()
	rng := core.MonthRange(today)

	if q.StartDate != "" {
		if d, err := core.ParseDate(q.StartDate); err != nil {
			ve.Add("start_date", MsgStartDateInvalid)
		} else {
			rng.Start = d
		}
	}
	if q.EndDate != "" {
		if d, err := core.ParseDate(q.EndDate); err != nil {
			ve.Add("end_date", MsgEndDateInvalid)
		} else {
			rng.End = d
		}
	}
	if !ve.HasErrors() && rng.End.Before(rng.Start) {
		ve.Add("end_date", MsgEndBeforeStart)
	}
	return rng, ve.Err()
}

// growth is the percent change from prev to cur, 0 when prev is 0.
func growth(cur, prev core.Money) float64 {
	if prev.IsZero() {
		return 0
	}
	pct := cur.Decimal().Sub(prev.Decimal()).
		Div(prev.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return pct.InexactFloat64()
}

// perDay divides total by days, rounded half-up to cents.
func perDay(total core.Money, days int) core.Money {
	if days < 1 {
		days = 1
	}
	return core.MoneyFromDecimal(total.Decimal().Div(decimal.NewFromInt(int64(days))))
}

// Dashboard assembles every section for the requested range. The reads
// run concurrently; the first failure cancels the rest.
func (s *DashboardService) Dashboard(ctx context.Context, q DashboardQuery) (Dashboard, error) {
	now := s.now()
	today := core.DateOf(now)

	rng, err := s.resolveRange(q, today)
	if err != nil {
		return Dashboard{}, err
	}

	currentMonth := core.DateRange{Start: today.StartOfMonth(), End: today}
	previousMonth := core.MonthRange(today.StartOfMonth().AddDays(-1))
	chartRange := core.DateRange{Start: rng.End.AddDays(-(dailyWindowDays - 1)), End: rng.End}

	var (
		total, curTotal, prevTotal core.Money
		count                      int64
		breakdown, top             []storage.CategoryTotal
		recent                     []core.Expense
		daily                      []storage.DailyTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, count, err = s.store.SumExpenses(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = s.store.CategoryBreakdown(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.RecentExpenses(gctx, rng, recentExpensesLimit)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.store.DailyTotals(gctx, chartRange)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.store.TopCategories(gctx, topCategoriesLimit)
		return err
	})
	g.Go(func() (err error) {
		curTotal, _, err = s.store.SumExpenses(gctx, currentMonth)
		return err
	})
	g.Go(func() (err error) {
		prevTotal, _, err = s.store.SumExpenses(gctx, previousMonth)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	days := rng.Days()
	d := Dashboard{
		Summary: Summary{
			TotalExpenses: total,
			TotalCount:    count,
			MonthlyGrowth: growth(curTotal, prevTotal),
		},
		CategoryBreakdown: make([]CategoryBreakdownItem, 0, len(breakdown)),
		RecentExpenses:    recent,
		DailyExpenses:     make([]DailyExpense, 0, len(daily)),
		TopCategories:     make([]TopCategory, 0, len(top)),
		DateRange:         DateRangeInfo{StartDate: rng.Start, EndDate: rng.End},
		PeriodInfo: PeriodInfo{
			DaysInPeriod:       days,
			CurrentMonthTotal:  curTotal,
			PreviousMonthTotal: prevTotal,
		},
	}
	if count > 0 {
		d.Summary.AveragePerDay = perDay(total, days)
	}
	for _, b := range breakdown {
		d.CategoryBreakdown = append(d.CategoryBreakdown, CategoryBreakdownItem{
			Category:    b.Category,
			TotalAmount: b.Total,
			Count:       b.Count,
		})
	}
	for _, dt := range daily {
		d.DailyExpenses = append(d.DailyExpenses, DailyExpense{Date: dt.Date, Amount: dt.Total})
	}
	for _, t := range top {
		d.TopCategories = append(d.TopCategories, TopCategory{
			ID:           t.Category.ID,
			Name:         t.Category.Name,
			Color:        t.Category.Color,
			TotalSpent:   t.Total,
			ExpenseCount: t.Count,
		})
	}

	s.logger.DebugContext(ctx, "Dashboard computed",
		log.FieldStartDate, rng.Start.String(),
		log.FieldEndDate, rng.End.String(),
		"total_count", count)
	return d, nil
}

// MonthlyStats returns per-month totals for year, served from cache when fresh.
func (s *DashboardService) MonthlyStats(ctx context.Context, year int) (MonthlyStats, error) {
	if s.stats != nil {
		if cached, ok := s.stats.Get(year); ok {
			s.observeCache(true)
			return cached, nil
		}
		s.observeCache(false)
	}

	totals, err := s.store.MonthlyTotals(ctx, year)
	if err != nil {
		return MonthlyStats{}, fmt.Errorf("monthly stats %d: %w", year, err)
	}

	byMonth := make(map[int]storage.MonthTotal, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t
	}

	stats := MonthlyStats{Year: year, MonthlyStats: make([]MonthStat, 0, 12)}
	for m := 1; m <= 12; m++ {
		first := core.NewDate(year, m, 1)
		t := byMonth[m]
		ms := MonthStat{
			Month:        m,
			MonthName:    time.Month(m).String(),
			TotalAmount:  t.Total,
			ExpenseCount: t.Count,
		}
		if t.Count > 0 {
			ms.AveragePerDay = perDay(t.Total, first.DaysInMonth())
		}
		stats.MonthlyStats = append(stats.MonthlyStats, ms)
	}

	if s.stats != nil {
		s.stats.Set(year, stats)
	}
	return stats, nil
}

func (s *DashboardService) observeCache(hit bool) {
	if s.recorder != nil {
		s.recorder.ObserveCache("monthly_stats", hit)
	}
}
