package storage

import (
	"context"
	"math"
	"testing"

	"spendlog/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(expenses []core.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.Title
	}
	return out
}

func datePtr(d core.Date) *core.Date { return &d }

func TestExpenseFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ExpenseFilter
		want ExpenseFilter
	}{
		{
			name: "defaults",
			in:   ExpenseFilter{},
			want: ExpenseFilter{SortBy: "expense_date", SortOrder: "desc", Page: 1, PerPage: 15},
		},
		{
			name: "unknown sort falls back",
			in:   ExpenseFilter{SortBy: "id; DROP TABLE expenses", SortOrder: "sideways", Page: 3, PerPage: 20},
			want: ExpenseFilter{SortBy: "expense_date", SortOrder: "desc", Page: 3, PerPage: 20},
		},
		{
			name: "asc is case-insensitive",
			in:   ExpenseFilter{SortBy: "amount", SortOrder: "ASC"},
			want: ExpenseFilter{SortBy: "amount", SortOrder: "asc", Page: 1, PerPage: 15},
		},
		{
			name: "per page capped",
			in:   ExpenseFilter{PerPage: 1000},
			want: ExpenseFilter{SortBy: "expense_date", SortOrder: "desc", Page: 1, PerPage: 100},
		},
		{
			name: "page beyond the addressable range is clamped",
			in:   ExpenseFilter{Page: math.MaxInt64, PerPage: 100},
			want: ExpenseFilter{SortBy: "expense_date", SortOrder: "desc", Page: MaxPage, PerPage: 100},
		},
		{
			name: "non-positive per page uses default",
			in:   ExpenseFilter{PerPage: -5, Page: -1},
			want: ExpenseFilter{SortBy: "expense_date", SortOrder: "desc", Page: 1, PerPage: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestListExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	food := mustCategory(t, repo, "Food", "#EF4444")
	travel := mustCategory(t, repo, "Travel", "#84CC16")

	mustExpense(t, repo, food.ID, "Lunch", 1250, core.NewDate(2024, 1, 10))
	mustExpense(t, repo, food.ID, "Dinner", 3000, core.NewDate(2024, 1, 12))
	mustExpense(t, repo, travel.ID, "Train 100%", 4000, core.NewDate(2024, 1, 12))
	mustExpense(t, repo, travel.ID, "Taxi_ride", 2000, core.NewDate(2024, 2, 1))
	mustExpense(t, repo, food.ID, "Snack", 250, core.NewDate(2024, 2, 3))

	t.Run("default order is expense_date desc, ties by insertion", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, []string{"Snack", "Taxi_ride", "Dinner", "Train 100%", "Lunch"}, titles(page.Expenses))
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{
			StartDate: datePtr(core.NewDate(2024, 1, 12)),
			EndDate:   datePtr(core.NewDate(2024, 2, 1)),
			SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dinner", "Train 100%", "Taxi_ride"}, titles(page.Expenses))
	})

	t.Run("category and search compose", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{CategoryID: food.ID, Search: "NER"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dinner"}, titles(page.Expenses))
	})

	t.Run("search folds case beyond ASCII", func(t *testing.T) {
		mustExpense(t, repo, travel.ID, "Café Lunch", 480, core.NewDate(2024, 3, 2))
		t.Cleanup(func() {
			page, err := repo.ListExpenses(ctx, ExpenseFilter{Search: "café"})
			require.NoError(t, err)
			for _, e := range page.Expenses {
				require.NoError(t, repo.DeleteExpense(ctx, e.ID))
			}
		})

		for _, q := range []string{"café", "CAFÉ", "Café", "LUNCH"} {
			page, err := repo.ListExpenses(ctx, ExpenseFilter{Search: q})
			require.NoError(t, err)
			assert.Contains(t, titles(page.Expenses), "Café Lunch", q)
		}
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{Search: "%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Train 100%"}, titles(page.Expenses))

		page, err = repo.ListExpenses(ctx, ExpenseFilter{Search: "_"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Taxi_ride"}, titles(page.Expenses))
	})

	t.Run("sort by amount asc", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{SortBy: "amount", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Snack", "Lunch", "Taxi_ride", "Dinner", "Train 100%"}, titles(page.Expenses))
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := repo.ListExpenses(ctx, ExpenseFilter{PerPage: 2, Page: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"Lunch"}, titles(page.Expenses))
		assert.Equal(t, 3, page.LastPage())
		assert.Equal(t, int64(5), page.From())
		assert.Equal(t, int64(5), page.To())

		page, err = repo.ListExpenses(ctx, ExpenseFilter{PerPage: 2, Page: 9})
		require.NoError(t, err)
		assert.Empty(t, page.Expenses)
		assert.Zero(t, page.From())

		page, err = repo.ListExpenses(ctx, ExpenseFilter{PerPage: 100, Page: math.MaxInt64})
		require.NoError(t, err)
		assert.Empty(t, page.Expenses)
		assert.Equal(t, MaxPage, page.Page)
		assert.Zero(t, page.From())
		assert.Zero(t, page.To())
	})
}

func TestAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	food := mustCategory(t, repo, "Food", "#EF4444")
	travel := mustCategory(t, repo, "Travel", "#84CC16")
	mustCategory(t, repo, "Empty", "#6B7280")

	mustExpense(t, repo, food.ID, "Lunch", 1250, core.NewDate(2024, 1, 10))
	mustExpense(t, repo, food.ID, "Dinner", 3000, core.NewDate(2024, 1, 10))
	mustExpense(t, repo, travel.ID, "Train", 4000, core.NewDate(2024, 1, 12))
	mustExpense(t, repo, travel.ID, "Flight", 20000, core.NewDate(2023, 12, 30))

	january := core.MonthRange(core.NewDate(2024, 1, 1))

	t.Run("sum", func(t *testing.T) {
		total, count, err := repo.SumExpenses(ctx, january)
		require.NoError(t, err)
		assert.Equal(t, int64(8250), total.Cents)
		assert.Equal(t, int64(3), count)

		total, count, err = repo.SumExpenses(ctx, core.MonthRange(core.NewDate(2022, 5, 1)))
		require.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.Zero(t, count)
	})

	t.Run("breakdown", func(t *testing.T) {
		breakdown, err := repo.CategoryBreakdown(ctx, january)
		require.NoError(t, err)
		require.Len(t, breakdown, 2)
		assert.Equal(t, "Food", breakdown[0].Category.Name)
		assert.Equal(t, int64(4250), breakdown[0].Total.Cents)
		assert.Equal(t, int64(2), breakdown[0].Count)
		assert.Equal(t, "Travel", breakdown[1].Category.Name)
	})

	t.Run("top categories are all time", func(t *testing.T) {
		top, err := repo.TopCategories(ctx, 5)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Travel", top[0].Category.Name)
		assert.Equal(t, int64(24000), top[0].Total.Cents)
	})

	t.Run("recent", func(t *testing.T) {
		recent, err := repo.RecentExpenses(ctx, january, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Train", "Dinner", "Lunch"}, titles(recent))
	})

	t.Run("daily", func(t *testing.T) {
		daily, err := repo.DailyTotals(ctx, core.DateRange{Start: core.NewDate(2023, 12, 14), End: core.NewDate(2024, 1, 12)})
		require.NoError(t, err)
		require.Len(t, daily, 3)
		assert.Equal(t, "2023-12-30", daily[0].Date.String())
		assert.Equal(t, "2024-01-10", daily[1].Date.String())
		assert.Equal(t, int64(4250), daily[1].Total.Cents)
	})

	t.Run("monthly", func(t *testing.T) {
		months, err := repo.MonthlyTotals(ctx, 2024)
		require.NoError(t, err)
		require.Len(t, months, 1)
		assert.Equal(t, MonthTotal{Month: 1, Total: core.Money{Cents: 8250}, Count: 3}, months[0])
	})
}
