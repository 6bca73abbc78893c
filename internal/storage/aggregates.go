package storage

import (
	"context"
	"fmt"
	"strconv"

	"spendlog/internal/core"
)

// CategoryTotal is the spend of one category over some period.
type CategoryTotal struct {
	Category core.CategoryRef
	Total    core.Money
	Count    int64
}

// DailyTotal is the spend of one calendar day.
type DailyTotal struct {
	Date  core.Date
	Total core.Money
}

// MonthTotal is the spend of one calendar month.
type MonthTotal struct {
	Month int
	Total core.Money
	Count int64
}

// SumExpenses returns the total and count of expenses dated within rng.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, rng core.DateRange) (core.Money, int64, error) {
	var total core.Money
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses WHERE expense_date BETWEEN ? AND ?`,
		rng.Start.String(), rng.End.String()).Scan(&total.Cents, &count)
	if err != nil {
		return core.Money{}, 0, fmt.Errorf("sum expenses %s..%s: %w", rng.Start, rng.End, err)
	}
	return total, count, nil
}

func (r *SQLiteRepository) queryCategoryTotals(ctx context.Context, query string, args ...any) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]CategoryTotal, 0)
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category.ID, &ct.Category.Name, &ct.Category.Color, &ct.Total.Cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// CategoryBreakdown returns per-category totals within rng, largest first.
// Categories without expenses in rng are omitted.
func (r *SQLiteRepository) CategoryBreakdown(ctx context.Context, rng core.DateRange) ([]CategoryTotal, error) {
	totals, err := r.queryCategoryTotals(ctx,
		`SELECT c.id, c.name, c.color, SUM(e.amount_cents) AS total, COUNT(*)
		 FROM expenses e JOIN categories c ON c.id = e.category_id
		 WHERE e.expense_date BETWEEN ? AND ?
		 GROUP BY c.id, c.name, c.color
		 ORDER BY total DESC, c.id ASC`,
		rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return totals, nil
}

// TopCategories returns the limit categories with the highest all-time spend.
func (r *SQLiteRepository) TopCategories(ctx context.Context, limit int) ([]CategoryTotal, error) {
	totals, err := r.queryCategoryTotals(ctx,
		`SELECT c.id, c.name, c.color, SUM(e.amount_cents) AS total, COUNT(e.id)
		 FROM categories c JOIN expenses e ON e.category_id = c.id
		 GROUP BY c.id, c.name, c.color
		 ORDER BY total DESC, c.id ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return totals, nil
}

// RecentExpenses returns the limit latest expenses within rng, by expense
// date then creation time, newest first.
func (r *SQLiteRepository) RecentExpenses(ctx context.Context, rng core.DateRange, limit int) ([]core.Expense, error) {
	expenses, err := r.queryExpenses(ctx,
		`SELECT `+expenseColumns+expenseFrom+`
		 WHERE e.expense_date BETWEEN ? AND ?
		 ORDER BY e.expense_date DESC, e.created_at DESC, e.id DESC
		 LIMIT ?`,
		rng.Start.String(), rng.End.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	return expenses, nil
}

// DailyTotals returns one entry per day with expenses in rng, ascending.
func (r *SQLiteRepository) DailyTotals(ctx context.Context, rng core.DateRange) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_date, SUM(amount_cents) FROM expenses
		 WHERE expense_date BETWEEN ? AND ?
		 GROUP BY expense_date ORDER BY expense_date ASC`,
		rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	totals := make([]DailyTotal, 0)
	for rows.Next() {
		var (
			day string
			dt  DailyTotal
		)
		if err := rows.Scan(&day, &dt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		if dt.Date, err = parseStoredDate(day); err != nil {
			return nil, err
		}
		totals = append(totals, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}
	return totals, nil
}

// MonthlyTotals returns totals for the months of year that have expenses.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, year int) ([]MonthTotal, error) {
	rng := core.DateRange{Start: core.NewDate(year, 1, 1), End: core.NewDate(year, 12, 31)}
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(expense_date, 6, 2) AS month, SUM(amount_cents), COUNT(*) FROM expenses
		 WHERE expense_date BETWEEN ? AND ?
		 GROUP BY month ORDER BY month ASC`,
		rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, fmt.Errorf("monthly totals %d: %w", year, err)
	}
	defer rows.Close()

	totals := make([]MonthTotal, 0, 12)
	for rows.Next() {
		var (
			month string
			mt    MonthTotal
		)
		if err := rows.Scan(&month, &mt.Total.Cents, &mt.Count); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		if mt.Month, err = strconv.Atoi(month); err != nil {
			return nil, fmt.Errorf("parse month %q: %w", month, err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month totals: %w", err)
	}
	return totals, nil
}
