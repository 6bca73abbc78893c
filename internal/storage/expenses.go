package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"spendlog/internal/core"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100

	// MaxPage keeps the row offset of any page within int64.
	MaxPage = math.MaxInt64 / MaxPerPage
)

// sortColumns maps public sort keys to columns.
var sortColumns = map[string]string{
	"expense_date": "e.expense_date",
	"amount":       "e.amount_cents",
	"title":        "e.title",
	"created_at":   "e.created_at",
}

const expenseColumns = `e.id, e.title, e.description, e.amount_cents, e.expense_date, e.category_id,
	e.created_at, e.updated_at, c.id, c.name, c.color`

const expenseFrom = ` FROM expenses e JOIN categories c ON c.id = e.category_id`

// ExpenseFilter narrows, orders and pages an expense listing. Zero values
// mean "no constraint"; Normalize fills in defaults.
type ExpenseFilter struct {
	StartDate  *core.Date
	EndDate    *core.Date
	CategoryID int64
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	PerPage    int
}

// Normalize applies the listing defaults: unknown sort keys fall back to
// expense_date, any direction other than asc is desc, per-page is clamped.
func (f ExpenseFilter) Normalize() ExpenseFilter {
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = "expense_date"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		f.SortOrder = "asc"
	} else {
		f.SortOrder = "desc"
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// where renders the conjunction of the active filters.
func (f ExpenseFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.StartDate != nil {
		clauses = append(clauses, "e.expense_date >= ?")
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		clauses = append(clauses, "e.expense_date <= ?")
		args = append(args, f.EndDate.String())
	}
	if f.CategoryID > 0 {
		clauses = append(clauses, "e.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		clauses = append(clauses, `(`+lowerFunc+`(e.title) LIKE ? ESCAPE '\' OR `+lowerFunc+`(e.description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (f ExpenseFilter) orderBy() string {
	return " ORDER BY " + sortColumns[f.SortBy] + " " + strings.ToUpper(f.SortOrder) + ", e.id ASC"
}

// ExpensePage is one page of a filtered listing.
type ExpensePage struct {
	Expenses []core.Expense
	Total    int64
	Page     int
	PerPage  int
}

// LastPage is the index of the final page, at least 1.
func (p ExpensePage) LastPage() int {
	if p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// From is the 1-based position of the first row on the page; 0 when empty.
func (p ExpensePage) From() int64 {
	if len(p.Expenses) == 0 {
		return 0
	}
	return int64(p.Page-1)*int64(p.PerPage) + 1
}

// To is the 1-based position of the last row on the page; 0 when empty.
func (p ExpensePage) To() int64 {
	if len(p.Expenses) == 0 {
		return 0
	}
	return p.From() + int64(len(p.Expenses)) - 1
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                    core.Expense
		desc                 sql.NullString
		date                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.Title, &desc, &e.Amount.Cents, &date, &e.CategoryID,
		&createdAt, &updatedAt, &e.Category.ID, &e.Category.Name, &e.Category.Color)
	if err != nil {
		return core.Expense{}, err
	}
	e.Description = stringPtr(desc)

	if e.ExpenseDate, err = parseStoredDate(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListExpenses returns the page of expenses selected by f.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f ExpenseFilter) (ExpensePage, error) {
	f = f.Normalize()
	where, args := f.where()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+expenseFrom+where, args...).Scan(&total); err != nil {
		return ExpensePage{}, fmt.Errorf("count expenses: %w", err)
	}

	offset := int64(f.Page-1) * int64(f.PerPage)
	query := `SELECT ` + expenseColumns + expenseFrom + where + f.orderBy() + ` LIMIT ? OFFSET ?`
	expenses, err := r.queryExpenses(ctx, query, append(args, f.PerPage, offset)...)
	if err != nil {
		return ExpensePage{}, fmt.Errorf("list expenses: %w", err)
	}

	return ExpensePage{Expenses: expenses, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// GetExpense returns expense id with its category, or core.ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+expenseFrom+` WHERE e.id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// CreateExpense inserts an expense and returns it with its category.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, f core.ExpenseFields) (core.Expense, error) {
	ts := r.timestamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, description, amount_cents, expense_date, category_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Title, nullString(f.Description), f.Amount.Cents, f.ExpenseDate.String(), f.CategoryID, ts, ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Expense{}, categoryMissing()
		}
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read expense id: %w", err)
	}
	return r.GetExpense(ctx, id)
}

// UpdateExpense replaces the attributes of expense id.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, f core.ExpenseFields) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, description = ?, amount_cents = ?, expense_date = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		f.Title, nullString(f.Description), f.Amount.Cents, f.ExpenseDate.String(), f.CategoryID, r.timestamp(), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Expense{}, categoryMissing()
		}
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return r.GetExpense(ctx, id)
}

// DeleteExpense removes expense id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// categoryMissing covers a category deleted between validation and write.
func categoryMissing() error {
	ve := core.NewValidationError()
	ve.Add("category_id", core.MsgCategoryNotExisting)
	return ve
}
