package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendlog/internal/core"
)

const categoryColumns = `c.id, c.name, c.color, c.description, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM expenses e WHERE e.category_id = c.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c                    core.Category
		desc                 sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &desc, &createdAt, &updatedAt, &c.ExpensesCount); err != nil {
		return core.Category{}, err
	}
	c.Description = stringPtr(desc)

	var err error
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Category{}, err
	}
	if c.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// ListCategories returns every category ordered by name with its expense count.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c ORDER BY c.name ASC, c.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns the category with id, or core.ErrNotFound.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// CreateCategory inserts a category. A name collision yields ErrDuplicateName.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, f core.CategoryFields) (core.Category, error) {
	ts := r.timestamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		f.Name, f.Color, nullString(f.Description), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, ErrDuplicateName
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("read category id: %w", err)
	}
	return r.GetCategory(ctx, id)
}

// UpdateCategory replaces the attributes of category id.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, f core.CategoryFields) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, description = ?, updated_at = ? WHERE id = ?`,
		f.Name, f.Color, nullString(f.Description), r.timestamp(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, ErrDuplicateName
		}
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes category id. The foreign key refuses the delete
// while expenses reference it, which surfaces as a core.ConflictError.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &core.ConflictError{Message: core.MsgCategoryHasExpenses}
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CategoryExists reports whether a category with id exists.
func (r *SQLiteRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category %d: %w", id, err)
	}
	return exists, nil
}

// CategoryNameExists reports whether name is taken by a category other than excludeID.
// Pass 0 as excludeID to check against every category.
func (r *SQLiteRepository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE name = ? AND id != ?)`, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// CountCategoryExpenses returns how many expenses reference category id.
func (r *SQLiteRepository) CountCategoryExpenses(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expenses of category %d: %w", id, err)
	}
	return n, nil
}

// SeedCategories inserts every category whose name is not present yet and
// returns how many were added. Existing rows are left untouched.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, seeds []core.CategoryFields) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO categories (name, color, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare seed statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	ts := r.timestamp()
	for _, s := range seeds {
		res, err := stmt.ExecContext(ctx, s.Name, s.Color, nullString(s.Description), ts, ts)
		if err != nil {
			return 0, fmt.Errorf("seed category %q: %w", s.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}
	return inserted, nil
}
