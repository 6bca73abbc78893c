package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendlog/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	// Every call advances one second so created_at is strictly increasing.
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func mustCategory(t *testing.T, repo *SQLiteRepository, name, color string) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.CategoryFields{Name: name, Color: color})
	require.NoError(t, err)
	return c
}

func mustExpense(t *testing.T, repo *SQLiteRepository, categoryID int64, title string, cents int64, date core.Date) core.Expense {
	t.Helper()
	e, err := repo.CreateExpense(context.Background(), core.ExpenseFields{
		Title:       title,
		Amount:      core.Money{Cents: cents},
		ExpenseDate: date,
		CategoryID:  categoryID,
	})
	require.NoError(t, err)
	return e
}

func TestNewSQLiteRepository_AppliesMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "spendlog.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Ping(context.Background()))

	version, dirty, err := SchemaVersion(DSN(dbPath))
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	again, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	again.Close()
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	desc := "Groceries and restaurants"
	food, err := repo.CreateCategory(ctx, core.CategoryFields{Name: "Food", Color: "#EF4444", Description: &desc})
	require.NoError(t, err)
	assert.NotZero(t, food.ID)
	assert.Equal(t, "Food", food.Name)
	require.NotNil(t, food.Description)
	assert.Equal(t, desc, *food.Description)
	assert.Zero(t, food.ExpensesCount)
	assert.False(t, food.CreatedAt.IsZero())

	mustCategory(t, repo, "Bills", "#10B981")

	t.Run("list is ordered by name", func(t *testing.T) {
		list, err := repo.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Bills", list[0].Name)
		assert.Equal(t, "Food", list[1].Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.CreateCategory(ctx, core.CategoryFields{Name: "Food", Color: "#000000"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := repo.UpdateCategory(ctx, food.ID, core.CategoryFields{Name: "Dining", Color: "#ef4444"})
		require.NoError(t, err)
		assert.Equal(t, "Dining", updated.Name)
		assert.Nil(t, updated.Description)
		assert.True(t, updated.UpdatedAt.After(food.UpdatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := repo.UpdateCategory(ctx, 9999, core.CategoryFields{Name: "X", Color: "#000000"})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("name exists excludes own id", func(t *testing.T) {
		exists, err := repo.CategoryNameExists(ctx, "Dining", food.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.CategoryNameExists(ctx, "Dining", 0)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.GetCategory(ctx, 9999)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteCategory(ctx, food.ID))
		assert.ErrorIs(t, repo.DeleteCategory(ctx, food.ID), core.ErrNotFound)

		exists, err := repo.CategoryExists(ctx, food.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestDeleteCategory_RestrictedByForeignKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	food := mustCategory(t, repo, "Food", "#EF4444")
	mustExpense(t, repo, food.ID, "Lunch", 1250, core.NewDate(2024, 1, 10))

	n, err := repo.CountCategoryExpenses(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetCategory(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ExpensesCount)

	err = repo.DeleteCategory(ctx, food.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConflict))
	assert.Equal(t, core.MsgCategoryHasExpenses, err.Error())
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateExpense(context.Background(), core.ExpenseFields{
		Title:       "Orphan",
		Amount:      core.Money{Cents: 100},
		ExpenseDate: core.NewDate(2024, 1, 1),
		CategoryID:  42,
	})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{core.MsgCategoryNotExisting}, ve.Fields["category_id"])
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	food := mustCategory(t, repo, "Food", "#EF4444")
	travel := mustCategory(t, repo, "Travel", "#84CC16")

	lunch := mustExpense(t, repo, food.ID, "Lunch", 1250, core.NewDate(2024, 1, 10))
	assert.Equal(t, "12.50", lunch.Amount.String())
	assert.Equal(t, "2024-01-10", lunch.ExpenseDate.String())
	assert.Equal(t, core.CategoryRef{ID: food.ID, Name: "Food", Color: "#EF4444"}, lunch.Category)

	desc := "moved"
	updated, err := repo.UpdateExpense(ctx, lunch.ID, core.ExpenseFields{
		Title:       "Train",
		Description: &desc,
		Amount:      core.Money{Cents: 4000},
		ExpenseDate: core.NewDate(2024, 1, 11),
		CategoryID:  travel.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Train", updated.Title)
	assert.Equal(t, "Travel", updated.Category.Name)
	require.NotNil(t, updated.Description)

	_, err = repo.UpdateExpense(ctx, 9999, core.ExpenseFields{
		Title: "x", Amount: core.Money{Cents: 1}, ExpenseDate: core.NewDate(2024, 1, 1), CategoryID: food.ID,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.DeleteExpense(ctx, lunch.ID))
	_, err = repo.GetExpense(ctx, lunch.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, lunch.ID), core.ErrNotFound)
}

func TestSeedCategories_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCategory(t, repo, "Other", "#000000")

	n, err := repo.SeedCategories(ctx, core.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, len(core.DefaultCategories())-1, n)

	n, err = repo.SeedCategories(ctx, core.DefaultCategories())
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(core.DefaultCategories()))
	for _, c := range list {
		if c.Name == "Other" {
			assert.Equal(t, "#000000", c.Color, "existing category must not be overwritten")
		}
	}
}
