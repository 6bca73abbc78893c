package services

import (
	"context"
	"strconv"
	"testing"

	"spendlog/internal/amqp"
	"spendlog/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	store := newTestStore(t)
	pub := &recordingPublisher{}
	svc := NewCategoryService(store, NewEventPublisher(pub, nil))
	ctx := context.Background()

	c, err := svc.Create(ctx, core.CategoryInput{Name: "Food", Color: "#EF4444"})
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)
	assert.Zero(t, c.ExpensesCount)
	assert.Equal(t, []amqp.EventType{amqp.CategoryCreated}, pub.types())

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CategoryInput{Name: "Food", Color: "#000000"})
		assert.Equal(t, map[string][]string{"name": {core.MsgCategoryNameTaken}}, validationFields(t, err))
	})

	t.Run("all violations at once", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CategoryInput{Color: "red"})
		fields := validationFields(t, err)
		assert.Equal(t, []string{core.MsgCategoryNameRequired}, fields["name"])
		assert.Equal(t, []string{core.MsgColorInvalid}, fields["color"])
	})
}

func TestCategoryService_Update(t *testing.T) {
	store := newTestStore(t)
	svc := NewCategoryService(store, nil)
	ctx := context.Background()

	food, err := svc.Create(ctx, core.CategoryInput{Name: "Food", Color: "#EF4444"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, core.CategoryInput{Name: "Travel", Color: "#84CC16"})
	require.NoError(t, err)

	t.Run("keeping own name is allowed", func(t *testing.T) {
		updated, err := svc.Update(ctx, food.ID, core.CategoryInput{Name: "Food", Color: "#111111", Description: "meals"})
		require.NoError(t, err)
		assert.Equal(t, "#111111", updated.Color)
		require.NotNil(t, updated.Description)
	})

	t.Run("taking another name is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, food.ID, core.CategoryInput{Name: "Travel", Color: "#111111"})
		assert.Equal(t, []string{core.MsgCategoryNameTaken}, validationFields(t, err)["name"])
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, core.CategoryInput{Name: "X", Color: "#111111"})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	store := newTestStore(t)
	pub := &recordingPublisher{}
	events := NewEventPublisher(pub, nil)
	categories := NewCategoryService(store, events)
	expenses := newExpenseService(store, events)
	ctx := context.Background()

	food, err := categories.Create(ctx, core.CategoryInput{Name: "Food", Color: "#EF4444"})
	require.NoError(t, err)
	lunch, err := expenses.Create(ctx, core.ExpenseInput{
		Title: "Lunch", Amount: "12.50", ExpenseDate: "2024-03-01", CategoryID: strconv.FormatInt(food.ID, 10),
	})
	require.NoError(t, err)

	err = categories.Delete(ctx, food.ID)
	require.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, core.MsgCategoryHasExpenses, err.Error())

	got, err := categories.Get(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ExpensesCount)

	require.NoError(t, expenses.Delete(ctx, lunch.ID))
	require.NoError(t, categories.Delete(ctx, food.ID))
	assert.ErrorIs(t, categories.Delete(ctx, food.ID), core.ErrNotFound)

	assert.Equal(t, []amqp.EventType{
		amqp.CategoryCreated, amqp.ExpenseCreated, amqp.ExpenseDeleted, amqp.CategoryDeleted,
	}, pub.types())
}

func TestCategoryService_List(t *testing.T) {
	store := newTestStore(t)
	svc := NewCategoryService(store, nil)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"Zoo", "Apple", "Mango"} {
		_, err := svc.Create(ctx, core.CategoryInput{Name: name, Color: "#123456"})
		require.NoError(t, err)
	}

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Apple", list[0].Name)
	assert.Equal(t, "Zoo", list[2].Name)
}
