package services

import (
	"context"
	"errors"
	"fmt"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/storage"
)

// CategoryStore is the persistence needed by CategoryService.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, f core.CategoryFields) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, f core.CategoryFields) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountCategoryExpenses(ctx context.Context, id int64) (int64, error)
}

// CategoryService validates and persists categories.
type CategoryService struct {
	store  CategoryStore
	events *EventPublisher
	logger *log.Logger
}

func NewCategoryService(store CategoryStore, events *EventPublisher) *CategoryService {
	return &CategoryService{
		store:  store,
		events: events,
		logger: log.WithComponent(log.ComponentCategory),
	}
}

// List returns all categories by name with their expense counts.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// Get returns one category or core.ErrNotFound.
func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// validate runs the field rules plus name uniqueness, excluding excludeID.
func (s *CategoryService) validate(ctx context.Context, in core.CategoryInput, excludeID int64) (core.CategoryFields, error) {
	fields, ve := core.ValidateCategory(in)
	if !ve.Has("name") {
		taken, err := s.store.CategoryNameExists(ctx, fields.Name, excludeID)
		if err != nil {
			return core.CategoryFields{}, fmt.Errorf("check category name: %w", err)
		}
		if taken {
			ve.Add("name", core.MsgCategoryNameTaken)
		}
	}
	return fields, ve.Err()
}

func nameTaken() error {
	ve := core.NewValidationError()
	ve.Add("name", core.MsgCategoryNameTaken)
	return ve
}

// Create validates in and stores a new category.
func (s *CategoryService) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	fields, err := s.validate(ctx, in, 0)
	if err != nil {
		return core.Category{}, err
	}

	c, err := s.store.CreateCategory(ctx, fields)
	if errors.Is(err, storage.ErrDuplicateName) {
		// Lost a race with a concurrent create.
		return core.Category{}, nameTaken()
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "Category created", log.FieldID, c.ID, "name", c.Name)
	s.events.Emit(ctx, amqp.CategoryCreated, c.ID, c)
	return c, nil
}

// Update validates in and replaces category id.
func (s *CategoryService) Update(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error) {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return core.Category{}, err
	}

	fields, err := s.validate(ctx, in, id)
	if err != nil {
		return core.Category{}, err
	}

	c, err := s.store.UpdateCategory(ctx, id, fields)
	if errors.Is(err, storage.ErrDuplicateName) {
		return core.Category{}, nameTaken()
	}
	if err != nil {
		return core.Category{}, err
	}

	s.logger.InfoContext(ctx, "Category updated", log.FieldID, c.ID)
	s.events.Emit(ctx, amqp.CategoryUpdated, c.ID, c)
	return c, nil
}

// Delete removes category id unless expenses still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return err
	}

	n, err := s.store.CountCategoryExpenses(ctx, id)
	if err != nil {
		return fmt.Errorf("count category expenses: %w", err)
	}
	if n > 0 {
		return &core.ConflictError{Message: core.MsgCategoryHasExpenses}
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted", log.FieldID, id)
	s.events.Emit(ctx, amqp.CategoryDeleted, id, nil)
	return nil
}
