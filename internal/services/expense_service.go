package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/storage"
)

// ExpenseStore is the persistence needed by ExpenseService.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) (storage.ExpensePage, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	CreateExpense(ctx context.Context, f core.ExpenseFields) (core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, f core.ExpenseFields) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// ExpenseQuery holds the raw listing parameters as received.
type ExpenseQuery struct {
	StartDate  string
	EndDate    string
	CategoryID string
	Search     string
	SortBy     string
	SortOrder  string
	Page       string
	PerPage    string
}

// Filter converts q to a store filter. Unparsable values are treated as
// absent, so a malformed parameter widens the listing instead of failing it.
func (q ExpenseQuery) Filter() storage.ExpenseFilter {
	f := storage.ExpenseFilter{
		Search:    q.Search,
		SortBy:    strings.TrimSpace(q.SortBy),
		SortOrder: strings.TrimSpace(q.SortOrder),
	}
	if d, err := core.ParseDate(q.StartDate); err == nil {
		f.StartDate = &d
	}
	if d, err := core.ParseDate(q.EndDate); err == nil {
		f.EndDate = &d
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.CategoryID), 10, 64); err == nil {
		f.CategoryID = id
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil {
		f.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.PerPage)); err == nil {
		f.PerPage = n
	}
	return f.Normalize()
}

// ExpenseService orchestrates expense validation, persistence and change events.
type ExpenseService struct {
	store    ExpenseStore
	events   *EventPublisher
	onChange []func()
	now      func() time.Time
	logger   *log.Logger
}

func NewExpenseService(store ExpenseStore, events *EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log.WithComponent(log.ComponentExpense),
	}
}

// OnChange registers fn to run after every successful write.
func (s *ExpenseService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *ExpenseService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

// List returns one page of expenses matching q.
func (s *ExpenseService) List(ctx context.Context, q ExpenseQuery) (storage.ExpensePage, error) {
	page, err := s.store.ListExpenses(ctx, q.Filter())
	if err != nil {
		return storage.ExpensePage{}, fmt.Errorf("list expenses: %w", err)
	}
	return page, nil
}

// Get returns one expense or core.ErrNotFound.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) validate(ctx context.Context, in core.ExpenseInput) (core.ExpenseFields, error) {
	fields, ve := core.ValidateExpense(in, core.DateOf(s.now()))
	if fields.CategoryID > 0 && !ve.Has("category_id") {
		exists, err := s.store.CategoryExists(ctx, fields.CategoryID)
		if err != nil {
			return core.ExpenseFields{}, fmt.Errorf("check category: %w", err)
		}
		if !exists {
			ve.Add("category_id", core.MsgCategoryNotExisting)
		}
	}
	return fields, ve.Err()
}

// Create validates in and stores a new expense.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	fields, err := s.validate(ctx, in)
	if err != nil {
		return core.Expense{}, err
	}

	e, err := s.store.CreateExpense(ctx, fields)
	if err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.FieldID, e.ID,
		log.FieldAmount, e.Amount.String(),
		log.FieldCategoryID, e.CategoryID)
	s.changed()
	s.events.Emit(ctx, amqp.ExpenseCreated, e.ID, e)
	return e, nil
}

// Update validates in and replaces expense id.
func (s *ExpenseService) Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	if _, err := s.store.GetExpense(ctx, id); err != nil {
		return core.Expense{}, err
	}

	fields, err := s.validate(ctx, in)
	if err != nil {
		return core.Expense{}, err
	}

	e, err := s.store.UpdateExpense(ctx, id, fields)
	if err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense updated", log.FieldID, e.ID)
	s.changed()
	s.events.Emit(ctx, amqp.ExpenseUpdated, e.ID, e)
	return e, nil
}

// Delete removes expense id.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted", log.FieldID, id)
	s.changed()
	s.events.Emit(ctx, amqp.ExpenseDeleted, id, nil)
	return nil
}
