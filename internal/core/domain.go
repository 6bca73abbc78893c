package core

import (
	"time"
)

type (
	// Category is a named, colored label used to classify expenses.
	Category struct {
		ID            int64     `json:"id"`
		Name          string    `json:"name"`
		Color         string    `json:"color"`
		Description   *string   `json:"description"`
		ExpensesCount int64     `json:"expenses_count"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	// CategoryRef is the slice of a category embedded in expense payloads.
	CategoryRef struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Expense is a single monetary transaction belonging to exactly one category.
	Expense struct {
		ID          int64       `json:"id"`
		Title       string      `json:"title"`
		Description *string     `json:"description"`
		Amount      Money       `json:"amount"`
		ExpenseDate Date        `json:"expense_date"`
		CategoryID  int64       `json:"category_id"`
		Category    CategoryRef `json:"category"`
		CreatedAt   time.Time   `json:"created_at"`
		UpdatedAt   time.Time   `json:"updated_at"`
	}

	// CategoryFields holds validated, normalized category attributes ready to persist.
	CategoryFields struct {
		Name        string
		Color       string
		Description *string
	}

	// ExpenseFields holds validated, normalized expense attributes ready to persist.
	ExpenseFields struct {
		Title       string
		Description *string
		Amount      Money
		ExpenseDate Date
		CategoryID  int64
	}
)

// Ref returns the embeddable view of the category.
func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
}
