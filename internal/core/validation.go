package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength                = 255
	MaxTitleLength               = 255
	MaxCategoryDescriptionLength = 500
	MaxExpenseDescriptionLength  = 1000
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validation messages shared with API clients.
const (
	MsgCategoryNameRequired = "Category name is required"
	MsgCategoryNameTaken    = "Category name already exists"
	MsgColorRequired        = "Color is required"
	MsgColorInvalid         = "Color must be a valid hex color (e.g., #FF5733)"

	MsgTitleRequired       = "Expense title is required"
	MsgAmountRequired      = "The amount field is required."
	MsgAmountNotNumeric    = "The amount must be a number."
	MsgAmountTooSmall      = "Amount must be greater than 0"
	MsgAmountTooLarge      = "Amount cannot exceed 99,999,999.99"
	MsgDateRequired        = "The expense date field is required."
	MsgDateInvalid         = "The expense date is not a valid date."
	MsgDateInFuture        = "Expense date cannot be in the future"
	MsgCategoryIDRequired  = "The category id field is required."
	MsgCategoryNotExisting = "Selected category does not exist"

	MsgCategoryHasExpenses = "Cannot delete category that has expenses. Please delete or move the expenses first."
)

// CategoryInput is the raw, untrusted category payload.
type CategoryInput struct {
	Name        string
	Color       string
	Description string
}

// ExpenseInput is the raw, untrusted expense payload. Every field is kept
// as text so that type errors are reported per field.
type ExpenseInput struct {
	Title       string
	Description string
	Amount      string
	ExpenseDate string
	CategoryID  string
}

func maxLengthMessage(field string, max int) string {
	return fmt.Sprintf("The %s may not be greater than %d characters.", field, max)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ValidateCategory checks the field rules that need no store access.
// Name uniqueness is checked by the caller and added to the same error.
func ValidateCategory(in CategoryInput) (CategoryFields, *ValidationError) {
	ve := NewValidationError()
	out := CategoryFields{
		Name:        strings.TrimSpace(in.Name),
		Color:       strings.TrimSpace(in.Color),
		Description: optional(strings.TrimSpace(in.Description)),
	}

	if out.Name == "" {
		ve.Add("name", MsgCategoryNameRequired)
	} else if utf8.RuneCountInString(out.Name) > MaxNameLength {
		ve.Add("name", maxLengthMessage("name", MaxNameLength))
	}

	if out.Color == "" {
		ve.Add("color", MsgColorRequired)
	} else if !hexColorPattern.MatchString(out.Color) {
		ve.Add("color", MsgColorInvalid)
	}

	if out.Description != nil && utf8.RuneCountInString(*out.Description) > MaxCategoryDescriptionLength {
		ve.Add("description", maxLengthMessage("description", MaxCategoryDescriptionLength))
	}

	return out, ve
}

// ValidateExpense checks the field rules that need no store access.
// today bounds expense_date. A category_id that parses to a positive
// integer is returned as-is; its existence is checked by the caller.
func ValidateExpense(in ExpenseInput, today Date) (ExpenseFields, *ValidationError) {
	ve := NewValidationError()
	out := ExpenseFields{
		Title:       strings.TrimSpace(in.Title),
		Description: optional(strings.TrimSpace(in.Description)),
	}

	if out.Title == "" {
		ve.Add("title", MsgTitleRequired)
	} else if utf8.RuneCountInString(out.Title) > MaxTitleLength {
		ve.Add("title", maxLengthMessage("title", MaxTitleLength))
	}

	if out.Description != nil && utf8.RuneCountInString(*out.Description) > MaxExpenseDescriptionLength {
		ve.Add("description", maxLengthMessage("description", MaxExpenseDescriptionLength))
	}

	if amountStr := strings.TrimSpace(in.Amount); amountStr == "" {
		ve.Add("amount", MsgAmountRequired)
	} else if amount, err := ParseAmount(amountStr); err != nil {
		ve.Add("amount", MsgAmountNotNumeric)
	} else if amount.LessThan(MinAmount) {
		ve.Add("amount", MsgAmountTooSmall)
	} else if amount.GreaterThan(MaxAmount) {
		ve.Add("amount", MsgAmountTooLarge)
	} else {
		out.Amount = MoneyFromDecimal(amount)
	}

	if dateStr := strings.TrimSpace(in.ExpenseDate); dateStr == "" {
		ve.Add("expense_date", MsgDateRequired)
	} else if d, err := ParseDate(dateStr); err != nil {
		ve.Add("expense_date", MsgDateInvalid)
	} else if d.After(today) {
		ve.Add("expense_date", MsgDateInFuture)
	} else {
		out.ExpenseDate = d
	}

	if idStr := strings.TrimSpace(in.CategoryID); idStr == "" {
		ve.Add("category_id", MsgCategoryIDRequired)
	} else if id, err := strconv.ParseInt(idStr, 10, 64); err != nil || id < 1 {
		ve.Add("category_id", MsgCategoryNotExisting)
	} else {
		out.CategoryID = id
	}

	return out, ve
}
