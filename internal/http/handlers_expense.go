package http

import (
	"net/http"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

const (
	msgExpenseNotFound = "Expense not found"

	msgExpenseCreated = "Expense created successfully"
	msgExpenseUpdated = "Expense updated successfully"
	msgExpenseDeleted = "Expense deleted successfully"

	msgErrFetchExpenses = "Error fetching expenses"
	msgErrCreateExpense = "Error creating expense"
	msgErrFetchExpense  = "Error fetching expense"
	msgErrUpdateExpense = "Error updating expense"
	msgErrDeleteExpense = "Error deleting expense"
)

// expenseListResponse is the paginated listing envelope. From and To are
// null on an empty page.
type expenseListResponse struct {
	Data        []core.Expense `json:"data"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	LastPage    int            `json:"last_page"`
	From        *int64         `json:"from"`
	To          *int64         `json:"to"`
}

func newExpenseListResponse(page storage.ExpensePage) expenseListResponse {
	resp := expenseListResponse{
		Data:        page.Expenses,
		Total:       page.Total,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		LastPage:    page.LastPage(),
	}
	if resp.Data == nil {
		resp.Data = []core.Expense{}
	}
	if len(page.Expenses) > 0 {
		from, to := page.From(), page.To()
		resp.From, resp.To = &from, &to
	}
	return resp
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	page, err := s.expenses.List(ctx, ParseExpenseQuery(r.URL.Query()))
	if err != nil {
		s.errors.Write(w, r, err, msgExpenseNotFound, msgErrFetchExpenses)
		return
	}
	NewJSONResponse().Body(newExpenseListResponse(page)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	expense, err := s.expenses.Create(ctx, p.ExpenseInput())
	if err != nil {
		s.errors.Write(w, r, err, msgExpenseNotFound, msgErrCreateExpense)
		return
	}
	CreatedResponse(msgExpenseCreated, expense).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	expense, err := s.expenses.Get(ctx, id)
	if err != nil {
		s.errors.Write(w, r, err, msgExpenseNotFound, msgErrFetchExpense)
		return
	}
	DataResponse(expense).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}
	p := parseBody(w, r)
	if p == nil {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	expense, err := s.expenses.Update(ctx, id, p.ExpenseInput())
	if err != nil {
		s.errors.Write(w, r, err, msgExpenseNotFound, msgErrUpdateExpense)
		return
	}
	UpdatedResponse(msgExpenseUpdated, expense).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.expenses.Delete(ctx, id); err != nil {
		s.errors.Write(w, r, err, msgExpenseNotFound, msgErrDeleteExpense)
		return
	}
	MessageResponse(http.StatusOK, msgExpenseDeleted).Write(w)
}
