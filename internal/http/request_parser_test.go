package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     bool
		want        map[string]string
	}{
		{
			name:        "json with numbers",
			contentType: "application/json",
			body:        `{"title":" Lunch ","amount":12.50,"category_id":3,"description":null}`,
			want:        map[string]string{"title": "Lunch", "amount": "12.50", "category_id": "3", "description": ""},
		},
		{
			name:        "json large integers keep precision",
			contentType: "application/json; charset=utf-8",
			body:        `{"amount":99999999.99}`,
			want:        map[string]string{"amount": "99999999.99"},
		},
		{
			name: "json without content type",
			body: `{"name":"Food"}`,
			want: map[string]string{"name": "Food", "color": ""},
		},
		{
			name:        "nested value keeps its json text",
			contentType: "application/json",
			body:        `{"amount":{"value":1}}`,
			want:        map[string]string{"amount": `{"value":1}`},
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Food&color=%23FF5733",
			want:        map[string]string{"name": "Food", "color": "#FF5733"},
		},
		{
			name:        "control characters stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "title=Lun%00ch",
			want:        map[string]string{"title": "Lunch"},
		},
		{
			name: "empty body",
			want: map[string]string{"name": ""},
		},
		{
			name:        "truncated json",
			contentType: "application/json",
			body:        `{"name":`,
			wantErr:     true,
		},
		{
			name:        "json array",
			contentType: "application/json",
			body:        `[1,2]`,
			wantErr:     true,
		},
		{
			name:        "declared json that is not json",
			contentType: "application/json",
			body:        `name=Food`,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(r)
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			for k, want := range tt.want {
				if got := p.Get(k); got != want {
					t.Errorf("Get(%q) = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestExpenseInput(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"title":"Lunch","description":"Pasta","amount":"7","expense_date":"2024-01-15","category_id":"2"}`))
	r.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}

	in := p.ExpenseInput()
	if in.Title != "Lunch" || in.Description != "Pasta" || in.Amount != "7" || in.ExpenseDate != "2024-01-15" || in.CategoryID != "2" {
		t.Errorf("ExpenseInput() = %+v", in)
	}
}

func TestParseExpenseQuery(t *testing.T) {
	q := url.Values{}
	q.Set("start_date", "2024-01-01")
	q.Set("end_date", " 2024-01-31 ")
	q.Set("category_id", "4")
	q.Set("search", "coffee")
	q.Set("sort_by", "amount")
	q.Set("sort_order", "asc")
	q.Set("page", "2")
	q.Set("per_page", "500")

	got := ParseExpenseQuery(q)
	if got.EndDate != "2024-01-31" || got.CategoryID != "4" || got.PerPage != "500" || got.SortBy != "amount" {
		t.Errorf("ParseExpenseQuery() = %+v", got)
	}

	f := got.Filter()
	if f.PerPage != 100 || f.Page != 2 || f.CategoryID != 4 || f.StartDate == nil {
		t.Errorf("Filter() = %+v", f)
	}
}

func TestPathParams(t *testing.T) {
	mux := http.NewServeMux()
	var (
		id     int64
		idOK   bool
		year   int
		yearOK bool
	)
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, idOK = PathID(r, "id")
	})
	mux.HandleFunc("GET /years/{year}", func(w http.ResponseWriter, r *http.Request) {
		year, yearOK = PathYear(r)
	})

	idTests := []struct {
		path string
		want int64
		ok   bool
	}{
		{"/things/12", 12, true},
		{"/things/0", 0, false},
		{"/things/-3", 0, false},
		{"/things/abc", 0, false},
		{"/things/1.5", 0, false},
	}
	for _, tt := range idTests {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		if id != tt.want || idOK != tt.ok {
			t.Errorf("%s: PathID = (%d, %v), want (%d, %v)", tt.path, id, idOK, tt.want, tt.ok)
		}
	}

	yearTests := []struct {
		path string
		want int
		ok   bool
	}{
		{"/years/2024", 2024, true},
		{"/years/24", 0, false},
		{"/years/20245", 0, false},
		{"/years/abcd", 0, false},
	}
	for _, tt := range yearTests {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		if year != tt.want || yearOK != tt.ok {
			t.Errorf("%s: PathYear = (%d, %v), want (%d, %v)", tt.path, year, yearOK, tt.want, tt.ok)
		}
	}
}
