package http

import (
	"net/http"
)

const (
	msgYearNotFound      = "Not found"
	msgDashboardNotFound = "Dashboard data not found"

	msgErrFetchDashboard    = "Error fetching dashboard data"
	msgErrFetchMonthlyStats = "Error fetching monthly statistics"
)

// handleDashboard returns the dashboard object itself, without a data wrapper.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	dash, err := s.dashboard.Dashboard(ctx, ParseDashboardQuery(r.URL.Query()))
	if err != nil {
		s.errors.Write(w, r, err, msgDashboardNotFound, msgErrFetchDashboard)
		return
	}
	NewJSONResponse().Body(dash).Write(w)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, ok := PathYear(r)
	if !ok {
		NotFoundError(msgYearNotFound).Write(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	stats, err := s.dashboard.MonthlyStats(ctx, year)
	if err != nil {
		s.errors.Write(w, r, err, msgYearNotFound, msgErrFetchMonthlyStats)
		return
	}
	NewJSONResponse().Body(stats).Write(w)
}
