package controllers

import (
	"net/http"

	"github.com/thouesa/thouesa-backend/api/responses"
	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

// AdminFinanceReport returns realized revenue between the optional start and
// end query params. A plain end date includes that whole day.
func AdminFinanceReport(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := parseDateQuery(r, "start", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := parseDateQuery(r, "end", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.RevenueReport(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func AdminDashboardSummary(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.DashboardSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
