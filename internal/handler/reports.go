package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tavolo-pos/api/internal/database"
)

// ReportStore defines the database methods needed by report handlers.
type ReportStore interface {
	GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error)
	GetPaymentSummary(ctx context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error)
	GetItemSales(ctx context.Context, arg database.GetItemSalesParams) ([]database.GetItemSalesRow, error)
}

// ReportHandler handles sales reporting endpoints.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Routes are mounted under /outlets/{outletID}.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/daily-sales", h.DailySales)
	r.Get("/reports/payment-summary", h.PaymentSummary)
	r.Get("/reports/item-sales", h.ItemSales)
}

type dailySalesRow struct {
	Day           string `json:"day"`
	OrderCount    int64  `json:"order_count"`
	TotalRevenue  string `json:"total_revenue"`
	TotalDiscount string `json:"total_discount"`
	TotalTips     string `json:"total_tips"`
}

type paymentSummaryRow struct {
	Method           string `json:"method"`
	TransactionCount int64  `json:"transaction_count"`
	TotalAmount      string `json:"total_amount"`
}

type itemSalesRow struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	MenuItemName string    `json:"menu_item_name"`
	QuantitySold int64     `json:"quantity_sold"`
	TotalRevenue string    `json:"total_revenue"`
}

// parseReportWindow reads start/end query params. Defaults to the last 30
// days; end is exclusive.
func parseReportWindow(r *http.Request) (start, end time.Time, ok bool) {
	end = time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	start = end.AddDate(0, 0, -30)

	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		start = t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, start.Before(end)
}

// DailySales returns completed-order revenue grouped by day.
func (h *ReportHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	start, end, ok := parseReportWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end must be YYYY-MM-DD with start before end"})
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), database.GetDailySalesParams{
		OutletID:  outletID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: daily sales report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]dailySalesRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dailySalesRow{
			Day:           row.Day.Format("2006-01-02"),
			OrderCount:    row.OrderCount,
			TotalRevenue:  numericToString(row.TotalRevenue),
			TotalDiscount: numericToString(row.TotalDiscount),
			TotalTips:     numericToString(row.TotalTips),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// PaymentSummary returns completed payment volume grouped by method.
func (h *ReportHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	start, end, ok := parseReportWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end must be YYYY-MM-DD with start before end"})
		return
	}

	rows, err := h.store.GetPaymentSummary(r.Context(), database.GetPaymentSummaryParams{
		OutletID:  outletID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: payment summary report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]paymentSummaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, paymentSummaryRow{
			Method:           row.Method,
			TransactionCount: row.TransactionCount,
			TotalAmount:      numericToString(row.TotalAmount),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ItemSales returns what sold and how much it earned, best sellers first.
func (h *ReportHandler) ItemSales(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "outletID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet id"})
		return
	}
	start, end, ok := parseReportWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end must be YYYY-MM-DD with start before end"})
		return
	}

	rows, err := h.store.GetItemSales(r.Context(), database.GetItemSalesParams{
		OutletID:  outletID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: item sales report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]itemSalesRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, itemSalesRow{
			MenuItemID:   row.MenuItemID,
			MenuItemName: row.MenuItemName,
			QuantitySold: row.QuantitySold,
			TotalRevenue: numericToString(row.TotalRevenue),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
