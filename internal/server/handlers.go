package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendcast/backend/internal/forecast"
)

// horizonKeys maps horizon lengths to their wire names.
var horizonKeys = map[int]string{
	1:  "1_month",
	3:  "3_months",
	6:  "6_months",
	9:  "9_months",
	12: "1_year",
}

type forecastHandler struct {
	svc *forecast.Service
}

func newForecastHandler(svc *forecast.Service) *forecastHandler {
	return &forecastHandler{svc: svc}
}

type forecastRequest struct {
	Transactions []forecast.Transaction `json:"transactions"`
	// ExpenseHistory is a shorthand input: YYYY-MM month keys mapped to that
	// month's total spend.
	ExpenseHistory   map[string]decimal.Decimal `json:"expense_history"`
	ForecastCurrency string                     `json:"forecast_currency"`
	Language         string                     `json:"language"`
}

type forecastResponse struct {
	ForecastSummary     map[string]float64    `json:"forecast_summary"`
	ConfidenceIntervals map[string][2]float64 `json:"confidence_intervals"`
	Currency            string                `json:"currency"`
	Note                string                `json:"note"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *forecastHandler) forecastExpenses(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	transactions := req.Transactions
	if len(transactions) == 0 && len(req.ExpenseHistory) > 0 {
		transactions = expandHistory(req.ExpenseHistory)
	}

	result, err := h.svc.GetOrCompute(r.Context(), transactions, req.ForecastCurrency, req.Language)
	if err != nil {
		status, resp := mapPipelineError(err)
		logger.Warn().Err(err).Int("status", status).Msg("forecast request failed")
		writeJSON(w, status, resp)
		return
	}

	resp := forecastResponse{
		ForecastSummary:     make(map[string]float64, len(result.Horizons)),
		ConfidenceIntervals: make(map[string][2]float64, len(result.Horizons)),
		Currency:            result.Currency,
		Note:                result.Narrative,
	}
	for _, hz := range result.Horizons {
		key := horizonKeys[hz.Months]
		resp.ForecastSummary[key] = round2(hz.Total)
		resp.ConfidenceIntervals[key] = [2]float64{round2(hz.Lower), round2(hz.Upper)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// expandHistory turns the month→amount shorthand into first-of-month
// transactions, sorted for determinism.
func expandHistory(history map[string]decimal.Decimal) []forecast.Transaction {
	months := make([]string, 0, len(history))
	for month := range history {
		months = append(months, month)
	}
	sort.Strings(months)

	transactions := make([]forecast.Transaction, 0, len(months))
	for _, month := range months {
		transactions = append(transactions, forecast.Transaction{
			Date:     month + "-01",
			Amount:   history[month],
			Category: "General",
		})
	}
	return transactions
}

func mapPipelineError(err error) (int, errorResponse) {
	var pipeErr *forecast.Error
	if !errors.As(err, &pipeErr) {
		return http.StatusInternalServerError, errorResponse{Error: "forecast failed"}
	}
	status := http.StatusBadRequest
	if pipeErr.Code == forecast.ErrForecastFailed {
		status = http.StatusInternalServerError
	}
	return status, errorResponse{Error: pipeErr.Message, Code: string(pipeErr.Code)}
}

// round2 rounds a monetary value to 2 decimal places at the boundary.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
