package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
)

const dateLayout = "2006-01-02"

type transactionRequest struct {
	Type                  string `json:"type"`
	Amount                string `json:"amount"`
	Category              string `json:"category"`
	CreatedAt             string `json:"created_at,omitempty"`
	GoalID                string `json:"goal_id,omitempty"`
	CreditProductID       string `json:"credit_product_id,omitempty"`
	PaidByCreditProductID string `json:"paid_by_credit_product_id,omitempty"`
}

type transactionResponse struct {
	ID                    string `json:"id"`
	Type                  string `json:"type"`
	Amount                string `json:"amount"`
	AmountCents           int64  `json:"amount_cents"`
	Category              string `json:"category"`
	CreatedAt             string `json:"created_at,omitempty"`
	GoalID                string `json:"goal_id,omitempty"`
	CreditProductID       string `json:"credit_product_id,omitempty"`
	PaidByCreditProductID string `json:"paid_by_credit_product_id,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                    tx.ID,
		Type:                  string(tx.Type),
		Amount:                tx.Amount.String(),
		AmountCents:           tx.Amount.Cents,
		Category:              tx.Category,
		GoalID:                tx.GoalID,
		CreditProductID:       tx.CreditProductID,
		PaidByCreditProductID: tx.PaidByCreditProductID,
	}
	if !tx.CreatedAt.IsZero() {
		resp.CreatedAt = tx.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+req.Amount)
		return
	}

	tx := core.Transaction{
		Type:                  core.TransactionType(req.Type),
		Amount:                core.Money{Cents: cents},
		Category:              req.Category,
		GoalID:                req.GoalID,
		CreditProductID:       req.CreditProductID,
		PaidByCreditProductID: req.PaidByCreditProductID,
	}
	if req.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid created_at: must be RFC 3339")
			return
		}
		tx.CreatedAt = ts
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.txService.Create(r.Context(), tx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction create failed", log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}

	s.invalidateCaches()
	tx.ID = id
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txs []core.Transaction
		err error
	)
	if month := r.URL.Query().Get("month"); month != "" {
		if _, _, keyErr := core.ParseMonthKey(month); keyErr != nil {
			writeError(w, http.StatusBadRequest, "invalid month key: must be YYYY-MM")
			return
		}
		txs, err = s.stores.Transactions.GetTransactionsForMonth(r.Context(), month)
	} else {
		txs, err = s.stores.Transactions.GetAllTransactions(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.txService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

type goalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	Currency     string `json:"currency,omitempty"`
	Emoji        string `json:"emoji,omitempty"`
	Note         string `json:"note,omitempty"`
}

type goalResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Currency      string `json:"currency,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
	Emoji         string `json:"emoji,omitempty"`
	Note          string `json:"note,omitempty"`
}

func toGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Currency:      g.Currency,
		Status:        string(g.Status),
		Emoji:         g.Emoji,
		Note:          g.Note,
	}
	if !g.CreatedAt.IsZero() {
		resp.CreatedAt = g.CreatedAt.Format(time.RFC3339)
	}
	if !g.UpdatedAt.IsZero() {
		resp.UpdatedAt = g.UpdatedAt.Format(time.RFC3339)
	}
	if !g.CompletedAt.IsZero() {
		resp.CompletedAt = g.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.stores.Goals.GetAllGoals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target_amount: "+req.TargetAmount)
		return
	}

	now := time.Now()
	g := core.Goal{
		ID:           newID(),
		Name:         req.Name,
		TargetAmount: core.Money{Cents: cents},
		Currency:     req.Currency,
		Status:       core.GoalActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Emoji:        req.Emoji,
		Note:         req.Note,
	}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.stores.Goals.AppendGoal(r.Context(), g); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

type recurringRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Category  string `json:"category,omitempty"`
	Note      string `json:"note,omitempty"`
}

type recurringResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Category  string `json:"category,omitempty"`
	Note      string `json:"note,omitempty"`
}

func toRecurringResponse(rd core.RecurringDefinition) recurringResponse {
	resp := recurringResponse{
		ID:        rd.ID,
		Name:      rd.Name,
		Kind:      string(rd.Kind),
		Frequency: string(rd.Frequency),
		StartDate: rd.StartDate.Format(dateLayout),
		Type:      string(rd.Type),
		Amount:    rd.Amount.String(),
		Category:  rd.Category,
		Note:      rd.Note,
	}
	if !rd.EndDate.IsZero() {
		resp.EndDate = rd.EndDate.Format(dateLayout)
	}
	return resp
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	defs, err := s.stores.Recurring.GetAllDefinitions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]recurringResponse, 0, len(defs))
	for _, rd := range defs {
		out = append(out, toRecurringResponse(rd))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+req.Amount)
		return
	}
	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid start_date: must be YYYY-MM-DD")
		return
	}
	var end time.Time
	if req.EndDate != "" {
		end, err = time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid end_date: must be YYYY-MM-DD")
			return
		}
	}

	rd := core.RecurringDefinition{
		ID:        newID(),
		Name:      req.Name,
		Kind:      core.RecurringKind(req.Kind),
		Frequency: core.Frequency(req.Frequency),
		StartDate: start,
		EndDate:   end,
		Note:      req.Note,
		Type:      core.TransactionType(req.Type),
		Amount:    core.Money{Cents: cents},
		Category:  req.Category,
	}
	if err := rd.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.stores.Recurring.AppendDefinition(r.Context(), rd); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, toRecurringResponse(rd))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.stores.Recurring.DeleteDefinition(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

type upcomingResponse struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Category      string `json:"category,omitempty"`
	ScheduledDate string `json:"scheduled_date"`
	DaysUntil     int    `json:"days_until"`
}

func toUpcomingResponses(items []core.UpcomingTransaction) []upcomingResponse {
	out := make([]upcomingResponse, 0, len(items))
	for _, u := range items {
		out = append(out, upcomingResponse{
			Name:          u.Name,
			Type:          string(u.Type),
			Amount:        u.Amount.String(),
			Category:      u.Category,
			ScheduledDate: u.ScheduledDate.Format(dateLayout),
			DaysUntil:     u.DaysUntil,
		})
	}
	return out
}

// maxUpcomingHorizonDays caps the projection window. The loop in
// ProjectUpcoming is linear in the horizon per daily definition, so an
// unbounded value would let one request allocate without limit.
const maxUpcomingHorizonDays = 3650

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	horizon := s.opts.UpcomingHorizon
	if v := r.URL.Query().Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 || d > maxUpcomingHorizonDays {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid days: must be between 0 and %d", maxUpcomingHorizonDays))
			return
		}
		horizon = d
	}

	defs, err := s.stores.Recurring.GetAllDefinitions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	upcoming := services.ProjectUpcoming(defs, time.Now().In(s.opts.Location), horizon)
	writeJSON(w, http.StatusOK, toUpcomingResponses(upcoming))
}

type totalsResponse struct {
	Income    string `json:"income"`
	Expenses  string `json:"expenses"`
	Saved     string `json:"saved"`
	Remaining string `json:"remaining"`
}

type categoryShareResponse struct {
	Category string  `json:"category"`
	Amount   string  `json:"amount"`
	Percent  float64 `json:"percent"`
}

type daySumResponse struct {
	Day   string `json:"day"`
	Total string `json:"total"`
}

type dashboardResponse struct {
	Month      string                  `json:"month"`
	Label      string                  `json:"label"`
	Currency   string                  `json:"currency"`
	Totals     totalsResponse          `json:"totals"`
	Categories []categoryShareResponse `json:"categories"`
	Days       []daySumResponse        `json:"days"`
	Upcoming   []upcomingResponse      `json:"upcoming"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	if _, _, err := core.ParseMonthKey(month); err != nil {
		writeError(w, http.StatusBadRequest, "invalid month key: must be YYYY-MM")
		return
	}

	if cached, ok := s.dashboardCache.Get(month); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.stores.Transactions.GetTransactionsForMonth(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defs, err := s.stores.Recurring.GetAllDefinitions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	agg := services.ComputeTotals(txs, s.opts.MonthlyIncome)
	shares := services.CategoryBreakdown(txs)
	days := services.DailyExpenseSums(txs, s.opts.Location)
	upcoming := services.ProjectUpcoming(defs, time.Now().In(s.opts.Location), s.opts.UpcomingHorizon)

	resp := dashboardResponse{
		Month:    month,
		Label:    core.MonthLabel(month, s.opts.Language),
		Currency: s.opts.Currency,
		Totals: totalsResponse{
			Income:    agg.Income.String(),
			Expenses:  agg.Expenses.String(),
			Saved:     agg.Saved.String(),
			Remaining: agg.Remaining.String(),
		},
		Categories: make([]categoryShareResponse, 0, len(shares)),
		Days:       make([]daySumResponse, 0, len(days)),
		Upcoming:   toUpcomingResponses(upcoming),
	}
	for _, sh := range shares {
		resp.Categories = append(resp.Categories, categoryShareResponse{
			Category: sh.Category,
			Amount:   sh.Amount.String(),
			Percent:  sh.Percent,
		})
	}
	for _, d := range days {
		resp.Days = append(resp.Days, daySumResponse{Day: d.Day, Total: d.Total.String()})
	}

	s.dashboardCache.Set(month, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.opts.Language
	}
	cacheKey := month + "|" + lang

	if cached, ok := s.reportCache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(cached)
		return
	}

	txs, err := s.stores.Transactions.GetTransactionsForMonth(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	html, err := s.renderer.RenderMonthlyReport(month, txs, s.opts.MonthlyIncome, s.opts.Currency, lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.reportCache.Set(cacheKey, html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}
