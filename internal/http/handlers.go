package http

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"moneta/internal/core"
	"moneta/internal/services"
)

type entryRequest struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (in entryRequest) toRaw() core.RawEntry {
	return core.RawEntry{
		Category:    in.Category,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Description: in.Description,
		CustomDate:  in.Date,
	}
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in entryRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.ledger.CreateEntry(r.Context(), in.toRaw())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashCache.Purge()
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

type rejectedRow struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type importResponse struct {
	Accepted []recordResponse `json:"accepted"`
	Rejected []rejectedRow    `json:"rejected"`
}

// handleImportCSV accepts the file either as a raw text/csv body or as
// a multipart upload under the "file" field.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	contents, err := readImportBody(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.ledger.ImportCSV(r.Context(), contents)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if len(summary.Accepted) > 0 {
		s.dashCache.Purge()
	}

	resp := importResponse{
		Accepted: toRecordResponses(summary.Accepted),
		Rejected: make([]rejectedRow, 0, len(summary.Rejected)),
	}
	for _, re := range summary.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedRow{Row: re.Row, Error: re.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func readImportBody(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxBodySize))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// rangeToken reads the range query parameter, defaulting to "all".
func rangeToken(r *http.Request) core.RangeToken {
	v := strings.TrimSpace(r.URL.Query().Get("range"))
	if v == "" {
		return core.RangeAll
	}
	return core.RangeToken(v)
}

type entriesResponse struct {
	Range   string           `json:"range"`
	Entries []recordResponse `json:"entries"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	token := rangeToken(r)
	if !token.Valid() {
		writeErrorMessage(w, r, http.StatusBadRequest, "unknown range token: "+string(token))
		return
	}

	records, err := s.ledger.Entries(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entriesResponse{
		Range:   string(token),
		Entries: toRecordResponses(records),
	})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in entryRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.ledger.UpdateEntry(r.Context(), id, in.toRaw())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashCache.Purge()
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.dashCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

type weekBucketResponse struct {
	WeekStart    string `json:"week_start"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

type dashboardResponse struct {
	Range          string               `json:"range"`
	BalanceCents   int64                `json:"balance_cents"`
	IncomeCents    int64                `json:"income_cents"`
	ExpenseCents   int64                `json:"expense_cents"`
	CategoryTotals map[string]int64     `json:"category_totals"`
	CategoryShares map[string]float64   `json:"category_shares"`
	Weekly         []weekBucketResponse `json:"weekly"`
	EntryCount     int                  `json:"entry_count"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	token := rangeToken(r)
	if !token.Valid() {
		writeErrorMessage(w, r, http.StatusBadRequest, "unknown range token: "+string(token))
		return
	}

	dash, cached := s.dashCache.Get(string(token))
	if !cached {
		var err error
		dash, err = s.ledger.Dashboard(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.dashCache.Set(string(token), dash)
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(dash))
}

func toDashboardResponse(dash services.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Range:          string(dash.Range),
		BalanceCents:   dash.Balance.Cents,
		IncomeCents:    dash.IncomeTotal.Cents,
		ExpenseCents:   dash.ExpenseTotal.Cents,
		CategoryTotals: make(map[string]int64, len(dash.CategoryTotals)),
		CategoryShares: dash.CategoryShares,
		Weekly:         make([]weekBucketResponse, 0, len(dash.Weekly)),
		EntryCount:     dash.EntryCount,
	}
	for name, total := range dash.CategoryTotals {
		resp.CategoryTotals[name] = total.Cents
	}
	for _, b := range dash.Weekly {
		resp.Weekly = append(resp.Weekly, weekBucketResponse{
			WeekStart:    b.WeekStart.Format("2006-01-02"),
			IncomeCents:  b.Income.Cents,
			ExpenseCents: b.Expense.Cents,
		})
	}
	return resp
}
