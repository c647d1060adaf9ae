package http

import (
	"errors"
	"net/http"

	"saldo/internal/app"
	"saldo/internal/core"
	"saldo/internal/log"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}

// queryType reads ?type=. ok is false when the value is present but not a
// transaction type.
func queryType(r *http.Request) (t core.Type, present, ok bool) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return "", false, true
	}
	t, err := core.ParseType(raw)
	return t, true, err == nil
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t, present, ok := queryType(r)
	switch {
	case !ok:
		UnprocessableEntityError(app.Describe(core.ErrInvalidType)).Write(w)
	case present:
		NewResponse().JSON(s.ctrl.Categories(t)).Write(w)
	default:
		NewResponse().JSON(map[string][]string{
			"income":  s.ctrl.Categories(core.Income),
			"expense": s.ctrl.Categories(core.Expense),
		}).Write(w)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	t, present, ok := queryType(r)
	switch {
	case !ok:
		UnprocessableEntityError(app.Describe(core.ErrInvalidType)).Write(w)
	case present:
		NewResponse().JSON(s.ctrl.Transactions(t)).Write(w)
	default:
		NewResponse().JSON(map[string][]core.Transaction{
			"income":  s.ctrl.Transactions(core.Income),
			"expense": s.ctrl.Transactions(core.Expense),
		}).Write(w)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body.").Write(w)
		return
	}
	res, err := s.ctrl.SubmitTransaction(r.Context(), p.Submission(nil))
	s.writeResult(w, r, res, err, http.StatusCreated)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(app.Describe(core.ErrNotFound)).Write(w)
		return
	}
	tx, err := s.ctrl.RequestEdit(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(tx).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(app.Describe(core.ErrNotFound)).Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body.").Write(w)
		return
	}
	res, err := s.ctrl.SubmitTransaction(r.Context(), p.Submission(&id))
	s.writeResult(w, r, res, err, http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(app.Describe(core.ErrNotFound)).Write(w)
		return
	}
	res, err := s.ctrl.RequestDelete(r.Context(), id)
	s.writeResult(w, r, res, err, http.StatusOK)
}

type dashboardBody struct {
	core.Totals
	Currency string `json:"currency"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(dashboardBody{Totals: s.ctrl.Dashboard(), Currency: s.symbol}).Write(w)
}

func (s *Server) handleBudgets(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.ctrl.BudgetRows()).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body.").Write(w)
		return
	}
	res, err := s.ctrl.SetBudgetInput(r.Context(), r.PathValue("category"), p.Get("amount"))
	s.writeResult(w, r, res, err, http.StatusOK)
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.ctrl.Chart()).Write(w)
}

// writeResult answers a mutation. A nil err with a warning notice means the
// change is applied but was not saved.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res app.Result, err error, okStatus int) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Notice.Kind == app.NoticeWarning {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Ledger change not persisted",
			"message", res.Notice.Message)
	}
	NewResponse().
		Status(okStatus).
		TriggerNotice(res.Notice).
		TriggerLedgerChanged().
		JSON(res).
		Write(w)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	msg := app.Describe(err)
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(msg).Write(w)
	case core.IsValidation(err):
		UnprocessableEntityError(msg).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.OpRequest,
				log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
		InternalServerError(msg).Write(w)
	}
}
