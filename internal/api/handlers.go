package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/calculator"
	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/middleware"
	"github.com/finsoc/splitledger/internal/models"
)

const dateFormat = "2006-01-02"

// transactionBody is the wire shape of a ledger transaction.
type transactionBody struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Direction   string          `json:"direction,omitempty"`
	Description string          `json:"description"`
}

func toTransactionBody(tx models.Transaction) transactionBody {
	return transactionBody{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		Date:        tx.Date.Format(dateFormat),
		Amount:      tx.Amount,
		Category:    tx.Category,
		Type:        string(tx.Type),
		Direction:   string(tx.Direction),
		Description: tx.Description,
	}
}

// memberBody is the wire shape of one bill member with derived state.
type memberBody struct {
	UserID      string          `json:"user_id"`
	Share       decimal.Decimal `json:"share"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Settled     bool            `json:"settled"`
}

// billBody is the wire shape of a bill with derived state.
type billBody struct {
	ID          string          `json:"id"`
	CreatedBy   string          `json:"created_by"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Total       decimal.Decimal `json:"total"`
	Settled     bool            `json:"settled"`
	Members     []memberBody    `json:"members"`
}

func toBillBody(bill models.Bill) billBody {
	body := billBody{
		ID:          bill.ID,
		CreatedBy:   bill.CreatedBy,
		Description: bill.Description,
		Date:        bill.Date.Format(dateFormat),
		Total:       bill.Total,
		Settled:     calculator.BillSettled(bill.Members),
	}
	for _, m := range bill.Members {
		body.Members = append(body.Members, memberBody{
			UserID:      m.UserID,
			Share:       m.Share,
			Paid:        m.Paid,
			Outstanding: calculator.Outstanding(m),
			Settled:     calculator.MemberSettled(m),
		})
	}
	return body
}

func (s *Server) handleSuggestCounterparties(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	txID := mux.Vars(r)["id"]

	threshold, err := queryInt(r, "threshold")
	if err != nil {
		writeError(w, errs.Invalid("threshold must be an integer"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, errs.Invalid("limit must be an integer"))
		return
	}

	matches, err := s.match.SuggestCounterparties(r.Context(), userID, txID, threshold, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	type suggestionBody struct {
		Transaction transactionBody `json:"transaction"`
		Score       int             `json:"score"`
	}
	suggestions := make([]suggestionBody, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, suggestionBody{
			Transaction: toTransactionBody(m.Transaction),
			Score:       m.Score,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleAssociateCounterparty(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	txID := mux.Vars(r)["id"]

	var req struct {
		FriendID   string   `json:"friend_id"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Invalid("invalid request body"))
		return
	}
	if req.FriendID == "" {
		writeError(w, errs.Invalid("friend_id is required"))
		return
	}

	// Manual confirmations default to full confidence.
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	assoc, err := s.match.AssociateCounterparty(r.Context(), userID, txID, req.FriendID, confidence)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":             assoc.ID,
		"transaction_id": assoc.TransactionID,
		"friend_id":      assoc.FriendID,
		"confidence":     assoc.Confidence,
	})
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		TransactionIDs []string `json:"transaction_ids"`
		MemberIDs      []string `json:"member_ids"`
		Description    string   `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Invalid("invalid request body"))
		return
	}

	bill, err := s.bills.CreateBill(r.Context(), userID, req.TransactionIDs, req.MemberIDs, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillBody(*bill))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bills, err := s.bills.ListBills(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	bodies := make([]billBody, 0, len(bills))
	for _, bill := range bills {
		bodies = append(bodies, toBillBody(bill))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": bodies})
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	billID := mux.Vars(r)["id"]

	bill, err := s.bills.GetBill(r.Context(), userID, billID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillBody(*bill))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	billID := mux.Vars(r)["id"]

	if err := s.bills.DeleteBill(r.Context(), userID, billID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleApplyTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	billID := mux.Vars(r)["id"]

	var req struct {
		TransactionID string          `json:"transaction_id"`
		AmountApplied decimal.Decimal `json:"amount_applied"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Invalid("invalid request body"))
		return
	}
	if req.TransactionID == "" {
		writeError(w, errs.Invalid("transaction_id is required"))
		return
	}

	result, err := s.settlement.ApplyTransaction(r.Context(), userID, billID, req.TransactionID, req.AmountApplied)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id":       result.MemberID,
		"new_paid":        result.NewPaid,
		"new_outstanding": result.NewOutstanding,
		"remaining":       result.Remaining,
		"bill_settled":    result.BillSettled,
	})
}

// queryInt parses an optional integer query parameter; 0 means unset.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
