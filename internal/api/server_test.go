package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/auth"
	"github.com/finsoc/splitledger/internal/middleware"
	"github.com/finsoc/splitledger/internal/models"
	"github.com/finsoc/splitledger/internal/service"
	"github.com/finsoc/splitledger/internal/storage/sqlite"
)

// testEnv bundles the HTTP handler with its backing store and seeded users.
type testEnv struct {
	handler http.Handler
	store   *sqlite.SQLiteStore
	alice   string
	bob     string
	carol   string
}

// newTestEnv builds a server over a temp SQLite store with no JWT layer;
// requests carry the caller's identity directly in the context. Alice is
// friends with bob and carol.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store: store,
		alice: seedUser(t, store, "alice"),
		bob:   seedUser(t, store, "bob"),
		carol: seedUser(t, store, "carol"),
	}
	for _, friend := range []string{env.bob, env.carol} {
		if err := store.AddFriend(context.Background(), env.alice, friend); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}
	}

	srv := NewServer(
		service.NewMatchService(store),
		service.NewBillService(store, service.Hooks{}),
		service.NewSettlementService(store, service.Hooks{}),
		nil,
	)
	env.handler = srv.Handler()
	return env
}

func seedUser(t *testing.T, store *sqlite.SQLiteStore, username string) string {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user.ID
}

func seedTransaction(t *testing.T, store *sqlite.SQLiteStore, ownerID, amount, desc string) string {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad amount %q: %v", amount, err)
	}
	tx := &models.Transaction{
		OwnerID:     ownerID,
		Date:        time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC),
		Amount:      amt,
		Category:    "shared",
		Type:        models.TypeExpense,
		Description: desc,
	}
	if err := store.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	return tx.ID
}

// do issues a request through the full middleware chain as the given user.
func (env *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBillLifecycle(t *testing.T) {
	env := newTestEnv(t)
	txID := seedTransaction(t, env.store, env.alice, "90.00", "Dinner at Luigi's")

	createReq := map[string]any{
		"transaction_ids": []string{txID},
		"member_ids":      []string{env.bob, env.carol},
	}
	rec := env.do(t, http.MethodPost, "/api/bills", env.alice, createReq)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID      string `json:"id"`
		Total   string `json:"total"`
		Settled bool   `json:"settled"`
		Members []struct {
			UserID      string `json:"user_id"`
			Share       string `json:"share"`
			Outstanding string `json:"outstanding"`
			Settled     bool   `json:"settled"`
		} `json:"members"`
	}
	decodeBody(t, rec, &created)
	if created.Total != "90" {
		t.Errorf("expected total 90, got %s", created.Total)
	}
	if created.Settled {
		t.Error("new bill with unpaid members should not be settled")
	}
	if len(created.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(created.Members))
	}
	for _, m := range created.Members {
		if m.Share != "30" {
			t.Errorf("member %s: expected share 30, got %s", m.UserID, m.Share)
		}
		if m.UserID == env.alice {
			if !m.Settled {
				t.Error("creator should start settled")
			}
		} else if m.Outstanding != "30" {
			t.Errorf("member %s: expected outstanding 30, got %s", m.UserID, m.Outstanding)
		}
	}

	// Members can read the bill, strangers cannot.
	if rec := env.do(t, http.MethodGet, "/api/bills/"+created.ID, env.bob, nil); rec.Code != http.StatusOK {
		t.Errorf("member get: expected 200, got %d", rec.Code)
	}
	stranger := seedUser(t, env.store, "mallory")
	if rec := env.do(t, http.MethodGet, "/api/bills/"+created.ID, stranger, nil); rec.Code != http.StatusForbidden {
		t.Errorf("stranger get: expected 403, got %d", rec.Code)
	}

	var listed struct {
		Bills []json.RawMessage `json:"bills"`
	}
	rec = env.do(t, http.MethodGet, "/api/bills", env.bob, nil)
	decodeBody(t, rec, &listed)
	if len(listed.Bills) != 1 {
		t.Errorf("expected 1 bill for member, got %d", len(listed.Bills))
	}

	// Only the creator may delete.
	if rec := env.do(t, http.MethodDelete, "/api/bills/"+created.ID, env.bob, nil); rec.Code != http.StatusForbidden {
		t.Errorf("member delete: expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/bills/"+created.ID, env.alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("creator delete: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/bills/"+created.ID, env.alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestCreateBillValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/bills", env.alice, map[string]any{
		"transaction_ids": []string{},
		"member_ids":      []string{env.bob},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty transaction list: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/bills", env.alice, map[string]any{
		"transaction_ids": []string{"missing-tx"},
		"member_ids":      []string{env.bob},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing transaction: expected 404, got %d", rec.Code)
	}
}

func TestApplyPayment(t *testing.T) {
	env := newTestEnv(t)
	billTx := seedTransaction(t, env.store, env.alice, "90.00", "Dinner at Luigi's")

	rec := env.do(t, http.MethodPost, "/api/bills", env.alice, map[string]any{
		"transaction_ids": []string{billTx},
		"member_ids":      []string{env.bob, env.carol},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d", rec.Code)
	}
	var bill struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &bill)

	// Bob's reimbursement transfer, associated so the payment credits him.
	payTx := seedTransaction(t, env.store, env.alice, "30.00", "Transfer from Bob")
	rec = env.do(t, http.MethodPost, "/api/transactions/"+payTx+"/counterparty", env.alice, map[string]any{
		"friend_id": env.bob,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("associate: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/bills/"+bill.ID+"/payments", env.alice, map[string]any{
		"transaction_id": payTx,
		"amount_applied": "30.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("apply payment: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var applied struct {
		NewPaid        string `json:"new_paid"`
		NewOutstanding string `json:"new_outstanding"`
		Remaining      string `json:"remaining"`
		BillSettled    bool   `json:"bill_settled"`
	}
	decodeBody(t, rec, &applied)
	if applied.NewPaid != "30" {
		t.Errorf("expected new_paid 30, got %s", applied.NewPaid)
	}
	if applied.NewOutstanding != "0" {
		t.Errorf("expected new_outstanding 0, got %s", applied.NewOutstanding)
	}
	if applied.Remaining != "0" {
		t.Errorf("expected remaining 0, got %s", applied.Remaining)
	}
	if applied.BillSettled {
		t.Error("bill should not be settled while carol still owes")
	}

	// The same transaction cannot be applied to the same bill twice.
	rec = env.do(t, http.MethodPost, "/api/bills/"+bill.ID+"/payments", env.alice, map[string]any{
		"transaction_id": payTx,
		"amount_applied": "30.00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate apply: expected 400, got %d", rec.Code)
	}

	// Only the creator may apply payments.
	otherTx := seedTransaction(t, env.store, env.alice, "30.00", "Transfer from Carol")
	rec = env.do(t, http.MethodPost, "/api/bills/"+bill.ID+"/payments", env.bob, map[string]any{
		"transaction_id": otherTx,
		"amount_applied": "30.00",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-creator apply: expected 403, got %d", rec.Code)
	}
}

func TestSuggestions(t *testing.T) {
	env := newTestEnv(t)
	baseTx := seedTransaction(t, env.store, env.alice, "30.00", "Transfer from Bob Smith")
	seedTransaction(t, env.store, env.alice, "25.00", "transfer from bob smith")
	seedTransaction(t, env.store, env.alice, "12.50", "Grocery store")

	rec := env.do(t, http.MethodGet, "/api/transactions/"+baseTx+"/suggestions", env.alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Suggestions []struct {
			Score       int `json:"score"`
			Transaction struct {
				Description string `json:"description"`
			} `json:"transaction"`
		} `json:"suggestions"`
	}
	decodeBody(t, rec, &got)
	if len(got.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got.Suggestions))
	}
	if got.Suggestions[0].Score != 100 {
		t.Errorf("expected score 100, got %d", got.Suggestions[0].Score)
	}

	rec = env.do(t, http.MethodGet, "/api/transactions/"+baseTx+"/suggestions?threshold=abc", env.alice, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad threshold: expected 400, got %d", rec.Code)
	}

	// Suggestions for someone else's transaction are forbidden.
	rec = env.do(t, http.MethodGet, "/api/transactions/"+baseTx+"/suggestions", env.bob, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign transaction: expected 403, got %d", rec.Code)
	}
}

func TestAssociateCounterparty(t *testing.T) {
	env := newTestEnv(t)
	txID := seedTransaction(t, env.store, env.alice, "30.00", "Transfer from Bob")

	rec := env.do(t, http.MethodPost, "/api/transactions/"+txID+"/counterparty", env.alice, map[string]any{
		"friend_id":  env.bob,
		"confidence": 0.92,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var assoc struct {
		FriendID   string  `json:"friend_id"`
		Confidence float64 `json:"confidence"`
	}
	decodeBody(t, rec, &assoc)
	if assoc.FriendID != env.bob || assoc.Confidence != 0.92 {
		t.Errorf("unexpected association: %+v", assoc)
	}

	// A second association conflicts, naming the existing counterparty.
	rec = env.do(t, http.MethodPost, "/api/transactions/"+txID+"/counterparty", env.alice, map[string]any{
		"friend_id": env.carol,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("conflict: expected 400, got %d", rec.Code)
	}
	var conflict struct {
		Existing string `json:"existing"`
	}
	decodeBody(t, rec, &conflict)
	if conflict.Existing != env.bob {
		t.Errorf("expected existing counterparty %s, got %s", env.bob, conflict.Existing)
	}

	// Associating a non-friend is forbidden.
	stranger := seedUser(t, env.store, "mallory")
	otherTx := seedTransaction(t, env.store, env.alice, "10.00", "Lunch")
	rec = env.do(t, http.MethodPost, "/api/transactions/"+otherTx+"/counterparty", env.alice, map[string]any{
		"friend_id": stranger,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-friend: expected 403, got %d", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	srv := NewServer(
		service.NewMatchService(env.store),
		service.NewBillService(env.store, service.Hooks{}),
		service.NewSettlementService(env.store, service.Hooks{}),
		jwtManager,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}

	token, err := jwtManager.Generate(env.alice)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
