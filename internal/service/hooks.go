// Package service implements the settlement core's operations: counterparty
// suggestion and association, bill allocation, and payment settlement.
// Services orchestrate the storage layer, enforce the authorization and trust
// boundaries, and return the errs taxonomy unchanged to the caller.
package service

import (
	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/models"
)

// Hooks are the callback seams to external collaborators such as the
// achievement engine. They are plain functions with no shared mutable state;
// nil fields are skipped. Hooks run after the mutation has committed and must
// not influence its outcome.
type Hooks struct {
	// BillCreated fires after a bill and its members are persisted.
	BillCreated func(bill *models.Bill)

	// PaymentApplied fires after a payment is recorded against a bill.
	PaymentApplied func(billID, transactionID string, amount decimal.Decimal)

	// BillSettled fires when a payment brings every member to paid >= share.
	BillSettled func(billID string)
}

func (h Hooks) billCreated(bill *models.Bill) {
	if h.BillCreated != nil {
		h.BillCreated(bill)
	}
}

func (h Hooks) paymentApplied(billID, transactionID string, amount decimal.Decimal) {
	if h.PaymentApplied != nil {
		h.PaymentApplied(billID, transactionID, amount)
	}
}

func (h Hooks) billSettled(billID string) {
	if h.BillSettled != nil {
		h.BillSettled(billID)
	}
}
