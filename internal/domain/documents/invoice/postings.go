package invoice

import (
	"fmt"
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/posting"
)

// issueRequest is the sale: the customer owes the net payable and the
// withheld tax sits apart until the certificate arrives.
//
//	D customer             net payable
//	D customer withholding withholding
//	C revenue              subtotal      (grand total when untaxed)
//	C output VAT           tax
func issueRequest(inv *Invoice, customerAccount id.ID) posting.Request {
	legs := []posting.Leg{
		posting.DebitAccount(customerAccount, inv.NetPayable()),
		posting.DebitRole(posting.RoleCustomerWithholding, inv.WithholdingAmount),
	}
	if inv.TaxTotal.IsPositive() {
		legs = append(legs,
			posting.CreditRole(posting.RoleRevenue, inv.Subtotal),
			posting.CreditRole(posting.RoleOutputVAT, inv.TaxTotal))
	} else {
		legs = append(legs, posting.CreditRole(posting.RoleRevenue, inv.GrandTotal))
	}
	return posting.Request{
		TenantID:    inv.TenantID,
		Key:         &posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventIssue},
		Date:        inv.Date,
		Description: fmt.Sprintf("Invoice %s", inv.Number),
		Legs:        legs,
	}
}

func paymentRequest(inv *Invoice, p *documents.Payment, customerAccount id.ID) posting.Request {
	return posting.Request{
		TenantID:    inv.TenantID,
		Key:         &posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.PaymentEvent(p.ID)},
		Date:        p.Date,
		Description: fmt.Sprintf("Receipt for invoice %s", inv.Number),
		Legs: []posting.Leg{
			posting.DebitRole(p.Method.Role(), p.Amount),
			posting.CreditAccount(customerAccount, p.Amount),
		},
	}
}

// withholdingRequest moves the withheld tax to recoverable once the
// customer hands over the withholding certificate.
func withholdingRequest(inv *Invoice, date time.Time) posting.Request {
	return posting.Request{
		TenantID:    inv.TenantID,
		Key:         &posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventWithholding},
		Date:        date,
		Description: fmt.Sprintf("Withholding certificate for invoice %s", inv.Number),
		Legs: []posting.Leg{
			posting.DebitRole(posting.RoleWithholdingRecoverable, inv.WithholdingAmount),
			posting.CreditRole(posting.RoleCustomerWithholding, inv.WithholdingAmount),
		},
	}
}
