package purchase

import (
	"fmt"
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/posting"
)

//	D expense             subtotal
//	D input VAT           tax
//	C supplier            net payable
//	C withholding payable withholding
func registerRequest(p *Purchase, supplierAccount id.ID) posting.Request {
	return posting.Request{
		TenantID:    p.TenantID,
		Key:         &posting.Key{SourceType: posting.SourcePurchase, SourceID: p.ID, Event: posting.EventRegister},
		Date:        p.Date,
		Description: fmt.Sprintf("Purchase %s (%s)", p.Number, p.SupplierRef),
		Legs: []posting.Leg{
			posting.DebitRole(posting.RoleExpense, p.Subtotal),
			posting.DebitRole(posting.RoleInputVAT, p.TaxTotal),
			posting.CreditAccount(supplierAccount, p.NetPayable()),
			posting.CreditRole(posting.RoleWithholdingPayable, p.WithholdingAmount),
		},
	}
}

func paymentRequest(p *Purchase, pay *documents.Payment, supplierAccount id.ID) posting.Request {
	return posting.Request{
		TenantID:    p.TenantID,
		Key:         &posting.Key{SourceType: posting.SourcePurchase, SourceID: p.ID, Event: posting.PaymentEvent(pay.ID)},
		Date:        pay.Date,
		Description: fmt.Sprintf("Payment of purchase %s", p.Number),
		Legs: []posting.Leg{
			posting.DebitAccount(supplierAccount, pay.Amount),
			posting.CreditRole(pay.Method.Role(), pay.Amount),
		},
	}
}

// withholdingRequest pays the withheld tax over to the tax authority.
func withholdingRequest(p *Purchase, date time.Time) posting.Request {
	return posting.Request{
		TenantID:    p.TenantID,
		Key:         &posting.Key{SourceType: posting.SourcePurchase, SourceID: p.ID, Event: posting.EventWithholding},
		Date:        date,
		Description: fmt.Sprintf("Withholding settlement for purchase %s", p.Number),
		Legs: []posting.Leg{
			posting.DebitRole(posting.RoleWithholdingPayable, p.WithholdingAmount),
			posting.CreditRole(posting.RoleBank, p.WithholdingAmount),
		},
	}
}
