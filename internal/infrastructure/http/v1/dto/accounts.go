package dto

import (
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
)

// SaveAccountRequest creates or edits a chart account. Codes are
// normalized, so "3111" and "31.1.1" save the same account.
type SaveAccountRequest struct {
	Code            string           `json:"code" binding:"required"`
	Description     string           `json:"description" binding:"required"`
	ClassHint       string           `json:"classHint"`
	Kind            chart.Kind       `json:"kind"`
	EntityKind      chart.EntityKind `json:"entityKind"`
	AcceptsPostings *bool            `json:"acceptsPostings"`
	ParentID        *string          `json:"parentId"`
}

// ToInput converts the request for tenantID; accountID is nil on create.
func (r *SaveAccountRequest) ToInput(tenantID id.ID, accountID *id.ID) (chart.SaveAccountInput, error) {
	in := chart.SaveAccountInput{
		ID:              accountID,
		TenantID:        &tenantID,
		Code:            r.Code,
		Description:     r.Description,
		ClassHint:       r.ClassHint,
		Kind:            r.Kind,
		EntityKind:      r.EntityKind,
		AcceptsPostings: r.AcceptsPostings,
	}
	parentID, err := id.ParseOptional(r.ParentID)
	if err != nil {
		return in, err
	}
	in.ParentID = parentID
	return in, nil
}

// ImportRequest carries chart lines "CODE DESCRIPTION LETTER".
type ImportRequest struct {
	Text string `json:"text" binding:"required"`
}

// DeleteAccountResponse reports how many accounts the subtree delete removed.
type DeleteAccountResponse struct {
	Deleted int `json:"deleted"`
}

// InitializePlanResponse reports the accounts copied from the template.
type InitializePlanResponse struct {
	Copied int `json:"copied"`
}
