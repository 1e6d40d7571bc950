package dto

import (
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/parties"
)

// CreatePartyRequest registers a customer or supplier under a parent
// account such as 31.1.1.
type CreatePartyRequest struct {
	Kind            parties.Kind `json:"kind" binding:"required,oneof=CUSTOMER SUPPLIER"`
	Name            string       `json:"name" binding:"required"`
	TaxID           string       `json:"taxId"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	Address         string       `json:"address"`
	ParentAccountID string       `json:"parentAccountId" binding:"required,uuid"`
	CodeOverride    string       `json:"codeOverride"`
}

func (r *CreatePartyRequest) ToInput() (parties.CreateInput, error) {
	parentID, err := id.Parse(r.ParentAccountID)
	if err != nil {
		return parties.CreateInput{}, err
	}
	return parties.CreateInput{
		Kind:  r.Kind,
		Name:  r.Name,
		TaxID: r.TaxID,
		Contact: parties.Contact{
			Email:   r.Email,
			Phone:   r.Phone,
			Address: r.Address,
		},
		ParentAccountID: parentID,
		CodeOverride:    r.CodeOverride,
	}, nil
}

// UpdatePartyRequest changes contact data. Empty name keeps the old one.
type UpdatePartyRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r *UpdatePartyRequest) ToInput() parties.UpdateInput {
	return parties.UpdateInput{
		Name:  r.Name,
		TaxID: r.TaxID,
		Contact: parties.Contact{
			Email:   r.Email,
			Phone:   r.Phone,
			Address: r.Address,
		},
	}
}

// PartyListRequest filters parties.
type PartyListRequest struct {
	ListRequest
	Kind parties.Kind `form:"kind"`
}

func (r PartyListRequest) Filter() parties.ListFilter {
	return parties.ListFilter{ListFilter: r.ListRequest.Filter(), Kind: r.Kind}
}
