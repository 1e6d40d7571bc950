package dto

import (
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/posting"
)

// ManualLineRequest is one leg of a manual entry.
type ManualLineRequest struct {
	AccountID string       `json:"accountId" binding:"required,uuid"`
	Side      posting.Side `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount    types.Money  `json:"amount"`
	Memo      string       `json:"memo"`
}

// ManualEntryRequest posts a hand-made or opening-balance entry. It is
// rejected unless debits equal credits.
type ManualEntryRequest struct {
	Date        Date                `json:"date"`
	Description string              `json:"description" binding:"required"`
	Kind        posting.EntryKind   `json:"kind" binding:"omitempty,oneof=NORMAL OPENING"`
	Lines       []ManualLineRequest `json:"lines" binding:"required,min=2,dive"`
}

func (r *ManualEntryRequest) ToInput() (posting.ManualInput, error) {
	in := posting.ManualInput{
		Date:        r.Date.Time,
		Description: r.Description,
		Kind:        r.Kind,
		Lines:       make([]posting.ManualLine, len(r.Lines)),
	}
	for i, l := range r.Lines {
		accountID, err := id.Parse(l.AccountID)
		if err != nil {
			return in, err
		}
		in.Lines[i] = posting.ManualLine{
			AccountID: accountID,
			Side:      l.Side,
			Amount:    l.Amount,
			Memo:      l.Memo,
		}
	}
	return in, nil
}

// JournalListRequest filters the journal.
type JournalListRequest struct {
	From       string             `form:"from"`
	To         string             `form:"to"`
	Kind       posting.EntryKind  `form:"kind"`
	SourceType posting.SourceType `form:"sourceType"`
}

func (r JournalListRequest) Filter() (posting.JournalFilter, error) {
	from, to, err := ParsePeriod(r.From, r.To)
	if err != nil {
		return posting.JournalFilter{}, err
	}
	return posting.JournalFilter{
		From:       from,
		To:         to,
		Kind:       r.Kind,
		SourceType: r.SourceType,
	}, nil
}
