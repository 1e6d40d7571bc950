package memory

import (
	"context"
	"sort"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
)

// JournalRepo implements posting.Repository.
type JournalRepo struct{ s *Store }

var _ posting.Repository = (*JournalRepo)(nil)

// Journal returns the journal entry repository.
func (s *Store) Journal() *JournalRepo { return &JournalRepo{s: s} }

func copyEntry(e posting.Entry) *posting.Entry {
	e.Lines = append([]posting.Line(nil), e.Lines...)
	return &e
}

func (r *JournalRepo) FindBySource(ctx context.Context, tenantID id.ID, key posting.Key) (*posting.Entry, error) {
	var found *posting.Entry
	r.s.read(func(d *state) {
		for _, e := range d.entries {
			if k, ok := e.Key(); ok && e.TenantID == tenantID && k == key {
				found = copyEntry(e)
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("journal entry", key.String())
	}
	return found, nil
}

func (r *JournalRepo) Create(ctx context.Context, e *posting.Entry) error {
	return r.s.write(func(d *state) error {
		key, keyed := e.Key()
		for _, other := range d.entries {
			if other.TenantID != e.TenantID {
				continue
			}
			if other.Number == e.Number {
				return apperror.NewDuplicate("journal entry", "number", e.Number)
			}
			if k, ok := other.Key(); keyed && ok && k == key {
				return apperror.NewDuplicate("journal entry", "source", key.String())
			}
		}
		d.entries[e.ID] = *copyEntry(*e)
		return nil
	})
}

func (r *JournalRepo) GetByID(ctx context.Context, tenantID, entryID id.ID) (*posting.Entry, error) {
	var (
		e  posting.Entry
		ok bool
	)
	r.s.read(func(d *state) { e, ok = d.entries[entryID] })
	if !ok || e.TenantID != tenantID {
		return nil, apperror.NewNotFound("journal entry", entryID.String())
	}
	return copyEntry(e), nil
}

func (r *JournalRepo) List(ctx context.Context, tenantID id.ID, filter posting.JournalFilter) ([]*posting.Entry, error) {
	var out []*posting.Entry
	r.s.read(func(d *state) {
		for _, e := range d.entries {
			if e.TenantID != tenantID || !matchJournal(e, filter) {
				continue
			}
			out = append(out, copyEntry(e))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func matchJournal(e posting.Entry, f posting.JournalFilter) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.SourceType != "" && e.SourceType != f.SourceType {
		return false
	}
	if f.SourceID != nil && (e.SourceID == nil || *e.SourceID != *f.SourceID) {
		return false
	}
	return true
}
