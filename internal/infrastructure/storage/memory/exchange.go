package memory

import (
	"context"
	"sort"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/exchange"
)

// ExchangeRepo implements exchange.Repository.
type ExchangeRepo struct{ s *Store }

var _ exchange.Repository = (*ExchangeRepo)(nil)

// Exchange returns the exchange rate repository.
func (s *Store) Exchange() *ExchangeRepo { return &ExchangeRepo{s: s} }

func (r *ExchangeRepo) RateAt(ctx context.Context, tenantID id.ID, date time.Time) (*exchange.Rate, error) {
	var found *exchange.Rate
	r.s.read(func(d *state) {
		for _, rate := range d.fxRates {
			if rate.TenantID != tenantID || rate.ValidFrom.After(date) {
				continue
			}
			if found == nil || rate.ValidFrom.After(found.ValidFrom) {
				rate := rate
				found = &rate
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("exchange rate", date.Format(time.DateOnly))
	}
	return found, nil
}

func (r *ExchangeRepo) List(ctx context.Context, tenantID id.ID) ([]*exchange.Rate, error) {
	var out []*exchange.Rate
	r.s.read(func(d *state) {
		for _, rate := range d.fxRates {
			if rate.TenantID == tenantID {
				rate := rate
				out = append(out, &rate)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.After(out[j].ValidFrom) })
	return out, nil
}

func (r *ExchangeRepo) Upsert(ctx context.Context, rate *exchange.Rate) error {
	return r.s.write(func(d *state) error {
		for rateID, other := range d.fxRates {
			if other.TenantID == rate.TenantID && other.ValidFrom.Equal(rate.ValidFrom) {
				rate.ID = rateID
			}
		}
		d.fxRates[rate.ID] = *rate
		return nil
	})
}

func (r *ExchangeRepo) Delete(ctx context.Context, tenantID, rateID id.ID) error {
	return r.s.write(func(d *state) error {
		rate, ok := d.fxRates[rateID]
		if !ok || rate.TenantID != tenantID {
			return apperror.NewNotFound("exchange rate", rateID.String())
		}
		delete(d.fxRates, rateID)
		return nil
	})
}
