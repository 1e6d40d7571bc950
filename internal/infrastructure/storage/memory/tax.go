package memory

import (
	"context"
	"sort"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/tax"
)

// TaxRepo implements tax.Repository.
type TaxRepo struct{ s *Store }

var _ tax.Repository = (*TaxRepo)(nil)

// Tax returns the tax table repository.
func (s *Store) Tax() *TaxRepo { return &TaxRepo{s: s} }

func (r *TaxRepo) ListBrackets(ctx context.Context) (tax.Table, error) {
	var t tax.Table
	r.s.read(func(d *state) { t = append(tax.Table(nil), d.brackets...) })
	return t.Sorted(), nil
}

func (r *TaxRepo) ReplaceBrackets(ctx context.Context, t tax.Table) error {
	return r.s.write(func(d *state) error {
		d.brackets = append(tax.Table(nil), t...)
		return nil
	})
}

func (r *TaxRepo) ListRates(ctx context.Context) ([]tax.Rate, error) {
	var out []tax.Rate
	r.s.read(func(d *state) {
		for _, rate := range d.rates {
			out = append(out, rate)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *TaxRepo) GetRate(ctx context.Context, code string) (*tax.Rate, error) {
	var (
		rate tax.Rate
		ok   bool
	)
	r.s.read(func(d *state) { rate, ok = d.rates[code] })
	if !ok {
		return nil, apperror.NewNotFound("tax rate", code)
	}
	return &rate, nil
}

func (r *TaxRepo) UpsertRate(ctx context.Context, rate tax.Rate) error {
	return r.s.write(func(d *state) error {
		d.rates[rate.Code] = rate
		return nil
	})
}
