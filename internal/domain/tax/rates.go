package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax rate codes of the default catalog.
const (
	RateVATNormal         = "IVA_NORMAL"
	RateVATSimplified     = "IVA_SIMP"
	RateVATRestaurant     = "IVA_RESTAURACAO"
	RateIndustrialNormal  = "IND_NORMAL"
	RateIndustrialFinance = "IND_FINANC"
	RateIndustrialAgro    = "IND_AGRO"
	RateWithholdingServ   = "RF_SERVICOS"
	RateWithholdingRent   = "RF_IPU_RENDAS"
	RateStampReceipt      = "SELO_RECIBO"
	RateSocialEmployee    = "INSS_FUNC"
	RateSocialEmployer    = "INSS_EMP"
)

// Rate is one entry of the tax rate catalog. Rate is a percentage.
type Rate struct {
	Code        string          `db:"code" json:"code"`
	Name        string          `db:"name" json:"name"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	Description string          `db:"description" json:"description,omitempty"`
	Active      bool            `db:"active" json:"active"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// DefaultRates is the Angola catalog applied by a reset.
func DefaultRates() []Rate {
	r := func(code, name, rate, desc string) Rate {
		return Rate{Code: code, Name: name, Rate: decimal.RequireFromString(rate), Description: desc, Active: true}
	}
	return []Rate{
		r(RateVATNormal, "IVA - Taxa Geral", "14", "Taxa normal aplicada à maioria dos bens e serviços."),
		r(RateVATSimplified, "IVA - Regime Simplificado", "7", "Aplicado a empresas no regime simplificado."),
		r(RateVATRestaurant, "IVA - Hotelaria e Restauração", "7", "Taxa reduzida para o sector de hotelaria."),
		r(RateIndustrialNormal, "Imposto Industrial - Geral", "25", "Taxa padrão aplicada aos lucros das empresas."),
		r(RateIndustrialFinance, "Imposto Industrial - Bancos/Seguros", "35", "Taxa para instituições financeiras."),
		r(RateIndustrialAgro, "Imposto Industrial - Agricultura/Pecuária", "10", "Taxa reduzida para o sector primário."),
		r(RateWithholdingServ, "Retenção na Fonte - Serviços", "6.5", "Retenção no pagamento de serviços a residentes."),
		r(RateWithholdingRent, "Retenção na Fonte - IPU Rendas", "15", "Retenção de IPU sobre rendas de imóveis."),
		r(RateStampReceipt, "Imposto de Selo - Recibos", "1", "Aplicado sobre o valor total do recibo."),
		r(RateSocialEmployee, "INSS - Parcela do Trabalhador", "3", "Desconto directo no salário."),
		r(RateSocialEmployer, "INSS - Parcela da Empresa", "8", "Contribuição da entidade empregadora."),
	}
}
