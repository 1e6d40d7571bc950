package chart

// TemplateAccount describes one row of the global PGC template.
type TemplateAccount struct {
	Code        string
	Description string
	Kind        Kind
	EntityKind  EntityKind
}

// DefaultTemplate is the essential global chart seeded on a fresh database.
var DefaultTemplate = []TemplateAccount{
	{"11", "Caixa", KindLedger, EntityCash},
	{"11.1", "Caixa - Fundo Fixo", KindMovement, EntityCash},
	{"12", "Depósitos à Ordem", KindLedger, EntityBank},
	{"12.1", "Bancos - Moeda Nacional", KindMovement, EntityBank},

	{"21", "Compras", KindLedger, EntityNone},
	{"21.1", "Mercadorias", KindMovement, EntityNone},
	{"22", "Matérias-Primas, Subsidiárias e de Consumo", KindMovement, EntityNone},

	{"31", "Clientes", KindLedger, EntityCustomer},
	{"31.1", "Clientes - Correntes", KindIntegration, EntityCustomer},
	{"31.1.1", "Clientes Nacionais", KindMovement, EntityCustomer},
	{"31.8", "Clientes - Imposto Retido na Fonte", KindMovement, EntityCustomer},
	{"32", "Fornecedores", KindLedger, EntitySupplier},
	{"32.1", "Fornecedores - Correntes", KindIntegration, EntitySupplier},
	{"32.1.1", "Fornecedores Nacionais", KindMovement, EntitySupplier},
	{"34", "Estado", KindLedger, EntityTaxAuthority},
	{"34.1", "Imposto sobre os Rendimentos", KindIntegration, EntityTaxAuthority},
	{"34.1.1", "Imposto sobre o Rendimento do Trabalho (IRT)", KindMovement, EntityTaxAuthority},
	{"34.2", "Retenções na Fonte a Recuperar", KindMovement, EntityTaxAuthority},
	{"34.3", "Imposto sobre o Valor Acrescentado (IVA)", KindIntegration, EntityTaxAuthority},
	{"34.3.1", "IVA Liquidado", KindMovement, EntityTaxAuthority},
	{"34.3.2", "IVA Dedutível", KindMovement, EntityTaxAuthority},
	{"36", "Pessoal", KindLedger, EntityNone},
	{"36.1", "Pessoal - Remunerações a Pagar", KindMovement, EntityNone},

	{"61", "Custo das Mercadorias Vendidas e Matérias Consumidas", KindMovement, EntityNone},
	{"62", "Fornecimentos e Serviços Externos", KindLedger, EntityNone},
	{"62.1", "Subcontratos", KindMovement, EntityNone},
	{"62.2", "Fornecimentos e Serviços", KindMovement, EntityNone},
	{"63", "Impostos", KindMovement, EntityNone},
	{"64", "Custos com o Pessoal", KindLedger, EntityNone},
	{"64.1", "Remunerações", KindMovement, EntityNone},

	{"71", "Vendas", KindMovement, EntityNone},
	{"72", "Prestações de Serviços", KindMovement, EntityNone},

	{"88", "Resultado Líquido do Exercício", KindClosing, EntityNone},
}
