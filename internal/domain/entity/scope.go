package entity

// ScopeState é o estado de uma subscription conforme reportado pelo ARM.
type ScopeState string

const (
	ScopeStateEnabled  ScopeState = "Enabled"
	ScopeStateDisabled ScopeState = "Disabled"
	ScopeStateDeleted  ScopeState = "Deleted"
	ScopeStateExpired  ScopeState = "Expired"
	ScopeStateWarned   ScopeState = "Warned"
	ScopeStatePastDue  ScopeState = "PastDue"
)

// BillingScope é o escopo de cobrança (subscription) sobre o qual os custos
// são consultados e a autorização é verificada.
type BillingScope struct {
	ID          string
	DisplayName string
	TenantID    string
	State       ScopeState
}

// IsActive indica se o escopo pode ser consultado.
func (s BillingScope) IsActive() bool {
	return s.State == ScopeStateEnabled
}

// PrincipalKind distingue o tipo de identidade ativa; determina qual filtro de
// role assignment é usado na consulta, não o contrato da decisão.
type PrincipalKind string

const (
	PrincipalUser             PrincipalKind = "User"
	PrincipalServicePrincipal PrincipalKind = "ServicePrincipal"
	PrincipalObjectID         PrincipalKind = "ObjectId"
)

// Principal é a identidade ativa da sessão.
type Principal struct {
	ID          string
	Kind        PrincipalKind
	DisplayName string
}

// RoleAssignment é uma atribuição de role retornada pelo serviço de autorização.
type RoleAssignment struct {
	ID               string
	Scope            string
	RoleDefinitionID string
	PrincipalID      string
}
