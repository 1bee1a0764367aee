package repository

import (
	"context"
	"time"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
)

// AzureRepository defines the interface for Azure API interactions.
type AzureRepository interface {
	// Identity Operations
	GetActivePrincipal(ctx context.Context) (entity.Principal, error)
	// SignIn autentica interativamente. Com expandedScope, solicita também o
	// escopo do diretório (necessário para consultas de role assignment por
	// identidade de usuário) e retorna o principal renovado.
	SignIn(ctx context.Context, expandedScope bool) (entity.Principal, error)

	// Scope Operations
	ListBillingScopes(ctx context.Context) ([]entity.BillingScope, error)
	GetBillingScope(ctx context.Context, scopeID string) (entity.BillingScope, error)

	// Authorization Operations
	ListOwnerRoleAssignments(ctx context.Context, scopeID string, principal entity.Principal) ([]entity.RoleAssignment, error)

	// Cost Operations
	QueryCostYear(ctx context.Context, scopeID string, from, to time.Time) (map[string]entity.MonthTotal, error)
}
