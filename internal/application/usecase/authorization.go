package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/domain/repository"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// Frases conhecidas que indicam que o token atual não tem o escopo necessário
// para consultar o serviço de diretório durante a checagem de role assignment.
var directoryScopePatterns = []string{
	"insufficient privileges",
	"authorization_requestdenied",
	"authorization failed",
	"aadsts65001",
	"consent_required",
	"invalid_scope",
}

// AuthorizationResolver decide se o principal possui a role Owner no escopo.
// O latch de re-autenticação é estado explícito do run: a escalada acontece no
// máximo uma vez, independentemente de quantos escopos forem verificados.
type AuthorizationResolver struct {
	repo    repository.AzureRepository
	console types.ConsoleInterface

	reauthAttempted bool
}

// NewAuthorizationResolver cria um resolver com o latch zerado.
func NewAuthorizationResolver(repo repository.AzureRepository, console types.ConsoleInterface) *AuthorizationResolver {
	return &AuthorizationResolver{repo: repo, console: console}
}

// IsAuthorized verifica se principal possui a role Owner em scopeID. Quando a
// própria consulta falha por falta de escopo de autenticação no diretório, o
// resolver escala uma única vez para re-autenticação com escopo expandido e
// repete a checagem inteira com o principal renovado. O principal retornado é
// o vigente após a checagem (renovado, se houve escalada).
func (r *AuthorizationResolver) IsAuthorized(ctx context.Context, scopeID string, principal entity.Principal) (bool, entity.Principal, error) {
	assignments, err := r.repo.ListOwnerRoleAssignments(ctx, scopeID, principal)
	if err == nil {
		return len(assignments) > 0, principal, nil
	}

	if !isDirectoryScopeError(err) {
		return false, principal, fmt.Errorf("%w: %v", types.ErrAuthorizationCheckFailed, err)
	}

	// Segunda falha do mesmo tipo no run: o latch já foi consumido, não re-tenta.
	if r.reauthAttempted {
		return false, principal, fmt.Errorf("%w: %v", types.ErrAuthorizationCheckFailed, err)
	}
	r.reauthAttempted = true

	r.console.LogWarning("Role check requires additional directory permissions, re-authenticating...")
	refreshed, signErr := r.repo.SignIn(ctx, true)
	if signErr != nil {
		return false, principal, fmt.Errorf("%w: re-authentication failed: %v", types.ErrAuthorizationCheckFailed, signErr)
	}

	assignments, err = r.repo.ListOwnerRoleAssignments(ctx, scopeID, refreshed)
	if err != nil {
		return false, refreshed, fmt.Errorf("%w: %v", types.ErrAuthorizationCheckFailed, err)
	}
	return len(assignments) > 0, refreshed, nil
}

// isDirectoryScopeError reconhece, pelo texto, falhas de escopo de autenticação
// contra o serviço de diretório.
func isDirectoryScopeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range directoryScopePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
