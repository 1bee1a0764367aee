package usecase

import (
	"context"
	"fmt"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/domain/repository"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// ScopeSelector fixa o escopo de cobrança alvo do run, seja por ID direto,
// seja por descoberta (lista filtrada por estado ativo e pela role Owner).
type ScopeSelector struct {
	repo    repository.AzureRepository
	authz   *AuthorizationResolver
	console types.ConsoleInterface
}

// NewScopeSelector cria um seletor de escopos.
func NewScopeSelector(repo repository.AzureRepository, authz *AuthorizationResolver, console types.ConsoleInterface) *ScopeSelector {
	return &ScopeSelector{repo: repo, authz: authz, console: console}
}

// ResolveDirect resolve um escopo informado explicitamente pelo usuário.
func (s *ScopeSelector) ResolveDirect(ctx context.Context, scopeID string, principal entity.Principal) (entity.BillingScope, error) {
	scope, err := s.repo.GetBillingScope(ctx, scopeID)
	if err != nil {
		return entity.BillingScope{}, fmt.Errorf("%w: %s: %v", types.ErrScopeNotFound, scopeID, err)
	}

	if !scope.IsActive() {
		return entity.BillingScope{}, fmt.Errorf("%w: %s is %s", types.ErrScopeInactive, scope.DisplayName, scope.State)
	}

	authorized, _, err := s.authz.IsAuthorized(ctx, scope.ID, principal)
	if err != nil {
		return entity.BillingScope{}, err
	}
	if !authorized {
		return entity.BillingScope{}, fmt.Errorf("%w: %s", types.ErrNotAuthorized, scope.DisplayName)
	}

	return scope, nil
}

// ResolveInteractive lista os escopos visíveis, filtra os inativos e os não
// autorizados e escolhe o alvo. Uma falha na checagem de autorização de um
// escopo individual vira aviso e exclui o escopo, sem derrubar a listagem.
func (s *ScopeSelector) ResolveInteractive(ctx context.Context, principal entity.Principal) (entity.BillingScope, error) {
	scopes, err := s.repo.ListBillingScopes(ctx)
	if err != nil {
		return entity.BillingScope{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	active := make([]entity.BillingScope, 0, len(scopes))
	for _, scope := range scopes {
		if scope.IsActive() {
			active = append(active, scope)
		}
	}
	if len(active) == 0 {
		return entity.BillingScope{}, types.ErrNoActiveScopes
	}

	current := principal
	candidates := make([]entity.BillingScope, 0, len(active))
	for _, scope := range active {
		authorized, refreshed, err := s.authz.IsAuthorized(ctx, scope.ID, current)
		if err != nil {
			s.console.LogWarning("Skipping subscription %s: %s", scope.DisplayName, err)
			continue
		}
		current = refreshed
		if authorized {
			candidates = append(candidates, scope)
		}
	}
	if len(candidates) == 0 {
		return entity.BillingScope{}, types.ErrNoAuthorizedScopes
	}

	if len(candidates) == 1 {
		s.console.LogInfo("Using subscription %s", candidates[0].DisplayName)
		return candidates[0], nil
	}

	options := make([]string, len(candidates))
	for i, scope := range candidates {
		options[i] = fmt.Sprintf("%s (%s)", scope.DisplayName, scope.ID)
	}
	idx, err := s.console.Select("Select a subscription", options)
	if err != nil {
		return entity.BillingScope{}, fmt.Errorf("subscription selection failed: %w", err)
	}
	return candidates[idx], nil
}
