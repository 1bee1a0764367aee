package azure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/domain/repository"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

const (
	defaultBaseURL = "https://management.azure.com"

	armScope       = "https://management.azure.com/.default"
	directoryScope = "https://graph.microsoft.com/.default"

	subscriptionsAPIVersion   = "2022-12-01"
	roleAssignmentsAPIVersion = "2022-04-01"

	// ID da role definition built-in "Owner".
	ownerRoleDefinitionID = "8e3af657-a8ff-443c-a75c-2fe8c4bcb635"
)

// AzureRepositoryImpl implementa o AzureRepository sobre a API REST do ARM,
// com autenticação via azidentity.
type AzureRepositoryImpl struct {
	baseURL    string
	httpClient *http.Client

	mu         sync.Mutex
	credential azcore.TokenCredential

	// newInteractiveCredential é injetável para os testes não abrirem browser.
	newInteractiveCredential func() (azcore.TokenCredential, error)

	// sleep é injetável para os testes não dormirem de verdade.
	sleep func(time.Duration)
}

// NewAzureRepository cria uma nova implementação do AzureRepository. A sessão
// salva do Azure CLI é usada como credencial inicial; o sign-in interativo
// fica disponível como fallback.
func NewAzureRepository() repository.AzureRepository {
	repo := &AzureRepositoryImpl{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		sleep:      time.Sleep,
	}
	repo.newInteractiveCredential = func() (azcore.TokenCredential, error) {
		return azidentity.NewInteractiveBrowserCredential(nil)
	}
	if cred, err := azidentity.NewAzureCLICredential(nil); err == nil {
		repo.credential = cred
	}
	return repo
}

// GetActivePrincipal resolve a identidade da sessão ativa a partir das claims
// do token ARM.
func (r *AzureRepositoryImpl) GetActivePrincipal(ctx context.Context) (entity.Principal, error) {
	token, err := r.armToken(ctx)
	if err != nil {
		return entity.Principal{}, fmt.Errorf("no active Azure session: %w", err)
	}
	return principalFromToken(token)
}

// SignIn autentica interativamente e troca a credencial ativa. Com
// expandedScope, um token de diretório é adquirido primeiro para forçar o
// consentimento do escopo adicional exigido pelas consultas de identidade.
func (r *AzureRepositoryImpl) SignIn(ctx context.Context, expandedScope bool) (entity.Principal, error) {
	cred, err := r.newInteractiveCredential()
	if err != nil {
		return entity.Principal{}, fmt.Errorf("failed to initialize interactive credential: %w", err)
	}

	if expandedScope {
		if _, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{directoryScope}}); err != nil {
			return entity.Principal{}, fmt.Errorf("failed to acquire directory scope: %w", err)
		}
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{armScope}})
	if err != nil {
		return entity.Principal{}, fmt.Errorf("interactive sign-in failed: %w", err)
	}

	r.mu.Lock()
	r.credential = cred
	r.mu.Unlock()

	return principalFromToken(token.Token)
}

// ListBillingScopes lista as subscriptions visíveis para a sessão atual.
func (r *AzureRepositoryImpl) ListBillingScopes(ctx context.Context) ([]entity.BillingScope, error) {
	var out struct {
		Value []subscriptionResource `json:"value"`
	}
	endpoint := fmt.Sprintf("%s/subscriptions?api-version=%s", r.baseURL, subscriptionsAPIVersion)
	if err := r.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}

	scopes := make([]entity.BillingScope, 0, len(out.Value))
	for _, sub := range out.Value {
		scopes = append(scopes, sub.toEntity())
	}
	return scopes, nil
}

// GetBillingScope busca uma subscription pelo ID.
func (r *AzureRepositoryImpl) GetBillingScope(ctx context.Context, scopeID string) (entity.BillingScope, error) {
	var out subscriptionResource
	endpoint := fmt.Sprintf("%s/subscriptions/%s?api-version=%s", r.baseURL, url.PathEscape(scopeID), subscriptionsAPIVersion)
	if err := r.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return entity.BillingScope{}, err
	}
	return out.toEntity(), nil
}

// ListOwnerRoleAssignments consulta as atribuições da role Owner no escopo,
// com o filtro escolhido pelo tipo do principal. O formato de object id puro
// (UUID) é reconhecido como fallback.
func (r *AzureRepositoryImpl) ListOwnerRoleAssignments(ctx context.Context, scopeID string, principal entity.Principal) ([]entity.RoleAssignment, error) {
	var filter string
	switch {
	case principal.Kind == entity.PrincipalUser:
		filter = fmt.Sprintf("assignedTo('%s')", principal.ID)
	case principal.Kind == entity.PrincipalServicePrincipal:
		filter = fmt.Sprintf("principalId eq '%s'", principal.ID)
	default:
		if _, err := uuid.Parse(principal.ID); err != nil {
			return nil, fmt.Errorf("unrecognized principal identifier %q", principal.ID)
		}
		filter = fmt.Sprintf("principalId eq '%s'", principal.ID)
	}

	var out struct {
		Value []roleAssignmentResource `json:"value"`
	}
	endpoint := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.Authorization/roleAssignments?api-version=%s&$filter=%s",
		r.baseURL, url.PathEscape(scopeID), roleAssignmentsAPIVersion, url.QueryEscape(filter))
	if err := r.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}

	assignments := make([]entity.RoleAssignment, 0, len(out.Value))
	for _, ra := range out.Value {
		// Só interessa a role Owner; o serviço retorna todas as roles do filtro.
		if !strings.HasSuffix(ra.Properties.RoleDefinitionID, ownerRoleDefinitionID) {
			continue
		}
		assignments = append(assignments, entity.RoleAssignment{
			ID:               ra.ID,
			Scope:            ra.Properties.Scope,
			RoleDefinitionID: ra.Properties.RoleDefinitionID,
			PrincipalID:      ra.Properties.PrincipalID,
		})
	}
	return assignments, nil
}

// subscriptionResource é a forma wire de uma subscription no ARM.
type subscriptionResource struct {
	SubscriptionID string `json:"subscriptionId"`
	DisplayName    string `json:"displayName"`
	TenantID       string `json:"tenantId"`
	State          string `json:"state"`
}

func (s subscriptionResource) toEntity() entity.BillingScope {
	return entity.BillingScope{
		ID:          s.SubscriptionID,
		DisplayName: s.DisplayName,
		TenantID:    s.TenantID,
		State:       entity.ScopeState(s.State),
	}
}

// roleAssignmentResource é a forma wire de um role assignment no ARM.
type roleAssignmentResource struct {
	ID         string `json:"id"`
	Properties struct {
		Scope            string `json:"scope"`
		RoleDefinitionID string `json:"roleDefinitionId"`
		PrincipalID      string `json:"principalId"`
	} `json:"properties"`
}

// armToken obtém um access token para o ARM com a credencial ativa.
func (r *AzureRepositoryImpl) armToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	cred := r.credential
	r.mu.Unlock()

	if cred == nil {
		return "", fmt.Errorf("no credential available, sign in first")
	}
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{armScope}})
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// doJSON executa uma chamada REST autenticada e decodifica a resposta,
// preservando números como json.Number. Respostas não-2xx viram APIError com a
// mensagem extraída do corpo de erro estruturado.
func (r *AzureRepositoryImpl) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	token, err := r.armToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseAPIError extrai uma mensagem legível do corpo de erro do provedor
// ({error:{code,message}}), com fallback genérico quando o corpo não ajuda.
func parseAPIError(status int, body []byte) *types.APIError {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &types.APIError{Status: status}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Code == "" && apiErr.Message == "" {
		apiErr.Message = "the provider returned no error details"
	}
	return apiErr
}

// principalFromToken decodifica as claims do access token (oid, upn, appid,
// idtyp) para identificar a identidade ativa.
func principalFromToken(token string) (entity.Principal, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return entity.Principal{}, fmt.Errorf("malformed access token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return entity.Principal{}, fmt.Errorf("malformed access token claims: %w", err)
	}

	var claims struct {
		ObjectID   string `json:"oid"`
		UPN        string `json:"upn"`
		UniqueName string `json:"unique_name"`
		AppID      string `json:"appid"`
		IDType     string `json:"idtyp"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return entity.Principal{}, fmt.Errorf("malformed access token claims: %w", err)
	}

	principal := entity.Principal{ID: claims.ObjectID, DisplayName: claims.Name}
	switch {
	case claims.UPN != "" || claims.UniqueName != "":
		principal.Kind = entity.PrincipalUser
		if principal.DisplayName == "" {
			principal.DisplayName = claims.UPN
			if principal.DisplayName == "" {
				principal.DisplayName = claims.UniqueName
			}
		}
	case claims.IDType == "app" || claims.AppID != "":
		principal.Kind = entity.PrincipalServicePrincipal
	default:
		principal.Kind = entity.PrincipalObjectID
	}

	if principal.ID == "" {
		return entity.Principal{}, fmt.Errorf("access token carries no object id claim")
	}
	return principal, nil
}
