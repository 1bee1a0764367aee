package types

import (
	"errors"
	"fmt"
)

// Erros de validação do intervalo de anos, reportados antes de qualquer chamada de rede.
var (
	ErrInvalidRangeFormat = errors.New("invalid year range format, expected YYYY or YYYY:YYYY")
	ErrRangeOutOfBounds   = errors.New("year range must be within [2000, 2100]")
	ErrRangeInverted      = errors.New("start year is greater than end year")
)

// Erros de resolução de escopo e autorização.
var (
	ErrScopeNotFound            = errors.New("subscription not found for the current account")
	ErrScopeInactive            = errors.New("subscription is not in an active state")
	ErrNotAuthorized            = errors.New("current account does not hold the Owner role on this subscription")
	ErrNoActiveScopes           = errors.New("no active subscriptions are visible to the current account")
	ErrNoAuthorizedScopes       = errors.New("no subscription grants the Owner role to the current account")
	ErrAuthorizationCheckFailed = errors.New("failed to verify role assignments")
)

// Erros de consulta e normalização. São fatais para o ano consultado e nunca re-tentados.
var (
	ErrMissingColumns  = errors.New("cost query response does not contain the expected cost/date columns")
	ErrUnparseableDate = errors.New("cost query response contains an unparseable date value")
	ErrEmptyResponse   = errors.New("cost query response is empty")
)

// APIError representa uma resposta não-2xx da API de Cost Management,
// com a mensagem extraída do corpo de erro estruturado do provedor.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("cost query failed (HTTP %d): %s: %s", e.Status, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("cost query failed (HTTP %d): %s", e.Status, e.Message)
	case e.Code != "":
		return fmt.Sprintf("cost query failed (HTTP %d): %s", e.Status, e.Code)
	default:
		return fmt.Sprintf("cost query failed (HTTP %d)", e.Status)
	}
}
