package azure

import (
	"errors"
	"strings"
	"time"

	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// failureClass classifica uma tentativa falhada da API de Cost Management.
type failureClass int

const (
	// failurePermanent propaga imediatamente, sem nova tentativa.
	failurePermanent failureClass = iota
	// failureThrottled é o HTTP 429: espera fixa e re-tenta.
	failureThrottled
	// failureTransient é um 5xx: backoff exponencial limitado e re-tenta.
	failureTransient
)

// retryPolicy separa a política (limite de tentativas, classificação, atraso)
// do mecanismo de repetição, para que ambos sejam testáveis isoladamente.
type retryPolicy struct {
	MaxAttempts int
	Classify    func(error) failureClass
	Delay       func(class failureClass, attempt int) time.Duration
}

// withRetry executa op até MaxAttempts vezes conforme a política. Falhas
// permanentes e a última tentativa propagam o erro sem dormir.
func withRetry(policy retryPolicy, sleep func(time.Duration), op func() error) error {
	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		class := policy.Classify(err)
		if class == failurePermanent || attempt == policy.MaxAttempts {
			return err
		}
		sleep(policy.Delay(class, attempt))
	}
	return err
}

const (
	queryMaxAttempts  = 6
	throttleDelay     = 10 * time.Second
	transientDelayCap = 60 * time.Second
)

// classifyQueryFailure prefere o status estruturado do APIError; o texto
// ("429" / "too many requests") fica como último recurso para erros de
// transporte que não carregam status.
func classifyQueryFailure(err error) failureClass {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 429:
			return failureThrottled
		case apiErr.Status >= 500:
			return failureTransient
		default:
			return failurePermanent
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
		return failureThrottled
	}
	return failurePermanent
}

// queryDelay aplica 10s fixos para throttling e min(60, 2^attempt) segundos
// para erros transitórios de servidor.
func queryDelay(class failureClass, attempt int) time.Duration {
	if class == failureThrottled {
		return throttleDelay
	}
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > transientDelayCap {
		delay = transientDelayCap
	}
	return delay
}
