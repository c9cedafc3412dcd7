package syncing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// RateLimitWindow é a janela fixa da cota imposta pelo provedor
	RateLimitWindow = 60 * time.Second
	// RateLimitCapacity é a quantidade de unidades permitidas por janela
	RateLimitCapacity = 1200
)

// ErrNoActiveProperty indica que a propriedade informada é inválida ou vazia
var ErrNoActiveProperty = errors.New("nenhuma propriedade ativa para a conta")

// RateLimitedError indica que a cota da janela atual foi esgotada.
// Wait informa quanto tempo falta até a janela reabrir.
type RateLimitedError struct {
	Wait time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("limite de requisições excedido, aguarde %dms", e.Wait.Milliseconds())
}

// Clock abstrai a origem do tempo para permitir testes determinísticos
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RateLimiter controla a cota de chamadas à API externa por (conta, propriedade)
type RateLimiter interface {
	CheckRate(accountID, siteURL string, requestCount int) error
}

type rateLimitBucket struct {
	windowStart time.Time
	consumed    int
}

type rateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rateLimitBucket
	capacity int
	window   time.Duration
	clock    Clock
}

// NewRateLimiter cria um limitador com a cota padrão do provedor
func NewRateLimiter() RateLimiter {
	return NewRateLimiterWithClock(systemClock{})
}

// NewRateLimiterWithClock cria um limitador com relógio injetável
func NewRateLimiterWithClock(clock Clock) RateLimiter {
	return &rateLimiter{
		buckets:  make(map[string]*rateLimitBucket),
		capacity: RateLimitCapacity,
		window:   RateLimitWindow,
		clock:    clock,
	}
}

// CheckRate consome requestCount unidades da cota da propriedade. Retorna
// RateLimitedError quando a janela atual não comporta o consumo; a cota
// nunca fica negativa nem ultrapassa a capacidade dentro de uma janela.
func (rl *rateLimiter) CheckRate(accountID, siteURL string, requestCount int) error {
	if strings.TrimSpace(accountID) == "" || strings.TrimSpace(siteURL) == "" {
		return ErrNoActiveProperty
	}

	if requestCount < 1 {
		requestCount = 1
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := accountID + "|" + siteURL
	now := rl.clock.Now()

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &rateLimitBucket{windowStart: now}
		rl.buckets[key] = bucket
	}

	// Janela expirada reinicia o consumo
	if now.Sub(bucket.windowStart) >= rl.window {
		bucket.windowStart = now
		bucket.consumed = 0
	}

	if bucket.consumed+requestCount > rl.capacity {
		wait := rl.window - now.Sub(bucket.windowStart)
		return &RateLimitedError{Wait: wait}
	}

	bucket.consumed += requestCount
	return nil
}
