package syncing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock é um relógio controlável para testes determinísticos
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimiter_CheckRate(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		siteURL  string
		validate func(t *testing.T, limiter RateLimiter, clock *fakeClock)
	}{
		{
			name:    "Consome toda a capacidade da janela sem erro",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				for i := 0; i < RateLimitCapacity; i++ {
					require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 1))
				}
			},
		},
		{
			name:    "Requisição além da capacidade retorna erro com espera da janela cheia",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity))

				err := limiter.CheckRate("acc-1", "sc-domain:example.com", 1)
				require.Error(t, err)

				limited, ok := err.(*RateLimitedError)
				require.True(t, ok, "esperava RateLimitedError, veio %T", err)
				assert.Equal(t, int64(60000), limited.Wait.Milliseconds())
			},
		},
		{
			name:    "Espera diminui conforme a janela avança",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity))

				clock.Advance(45 * time.Second)

				err := limiter.CheckRate("acc-1", "sc-domain:example.com", 1)
				require.Error(t, err)

				limited, ok := err.(*RateLimitedError)
				require.True(t, ok)
				assert.Equal(t, int64(15000), limited.Wait.Milliseconds())
			},
		},
		{
			name:    "Janela expirada reabre a cota integral",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity))
				require.Error(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 1))

				clock.Advance(RateLimitWindow)

				assert.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity))
			},
		},
		{
			name:    "Consumo parcial não é descontado quando o pedido estoura a cota",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity-10))

				// Pedido de 20 não cabe; os 10 restantes continuam disponíveis
				require.Error(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 20))
				assert.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 10))
			},
		},
		{
			name:    "Propriedades diferentes têm cotas independentes",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity))
				require.Error(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 1))

				assert.NoError(t, limiter.CheckRate("acc-1", "sc-domain:other.com", 1))
				assert.NoError(t, limiter.CheckRate("acc-2", "sc-domain:example.com", 1))
			},
		},
		{
			name:    "Propriedade vazia retorna erro de propriedade inválida",
			account: "acc-1",
			siteURL: "",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				err := limiter.CheckRate("acc-1", "  ", 1)
				assert.ErrorIs(t, err, ErrNoActiveProperty)

				err = limiter.CheckRate("", "sc-domain:example.com", 1)
				assert.ErrorIs(t, err, ErrNoActiveProperty)
			},
		},
		{
			name:    "Contagem menor que um é tratada como uma unidade",
			account: "acc-1",
			siteURL: "sc-domain:example.com",
			validate: func(t *testing.T, limiter RateLimiter, clock *fakeClock) {
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 0))
				require.NoError(t, limiter.CheckRate("acc-1", "sc-domain:example.com", RateLimitCapacity-1))
				assert.Error(t, limiter.CheckRate("acc-1", "sc-domain:example.com", 1))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			limiter := NewRateLimiterWithClock(clock)
			tt.validate(t, limiter, clock)
		})
	}
}

func TestRateLimiter_ConcurrentConsumption(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiterWithClock(clock)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	// 300 goroutines pedindo 5 unidades: exatamente 240 devem passar
	for i := 0; i < 300; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.CheckRate("acc-1", "sc-domain:example.com", 5); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, RateLimitCapacity/5, granted)
}
