package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
)

// sseRecorder captura um fluxo de server-sent events com acesso
// sincronizado ao corpo, já que o handler escreve em outra goroutine
type sseRecorder struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	flushes int
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{header: make(http.Header)}
}

func (r *sseRecorder) Header() http.Header { return r.header }

func (r *sseRecorder) WriteHeader(int) {}

func (r *sseRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *sseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
}

func (r *sseRecorder) flushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

func (r *sseRecorder) bodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

// sseFrames separa o corpo capturado em pares (evento, dados)
func sseFrames(body string) map[string]string {
	frames := make(map[string]string)

	for _, block := range strings.Split(body, "\n\n") {
		var event, data string
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "event: ") {
				event = strings.TrimPrefix(line, "event: ")
			}
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
		if event != "" {
			frames[event] = data
		}
	}

	return frames
}

func TestSyncEvents_QuadrosCarregamRetratoDoJob(t *testing.T) {
	progress := syncing.NewSyncProgress()
	service := syncing.NewService(nil, nil, nil, progress, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/sync/events", nil).WithContext(ctx)
	rec := newSSERecorder()

	done := make(chan struct{})
	go func() {
		SyncEvents(service).ServeHTTP(rec, req)
		close(done)
	}()

	// O primeiro flush acontece logo após a assinatura
	require.Eventually(t, func() bool {
		return rec.flushCount() > 0
	}, time.Second, 5*time.Millisecond)

	jobID, err := progress.StartJob(syncing.JobMeta{
		AccountID:  "ACC001",
		SiteURL:    "https://example.com",
		TotalSteps: 3,
	})
	require.NoError(t, err)
	require.NoError(t, progress.RequestPause(jobID))

	require.Eventually(t, func() bool {
		return strings.Contains(rec.bodyString(), "event: paused")
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	frames := sseFrames(rec.bodyString())
	require.Contains(t, frames, "started")
	require.Contains(t, frames, "paused")

	// Todo quadro carrega o retrato completo do job; eventos sem carga
	// própria nunca chegam como null
	for _, event := range []string{"started", "paused"} {
		var decoded struct {
			Type string          `json:"type"`
			Job  syncing.SyncJob `json:"job"`
		}
		require.NoError(t, json.Unmarshal([]byte(frames[event]), &decoded), "quadro %s ilegível", event)

		assert.Equal(t, event, decoded.Type)
		assert.Equal(t, jobID, decoded.Job.ID)
		assert.Equal(t, "https://example.com", decoded.Job.SiteURL)
		assert.Equal(t, 3, decoded.Job.TotalSteps)
	}

	assert.NotEqual(t, "null", frames["paused"])
	assert.Equal(t, syncing.JobStatusPaused, func() syncing.JobStatus {
		var decoded struct {
			Job syncing.SyncJob `json:"job"`
		}
		_ = json.Unmarshal([]byte(frames["paused"]), &decoded)
		return decoded.Job.Status
	}())
}
