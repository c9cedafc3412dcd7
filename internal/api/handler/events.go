package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
	"github.com/0xFlo/prism-sub007/pkg/log"
)

// SyncEvents transmite as transições de progresso como server-sent
// events. Assinantes lentos perdem eventos em vez de represar a
// sincronização.
func SyncEvents(service *syncing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming não suportado", http.StatusInternalServerError)
			return
		}

		subID, events := service.Progress().Subscribe()
		defer service.Progress().Unsubscribe(subID)

		logger.WithField("subscriber_id", subID).Info("sync: assinante de eventos conectado")

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				logger.WithField("subscriber_id", subID).Info("sync: assinante de eventos desconectado")
				return

			case event, open := <-events:
				if !open {
					return
				}

				// Cada quadro carrega o retrato completo do job além da
				// carga do evento; assinantes que perderam eventos
				// ressincronizam sem consultar a API
				payload, err := json.Marshal(event)
				if err != nil {
					logger.WithFields(log.Fields{
						"event_type": event.Type,
						"error":      err.Error(),
					}).Error("sync: falha ao codificar evento")
					continue
				}

				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
				flusher.Flush()
			}
		}
	})
}
