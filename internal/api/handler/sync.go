package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
	"github.com/0xFlo/prism-sub007/pkg/apiErrors"
	"github.com/0xFlo/prism-sub007/pkg/log"
	"github.com/0xFlo/prism-sub007/pkg/utils"
)

// TriggerSyncRequest é o corpo da requisição de disparo de uma
// sincronização
type TriggerSyncRequest struct {
	AccountID   string `json:"account_id"`
	SiteURL     string `json:"site_url"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Force       bool   `json:"force"`
	StopOnEmpty bool   `json:"stop_on_empty"`
}

// TriggerSync dispara uma sincronização de um intervalo de datas em
// segundo plano. O progresso fica disponível em /v1/sync/status e
// /v1/sync/events.
func TriggerSync(service *syncing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var request TriggerSyncRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			logger.WithError(err).Warn("sync: corpo da requisição inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		if request.AccountID == "" || request.SiteURL == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "account_id e site_url são obrigatórios", nil)
			return
		}

		if request.StartDate == "" || request.EndDate == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "start_date e end_date são obrigatórios", nil)
			return
		}

		startDate, err := utils.ParseDate(request.StartDate)
		if err != nil {
			logger.WithFields(log.Fields{
				"start_date": request.StartDate,
				"error":      err.Error(),
			}).Warn("sync: parâmetro start_date inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida", nil)
			return
		}

		endDate, err := utils.ParseDate(request.EndDate)
		if err != nil {
			logger.WithFields(log.Fields{
				"end_date": request.EndDate,
				"error":    err.Error(),
			}).Warn("sync: parâmetro end_date inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida", nil)
			return
		}

		if current := service.Progress().CurrentState(); current != nil && !current.Status.Terminal() {
			apiErrors.WriteError(w, apiErrors.ErrSyncAlreadyRunning, "Já existe uma sincronização em andamento", map[string]any{
				"job_id": current.ID,
			})
			return
		}

		logger.WithFields(log.Fields{
			"account_id": request.AccountID,
			"site_url":   request.SiteURL,
			"start_date": startDate.Format(time.DateOnly),
			"end_date":   endDate.Format(time.DateOnly),
			"force":      request.Force,
		}).Info("sync: disparando sincronização manual")

		go func() {
			report, err := service.Run(request.AccountID, request.SiteURL, *startDate, *endDate, syncing.SyncOptions{
				Force:       request.Force,
				StopOnEmpty: request.StopOnEmpty,
			})
			if err != nil {
				logger.WithFields(log.Fields{
					"account_id": request.AccountID,
					"site_url":   request.SiteURL,
					"error":      err.Error(),
				}).Error("sync: sincronização disparada manualmente terminou com erro")
				return
			}
			logger.WithFields(log.Fields{
				"job_id": report.JobID,
				"status": report.Status,
			}).Info("sync: sincronização disparada manualmente concluída")
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Sincronização iniciada",
		})
	})
}

// GetSyncStatus retorna o estado do job ativo (ou o último encerrado)
func GetSyncStatus(service *syncing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := service.Progress().CurrentState()
		if current == nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncJobNotFound, "Nenhuma sincronização registrada", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(current); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("sync: falha ao codificar o estado do job")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// GetSyncHistory retorna os jobs encerrados, do mais recente para o mais
// antigo
func GetSyncHistory(service *syncing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		history := service.Progress().History()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(history); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("sync: falha ao codificar o histórico")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// PauseSyncJob suspende cooperativamente o job informado
func PauseSyncJob(service *syncing.Service) http.Handler {
	return jobControlHandler(func(jobID string) error {
		return service.Progress().RequestPause(jobID)
	}, "Pausa solicitada")
}

// ResumeSyncJob retoma um job pausado
func ResumeSyncJob(service *syncing.Service) http.Handler {
	return jobControlHandler(func(jobID string) error {
		return service.Progress().ResumeJob(jobID)
	}, "Retomada solicitada")
}

// StopSyncJob solicita a interrupção definitiva do job informado
func StopSyncJob(service *syncing.Service) http.Handler {
	return jobControlHandler(func(jobID string) error {
		return service.Progress().RequestStop(jobID)
	}, "Interrupção solicitada")
}

// jobControlHandler aplica uma operação de controle ao job da URL e
// traduz os erros do domínio para o envelope da API
func jobControlHandler(control func(jobID string) error, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		jobID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if jobID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do job não especificado", nil)
			return
		}

		if err := control(jobID); err != nil {
			logger.WithFields(log.Fields{
				"job_id": jobID,
				"error":  err.Error(),
			}).Warn("sync: operação de controle rejeitada")

			if errors.Is(err, syncing.ErrNoSuchJob) {
				apiErrors.WriteError(w, apiErrors.ErrSyncJobNotFound, err.Error(), nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrSyncInvalidTransition, err.Error(), nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": message,
			"job_id":  jobID,
		})
	})
}
