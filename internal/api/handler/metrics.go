package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/pkg/apiErrors"
	"github.com/0xFlo/prism-sub007/pkg/log"
	"github.com/0xFlo/prism-sub007/pkg/utils"
)

// GetSearchMetrics lista as métricas diárias por URL de uma propriedade em
// um intervalo de datas. É a leitura que alimenta o painel junto com o
// fluxo de eventos de sincronização.
func GetSearchMetrics(metricRepo repository.SearchMetricRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		accountID := r.URL.Query().Get("account_id")
		siteURL := r.URL.Query().Get("site_url")
		if accountID == "" || siteURL == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "account_id e site_url são obrigatórios", nil)
			return
		}

		startParam := r.URL.Query().Get("start_date")
		endParam := r.URL.Query().Get("end_date")
		if startParam == "" || endParam == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "start_date e end_date são obrigatórios", nil)
			return
		}

		startDate, err := utils.ParseDate(startParam)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida", nil)
			return
		}

		endDate, err := utils.ParseDate(endParam)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida", nil)
			return
		}

		entries, err := metricRepo.GetByDateRange(accountID, siteURL, *startDate, *endDate)
		if err != nil {
			logger.WithFields(log.Fields{
				"site_url": siteURL,
				"error":    err.Error(),
			}).Error("metrics: falha ao consultar métricas de busca")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar métricas de busca", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})
}

// GetLifetimeStat retorna o agregado vitalício de uma URL de uma
// propriedade
func GetLifetimeStat(lifetimeRepo repository.LifetimeStatRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		accountID := r.URL.Query().Get("account_id")
		siteURL := r.URL.Query().Get("site_url")
		url := r.URL.Query().Get("url")
		if accountID == "" || siteURL == "" || url == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "account_id, site_url e url são obrigatórios", nil)
			return
		}

		stat, err := lifetimeRepo.GetByURL(accountID, siteURL, url)
		if err != nil {
			logger.WithFields(log.Fields{
				"site_url": siteURL,
				"url":      url,
				"error":    err.Error(),
			}).Error("metrics: falha ao consultar estatísticas vitalícias")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar estatísticas vitalícias", nil)
			return
		}

		if stat == nil {
			apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Nenhuma estatística para esta URL", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stat)
	})
}

// GetProperty retorna uma propriedade pelo identificador
func GetProperty(propertyRepo repository.PropertyRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador da propriedade não especificado", nil)
			return
		}

		property, err := propertyRepo.GetByID(id)
		if err != nil {
			logger.WithFields(log.Fields{
				"property_id": id,
				"error":       err.Error(),
			}).Error("metrics: falha ao consultar propriedade")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar propriedade", nil)
			return
		}

		if property == nil {
			apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Propriedade não encontrada", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(property)
	})
}
