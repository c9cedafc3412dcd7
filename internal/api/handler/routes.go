package handler

import (
	"net/http"

	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/internal/api/handler/router"
	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Sync(service *syncing.Service) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sync",
			Method:  http.MethodPost,
			Handler: TriggerSync(service),
		},
		{
			Path:    "/v1/sync/status",
			Method:  http.MethodGet,
			Handler: GetSyncStatus(service),
		},
		{
			Path:    "/v1/sync/history",
			Method:  http.MethodGet,
			Handler: GetSyncHistory(service),
		},
		{
			Path:    "/v1/sync/jobs/:id/pause",
			Method:  http.MethodPost,
			Handler: PauseSyncJob(service),
		},
		{
			Path:    "/v1/sync/jobs/:id/resume",
			Method:  http.MethodPost,
			Handler: ResumeSyncJob(service),
		},
		{
			Path:    "/v1/sync/jobs/:id/stop",
			Method:  http.MethodPost,
			Handler: StopSyncJob(service),
		},
		{
			Path:    "/v1/sync/events",
			Method:  http.MethodGet,
			Handler: SyncEvents(service),
		},
	}
}

func Metrics(
	metricRepo repository.SearchMetricRepository,
	lifetimeRepo repository.LifetimeStatRepository,
	propertyRepo repository.PropertyRepository,
) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/metrics",
			Method:  http.MethodGet,
			Handler: GetSearchMetrics(metricRepo),
		},
		{
			Path:    "/v1/metrics/lifetime",
			Method:  http.MethodGet,
			Handler: GetLifetimeStat(lifetimeRepo),
		},
		{
			Path:    "/v1/properties/:id",
			Method:  http.MethodGet,
			Handler: GetProperty(propertyRepo),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
