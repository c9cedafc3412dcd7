package syncing

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/0xFlo/prism-sub007/pkg/utils"
)

// JobStatus é o estado da máquina de estados de uma sincronização
type JobStatus string

const (
	JobStatusRunning               JobStatus = "running"
	JobStatusPaused                JobStatus = "paused"
	JobStatusCancelling            JobStatus = "cancelling"
	JobStatusCompleted             JobStatus = "completed"
	JobStatusCompletedWithWarnings JobStatus = "completed_with_warnings"
	JobStatusCancelled             JobStatus = "cancelled"
	JobStatusFailed                JobStatus = "failed"
)

// Terminal indica se o estado é final
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCompletedWithWarnings, JobStatusCancelled, JobStatusFailed:
		return true
	}
	return false
}

// EventType identifica o tipo de evento publicado no canal de progresso
type EventType string

const (
	EventStarted       EventType = "started"
	EventStepStarted   EventType = "step_started"
	EventStepCompleted EventType = "step_completed"
	EventPaused        EventType = "paused"
	EventResumed       EventType = "resumed"
	EventStopping      EventType = "stopping"
	EventFinished      EventType = "finished"
)

// DayOutcome é o desfecho de um dia reportado em DayCompleted
type DayOutcome string

const (
	DayOutcomeOK      DayOutcome = "ok"
	DayOutcomeSkipped DayOutcome = "skipped"
	DayOutcomeError   DayOutcome = "error"
)

// JobMetrics acumula os totais de um job; apenas dias com desfecho ok
// contribuem
type JobMetrics struct {
	TotalURLs     int `json:"total_urls"`
	TotalRows     int `json:"total_rows"`
	TotalAPICalls int `json:"total_api_calls"`
}

// JobSummary é o resumo final anexado ao job no término
type JobSummary struct {
	DatesProcessed int    `json:"dates_processed"`
	DatesSkipped   int    `json:"dates_skipped"`
	DatesFailed    int    `json:"dates_failed"`
	TotalURLs      int    `json:"total_urls"`
	TotalRows      int    `json:"total_rows"`
	TotalAPICalls  int    `json:"total_api_calls"`
	Duration       string `json:"duration,omitempty"`
	Error          string `json:"error,omitempty"`
	HaltReason     string `json:"halt_reason,omitempty"`
	FailedOn       string `json:"failed_on,omitempty"`
}

// SyncJob é o retrato de uma sincronização em andamento ou recém-terminada
type SyncJob struct {
	ID             string      `json:"id"`
	AccountID      string      `json:"account_id"`
	SiteURL        string      `json:"site_url"`
	Status         JobStatus   `json:"status"`
	TotalSteps     int         `json:"total_steps"`
	CompletedSteps int         `json:"completed_steps"`
	CurrentStep    int         `json:"current_step,omitempty"`
	CurrentDate    string      `json:"current_date,omitempty"`
	Metrics        JobMetrics  `json:"metrics"`
	Summary        *JobSummary `json:"summary,omitempty"`
	Error          string      `json:"error,omitempty"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty"`
}

// Percent retorna o percentual concluído, arredondado a uma casa decimal.
// Estados terminais reportam 100 mesmo quando os passos não dividem
// igualmente; total zero reporta 0 sem divisão por zero.
func (j *SyncJob) Percent() float64 {
	if j.TotalSteps == 0 {
		return 0
	}
	if j.Status.Terminal() {
		return 100
	}

	percent := utils.RoundWithOneDecimalPlace(float64(j.CompletedSteps) / float64(j.TotalSteps) * 100)
	return math.Min(percent, 100)
}

// Event é publicado no canal de progresso a cada mutação; carrega o
// retrato completo do job além da carga específica do evento
type Event struct {
	Type    EventType `json:"type"`
	Job     SyncJob   `json:"job"`
	Payload any       `json:"payload,omitempty"`
}

// JobMeta descreve o job sendo iniciado
type JobMeta struct {
	AccountID  string `json:"account_id"`
	SiteURL    string `json:"site_url"`
	TotalSteps int    `json:"total_steps"`
}

// DayStart é a carga de DayStarted
type DayStart struct {
	Date time.Time `json:"date"`
	Step int       `json:"step"`
}

// DayEnd é a carga de DayCompleted
type DayEnd struct {
	Date     time.Time  `json:"date"`
	Step     int        `json:"step"`
	Outcome  DayOutcome `json:"outcome"`
	URLs     int        `json:"urls"`
	Rows     int        `json:"rows"`
	APICalls int        `json:"api_calls"`
	Error    string     `json:"error,omitempty"`
}

// JobFinish é a carga de FinishJob
type JobFinish struct {
	Status     JobStatus   `json:"status"`
	Summary    *JobSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
	HaltReason string      `json:"halt_reason,omitempty"`
	FailedOn   string      `json:"failed_on,omitempty"`
}

// Erros das operações de progresso
var (
	ErrJobAlreadyRunning = errors.New("já existe uma sincronização em andamento")
	ErrNoSuchJob         = errors.New("nenhuma sincronização com este identificador")
)

const (
	historyLimit     = 50
	subscriberBuffer = 16
)

// SyncProgress acompanha exatamente um job ativo por instância e publica
// cada transição para os assinantes. O estado pertence unicamente a esta
// estrutura; os demais componentes interagem apenas pelas operações
// públicas.
type SyncProgress struct {
	mu          sync.Mutex
	current     *SyncJob
	history     []SyncJob
	subscribers map[int]chan Event
	nextSubID   int
}

// NewSyncProgress cria um rastreador de progresso vazio
func NewSyncProgress() *SyncProgress {
	return &SyncProgress{
		subscribers: make(map[int]chan Event),
	}
}

// StartJob registra um novo job ativo e publica started. Falha se já
// houver um job não-terminal.
func (p *SyncProgress) StartJob(meta JobMeta) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && !p.current.Status.Terminal() {
		return "", ErrJobAlreadyRunning
	}

	job := &SyncJob{
		ID:         uuid.New().String(),
		AccountID:  meta.AccountID,
		SiteURL:    meta.SiteURL,
		Status:     JobStatusRunning,
		TotalSteps: meta.TotalSteps,
		StartedAt:  time.Now(),
	}
	p.current = job

	p.broadcastLocked(EventStarted, meta)
	return job.ID, nil
}

// DayStarted registra o passo e o dia em processamento, para exibição
func (p *SyncProgress) DayStarted(jobID string, start DayStart) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}

	p.current.CurrentStep = start.Step
	p.current.CurrentDate = start.Date.Format(time.DateOnly)

	p.broadcastLocked(EventStepStarted, start)
	return nil
}

// DayCompleted avança o progresso incondicionalmente (dias pulados também
// contam) e acumula métricas apenas para desfecho ok
func (p *SyncProgress) DayCompleted(jobID string, end DayEnd) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}

	p.current.CompletedSteps++
	p.current.CurrentStep = 0
	p.current.CurrentDate = ""

	if end.Outcome == DayOutcomeOK {
		p.current.Metrics.TotalURLs += end.URLs
		p.current.Metrics.TotalRows += end.Rows
		p.current.Metrics.TotalAPICalls += end.APICalls
	}

	p.broadcastLocked(EventStepCompleted, end)
	return nil
}

// RequestPause suspende cooperativamente o job: nenhum dia novo inicia,
// trabalho em andamento termina normalmente
func (p *SyncProgress) RequestPause(jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}
	if p.current.Status != JobStatusRunning {
		return errors.Errorf("não é possível pausar um job em estado %s", p.current.Status)
	}

	p.current.Status = JobStatusPaused
	p.broadcastLocked(EventPaused, nil)
	return nil
}

// ResumeJob retoma um job pausado
func (p *SyncProgress) ResumeJob(jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}
	if p.current.Status != JobStatusPaused {
		return errors.Errorf("não é possível retomar um job em estado %s", p.current.Status)
	}

	p.current.Status = JobStatusRunning
	p.broadcastLocked(EventResumed, nil)
	return nil
}

// RequestStop solicita o cancelamento do job; o orquestrador verifica este
// estado entre os dias e finaliza apenas o trabalho em andamento
func (p *SyncProgress) RequestStop(jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}
	if p.current.Status.Terminal() {
		return errors.Errorf("não é possível cancelar um job em estado %s", p.current.Status)
	}

	p.current.Status = JobStatusCancelling
	p.broadcastLocked(EventStopping, nil)
	return nil
}

// FinishJob congela o job em um estado terminal e o move para o histórico.
// Uma falha preserva o progresso no momento da falha e anexa o erro, o
// motivo da interrupção e o dia que falhou ao resumo.
func (p *SyncProgress) FinishJob(jobID string, finish JobFinish) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkJobLocked(jobID); err != nil {
		return err
	}
	if !finish.Status.Terminal() {
		return errors.Errorf("estado final inválido: %s", finish.Status)
	}

	now := time.Now()
	job := p.current
	job.Status = finish.Status
	job.FinishedAt = &now
	job.CurrentStep = 0
	job.CurrentDate = ""
	job.Error = finish.Error

	summary := finish.Summary
	if summary == nil {
		summary = &JobSummary{}
	}
	summary.TotalURLs = job.Metrics.TotalURLs
	summary.TotalRows = job.Metrics.TotalRows
	summary.TotalAPICalls = job.Metrics.TotalAPICalls
	summary.Duration = now.Sub(job.StartedAt).String()
	if finish.Status == JobStatusFailed {
		summary.Error = finish.Error
		summary.HaltReason = finish.HaltReason
		summary.FailedOn = finish.FailedOn
	}
	job.Summary = summary

	// Histórico limitado: os jobs mais antigos saem primeiro
	p.history = append(p.history, *job)
	if len(p.history) > historyLimit {
		p.history = p.history[len(p.history)-historyLimit:]
	}

	p.broadcastLocked(EventFinished, finish)
	return nil
}

// CurrentState retorna uma cópia do job atual, ou nil se nenhum existe
func (p *SyncProgress) CurrentState() *SyncJob {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	snapshot := *p.current
	return &snapshot
}

// History retorna os jobs terminados, do mais antigo para o mais recente
func (p *SyncProgress) History() []SyncJob {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]SyncJob(nil), p.history...)
}

// Subscribe registra um assinante do canal de progresso e retorna o seu
// identificador e o canal de eventos
func (p *SyncProgress) Subscribe() (int, <-chan Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++

	ch := make(chan Event, subscriberBuffer)
	p.subscribers[id] = ch
	return id, ch
}

// Unsubscribe remove um assinante e fecha o seu canal
func (p *SyncProgress) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subscribers[id]; ok {
		delete(p.subscribers, id)
		close(ch)
	}
}

func (p *SyncProgress) checkJobLocked(jobID string) error {
	if p.current == nil || p.current.ID != jobID {
		return ErrNoSuchJob
	}
	return nil
}

// broadcastLocked publica um evento com o retrato atual do job para todos
// os assinantes; assinantes lentos perdem eventos em vez de bloquear o
// rastreador
func (p *SyncProgress) broadcastLocked(eventType EventType, payload any) {
	event := Event{
		Type:    eventType,
		Job:     *p.current,
		Payload: payload,
	}

	for id, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			logrus.WithFields(logrus.Fields{
				"subscriber": id,
				"event":      string(eventType),
			}).Warn("Assinante de progresso sem consumir eventos, descartando")
		}
	}
}
