package syncing

import (
	"fmt"
	"time"

	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRowLimit é o tamanho de página imposto pela API externa
	DefaultRowLimit = 25000

	defaultBatchSize      = 5
	defaultMaxConcurrency = 3
)

// QueryFetcher é o colaborador externo que executa uma chamada em lote de
// páginas. Retorna as respostas e o número de chamadas à API consumidas.
// Qualquer provedor que exponha linhas paginadas sob este contrato de
// requisição/resposta é substituível.
type QueryFetcher interface {
	FetchQueryBatch(accountID string, requests []domain.QueryPageRequest, operation string) ([]domain.QueryPageResponse, int, error)
}

// Decision é o resultado do callback de conclusão de um dia: continuar a
// paginação ou interrompê-la com um motivo
type Decision struct {
	halt   bool
	reason error
}

// Continue prossegue para os próximos dias e lotes
func Continue() Decision { return Decision{} }

// HaltWith interrompe a paginação com o motivo informado
func HaltWith(reason error) Decision { return Decision{halt: true, reason: reason} }

// DateCompletion é entregue ao callback exatamente uma vez quando a
// paginação de um dia termina
type DateCompletion struct {
	Date     time.Time
	Rows     *QueryAccumulator
	APICalls int
}

// DateResult é o resultado de um dia dentro de uma paginação
type DateResult struct {
	Date     time.Time
	Rows     *QueryAccumulator
	APICalls int
	Partial  bool
}

// BatchCall registra uma chamada em lote emitida, para diagnóstico
type BatchCall struct {
	RequestIDs []string
	APICalls   int
	Duration   time.Duration
}

// PaginationResult agrega os resultados por dia de uma paginação completa
// ou parcial
type PaginationResult struct {
	ResultsByDate map[string]*DateResult
	TotalAPICalls int
	BatchLog      []BatchCall
}

// PaginatorOptions configura uma execução do paginador
type PaginatorOptions struct {
	BatchSize      int
	MaxConcurrency int
	MaxQueueSize   int
	RowLimit       int
	Operation      string
	OnComplete     func(DateCompletion) Decision
	RateLimiter    RateLimiter
}

// QueryPaginator busca todas as páginas de consultas de um conjunto de
// dias, respeitando a cota do provedor e o protocolo de interrupção do
// chamador
type QueryPaginator struct {
	fetcher QueryFetcher
}

// NewQueryPaginator cria um paginador sobre o cliente externo informado
func NewQueryPaginator(fetcher QueryFetcher) *QueryPaginator {
	return &QueryPaginator{fetcher: fetcher}
}

// dateState acompanha o progresso da paginação de um único dia
type dateState struct {
	date      time.Time
	acc       *QueryAccumulator
	completed bool
}

// batchOutcome é o resultado de um lote reportado por um worker ao
// coordenador
type batchOutcome struct {
	requests  []domain.QueryPageRequest
	responses []domain.QueryPageResponse
	apiCalls  int
	duration  time.Duration
	err       error
}

// paginationRun é o estado mutável de uma execução, de posse exclusiva do
// coordenador
type paginationRun struct {
	paginator *QueryPaginator
	accountID string
	siteURL   string
	opts      PaginatorOptions

	pending  []domain.QueryPageRequest
	unseeded []time.Time
	states   map[string]*dateState

	result     *PaginationResult
	halted     bool
	haltReason error
}

// FetchAllQueries busca todas as páginas de todos os dias informados. Em
// caso de interrupção retorna os resultados parciais acompanhados de um
// HaltError com o motivo; os dias já concluídos permanecem no resultado
// com as linhas minimizadas e os dias em andamento são marcados parciais.
func (p *QueryPaginator) FetchAllQueries(accountID, siteURL string, dates []time.Time, opts PaginatorOptions) (*PaginationResult, error) {
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.RowLimit < 1 {
		opts.RowLimit = DefaultRowLimit
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = NewRateLimiter()
	}

	run := &paginationRun{
		paginator: p,
		accountID: accountID,
		siteURL:   siteURL,
		opts:      opts,
		unseeded:  append([]time.Time(nil), dates...),
		states:    make(map[string]*dateState, len(dates)),
		result: &PaginationResult{
			ResultsByDate: make(map[string]*DateResult, len(dates)),
		},
	}

	// Buffer igual à concorrência: workers nunca bloqueiam ao entregar
	// resultados, mesmo com o coordenador suspenso em um callback
	outcomes := make(chan batchOutcome, opts.MaxConcurrency)
	inFlight := 0

	for {
		// Despachar novos lotes enquanto houver trabalho e capacidade.
		// Após uma interrupção nenhum lote novo é emitido; apenas os em
		// andamento são aguardados.
		for !run.halted && inFlight < opts.MaxConcurrency {
			batch := run.nextBatch()
			if len(batch) == 0 {
				break
			}
			inFlight++
			go run.fetchBatch(batch, outcomes)
		}

		if inFlight == 0 {
			break
		}

		outcome := <-outcomes
		inFlight--
		run.handleOutcome(outcome)
	}

	run.finalize()

	if run.halted {
		return run.result, &HaltError{Reason: run.haltReason}
	}
	return run.result, nil
}

// nextBatch monta o próximo lote de requisições de página, semeando novos
// dias na fila conforme necessário
func (run *paginationRun) nextBatch() []domain.QueryPageRequest {
	for len(run.pending) < run.opts.BatchSize && len(run.unseeded) > 0 {
		if run.opts.MaxQueueSize > 0 && len(run.pending) >= run.opts.MaxQueueSize {
			break
		}

		date := run.unseeded[0]
		run.unseeded = run.unseeded[1:]

		key := date.Format(time.DateOnly)
		run.states[key] = &dateState{date: date, acc: NewAccumulator()}
		run.pending = append(run.pending, domain.QueryPageRequest{
			ID:       pageRequestID(key, 0),
			SiteURL:  run.siteURL,
			Date:     key,
			StartRow: 0,
			RowLimit: run.opts.RowLimit,
		})
	}

	n := len(run.pending)
	if n == 0 {
		return nil
	}
	if n > run.opts.BatchSize {
		n = run.opts.BatchSize
	}

	batch := run.pending[:n:n]
	run.pending = run.pending[n:]
	return batch
}

// fetchBatch executa um lote em um worker. Limitações de cota provocam
// espera e nova tentativa do mesmo lote, transparentes para o chamador.
func (run *paginationRun) fetchBatch(batch []domain.QueryPageRequest, outcomes chan<- batchOutcome) {
	for {
		err := run.opts.RateLimiter.CheckRate(run.accountID, run.siteURL, len(batch))
		if err == nil {
			break
		}

		if limited, ok := err.(*RateLimitedError); ok {
			logrus.WithFields(logrus.Fields{
				"site_url": run.siteURL,
				"wait_ms":  limited.Wait.Milliseconds(),
				"requests": len(batch),
			}).Info("Cota da API esgotada, aguardando a janela reabrir")
			time.Sleep(limited.Wait)
			continue
		}

		// Erro tipado do limitador (por exemplo, propriedade inválida)
		outcomes <- batchOutcome{requests: batch, err: err}
		return
	}

	start := time.Now()
	responses, apiCalls, err := run.paginator.fetcher.FetchQueryBatch(run.accountID, batch, run.opts.Operation)
	outcomes <- batchOutcome{
		requests:  batch,
		responses: responses,
		apiCalls:  apiCalls,
		duration:  time.Since(start),
		err:       err,
	}
}

// handleOutcome absorve o resultado de um lote: valida a correspondência
// das respostas, acumula linhas, agenda as próximas páginas e dispara as
// conclusões por dia
func (run *paginationRun) handleOutcome(outcome batchOutcome) {
	requestIDs := make([]string, len(outcome.requests))
	for i, req := range outcome.requests {
		requestIDs[i] = req.ID
	}

	run.result.BatchLog = append(run.result.BatchLog, BatchCall{
		RequestIDs: requestIDs,
		APICalls:   outcome.apiCalls,
		Duration:   outcome.duration,
	})

	if outcome.err != nil {
		run.halt(&QueryFetchError{Err: outcome.err})
		return
	}

	byID, err := run.matchResponses(outcome.requests, outcome.responses)
	if err != nil {
		run.halt(err)
		return
	}

	run.result.TotalAPICalls += outcome.apiCalls

	// Processar na ordem das requisições emitidas para manter a ordem
	// dos dias estável
	for _, req := range outcome.requests {
		resp := byID[req.ID]
		state := run.states[req.Date]

		state.acc.IngestChunk(resp.Rows)
		state.acc.AddAPICalls(1)

		if len(resp.Rows) >= req.RowLimit {
			// Página cheia indica que ainda há linhas; agendar a próxima,
			// exceto se a execução já foi interrompida
			if !run.halted {
				run.pending = append(run.pending, domain.QueryPageRequest{
					ID:       pageRequestID(req.Date, req.StartRow+req.RowLimit),
					SiteURL:  req.SiteURL,
					Date:     req.Date,
					StartRow: req.StartRow + req.RowLimit,
					RowLimit: req.RowLimit,
				})
			}
			continue
		}

		// Página curta ou vazia finaliza o dia
		run.completeDate(state)
	}
}

// matchResponses valida a correspondência um-para-um entre requisições e
// respostas de um lote
func (run *paginationRun) matchResponses(requests []domain.QueryPageRequest, responses []domain.QueryPageResponse) (map[string]domain.QueryPageResponse, error) {
	expected := make(map[string]bool, len(requests))
	for _, req := range requests {
		expected[req.ID] = true
	}

	byID := make(map[string]domain.QueryPageResponse, len(responses))
	var duplicates, unexpected []string

	for _, resp := range responses {
		if _, seen := byID[resp.ID]; seen {
			duplicates = append(duplicates, resp.ID)
			continue
		}
		if !expected[resp.ID] {
			unexpected = append(unexpected, resp.ID)
			continue
		}
		byID[resp.ID] = resp
	}

	if len(duplicates) > 0 {
		return nil, &BatchMismatchError{Kind: MismatchDuplicateParts, IDs: duplicates}
	}
	if len(unexpected) > 0 {
		return nil, &BatchMismatchError{Kind: MismatchUnexpectedParts, IDs: unexpected}
	}

	var missing []string
	for _, req := range requests {
		if _, ok := byID[req.ID]; !ok {
			missing = append(missing, req.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &BatchMismatchError{Kind: MismatchMissingParts, IDs: missing}
	}

	return byID, nil
}

// completeDate dispara o callback de conclusão de um dia exatamente uma
// vez e minimiza o acumulador já drenado
func (run *paginationRun) completeDate(state *dateState) {
	if state.completed {
		return
	}
	state.completed = true

	key := state.date.Format(time.DateOnly)

	if run.halted {
		// O dia terminou de paginar após a interrupção; as linhas não
		// chegaram a ser entregues ao chamador
		run.result.ResultsByDate[key] = &DateResult{
			Date:     state.date,
			Rows:     state.acc,
			APICalls: state.acc.APICalls(),
			Partial:  true,
		}
		return
	}

	run.result.ResultsByDate[key] = &DateResult{
		Date:     state.date,
		Rows:     state.acc,
		APICalls: state.acc.APICalls(),
	}

	decision := run.invokeCallback(DateCompletion{
		Date:     state.date,
		Rows:     state.acc,
		APICalls: state.acc.APICalls(),
	})

	// O callback já consumiu as linhas; não há razão para mantê-las
	state.acc.Minimize()

	if decision.halt {
		run.halt(decision.reason)
	}
}

// invokeCallback executa o callback do chamador dentro de uma barreira de
// erro: um pânico vira um motivo de interrupção tipado e nunca derruba o
// paginador
func (run *paginationRun) invokeCallback(completion DateCompletion) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"date":  completion.Date.Format(time.DateOnly),
				"panic": fmt.Sprint(r),
			}).Error("Pânico no callback de conclusão do dia")
			decision = HaltWith(&CallbackError{Message: fmt.Sprint(r)})
		}
	}()

	if run.opts.OnComplete == nil {
		return Continue()
	}
	return run.opts.OnComplete(completion)
}

// halt registra o primeiro motivo de interrupção; os lotes em andamento
// terminam normalmente, mas nenhum novo lote é emitido
func (run *paginationRun) halt(reason error) {
	if run.halted {
		return
	}
	run.halted = true
	run.haltReason = reason
	run.pending = nil
	run.unseeded = nil
}

// finalize marca como parciais os dias iniciados e não concluídos de uma
// execução interrompida
func (run *paginationRun) finalize() {
	if !run.halted {
		return
	}

	for key, state := range run.states {
		if state.completed {
			continue
		}
		run.result.ResultsByDate[key] = &DateResult{
			Date:     state.date,
			Rows:     state.acc,
			APICalls: state.acc.APICalls(),
			Partial:  true,
		}
	}
}

// pageRequestID codifica (dia, linha inicial) em um identificador opaco
// ecoado pelo provedor
func pageRequestID(date string, startRow int) string {
	return fmt.Sprintf("%s:%d", date, startRow)
}
