package syncing

import (
	"sync"

	"github.com/0xFlo/prism-sub007/internal/domain"
)

// QueryAccumulator acumula as linhas buscadas para um único dia durante a
// paginação. Os pedaços ingeridos são mantidos como chegaram, sem cópias
// adicionais, de forma que o pico de memória fica limitado mesmo para dias
// com dezenas de milhares de linhas.
type QueryAccumulator struct {
	mu        sync.Mutex
	chunks    [][]domain.QueryRow
	rowCount  int
	apiCalls  int
	minimized bool
}

// NewAccumulator cria um acumulador vazio para um dia
func NewAccumulator() *QueryAccumulator {
	return &QueryAccumulator{}
}

// IngestChunk anexa um pedaço de linhas ao acumulador. O slice recebido
// passa a pertencer ao acumulador e não deve ser modificado pelo chamador.
func (a *QueryAccumulator) IngestChunk(rows []domain.QueryRow) {
	if len(rows) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.chunks = append(a.chunks, rows)
	a.rowCount += len(rows)
}

// AddAPICalls incrementa o contador de chamadas à API atribuídas a este dia
func (a *QueryAccumulator) AddAPICalls(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.apiCalls += n
}

// RowCount retorna o total de linhas acumuladas
func (a *QueryAccumulator) RowCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.rowCount
}

// APICalls retorna o total de chamadas à API atribuídas a este dia
func (a *QueryAccumulator) APICalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.apiCalls
}

// ForEachRow itera sobre as linhas acumuladas na ordem de ingestão, sem
// materializar uma cópia completa. Retornar false interrompe a iteração.
func (a *QueryAccumulator) ForEachRow(fn func(row domain.QueryRow) bool) {
	a.mu.Lock()
	chunks := a.chunks
	a.mu.Unlock()

	for _, chunk := range chunks {
		for _, row := range chunk {
			if !fn(row) {
				return
			}
		}
	}
}

// Drain entrega as linhas acumuladas em pedaços de no máximo chunkSize ao
// destino informado, na ordem de ingestão. Um erro do destino interrompe
// a drenagem.
func (a *QueryAccumulator) Drain(chunkSize int, sink func(chunk []domain.QueryRow) error) error {
	if chunkSize < 1 {
		chunkSize = 1
	}

	var sinkErr error
	buffer := make([]domain.QueryRow, 0, chunkSize)

	a.ForEachRow(func(row domain.QueryRow) bool {
		buffer = append(buffer, row)
		if len(buffer) == chunkSize {
			if err := sink(buffer); err != nil {
				sinkErr = err
				return false
			}
			buffer = make([]domain.QueryRow, 0, chunkSize)
		}
		return true
	})
	if sinkErr != nil {
		return sinkErr
	}

	if len(buffer) > 0 {
		return sink(buffer)
	}

	return nil
}

// Minimize descarta as linhas acumuladas preservando os contadores. Usado
// para dias já drenados que precisam permanecer no resultado parcial de
// uma interrupção sem segurar os dados novamente.
func (a *QueryAccumulator) Minimize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chunks = nil
	a.minimized = true
}

// Minimized indica se as linhas deste acumulador já foram descartadas
func (a *QueryAccumulator) Minimized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.minimized
}
