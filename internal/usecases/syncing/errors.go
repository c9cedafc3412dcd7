package syncing

import "fmt"

// Tipos de divergência entre as requisições emitidas em lote e as
// respostas recebidas
const (
	MismatchMissingParts    = "missing_parts"
	MismatchUnexpectedParts = "unexpected_parts"
	MismatchDuplicateParts  = "duplicate_parts"
)

// BatchMismatchError indica violação de contrato na resposta em lote:
// identificadores ausentes, inesperados ou duplicados em relação às
// requisições emitidas. Nunca é tolerado silenciosamente.
type BatchMismatchError struct {
	Kind string
	IDs  []string
}

func (e *BatchMismatchError) Error() string {
	return fmt.Sprintf("resposta em lote inconsistente (%s): %v", e.Kind, e.IDs)
}

// QueryFetchError indica falha definitiva de transporte ou da API externa
// durante a busca de uma página. Interrompe a paginação imediatamente.
type QueryFetchError struct {
	Err error
}

func (e *QueryFetchError) Error() string {
	return fmt.Sprintf("falha ao buscar consultas: %v", e.Err)
}

func (e *QueryFetchError) Unwrap() error { return e.Err }

// CallbackError indica que o callback de conclusão fornecido pelo chamador
// entrou em pânico. O texto original do pânico é preservado.
type CallbackError struct {
	Message string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("erro no callback de conclusão: %s", e.Message)
}

// HaltError sinaliza que a paginação foi interrompida antes de processar
// todos os dias. Os resultados parciais permanecem disponíveis no
// PaginationResult retornado junto com este erro.
type HaltError struct {
	Reason error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("paginação interrompida: %v", e.Reason)
}

func (e *HaltError) Unwrap() error { return e.Reason }
