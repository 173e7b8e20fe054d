package app

// ErrorKind classifies a failed boundary operation. The engine never lets an
// external-service or I/O fault escape as a crash; callers branch on the kind
// and always have a displayable message.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindIngestFailure      ErrorKind = "ingest_failure"
	KindStoreUninitialized ErrorKind = "store_uninitialized"
	KindStoreFailure       ErrorKind = "store_failure"
	KindModelFailure       ErrorKind = "model_failure"
	KindClearFailure       ErrorKind = "clear_failure"
)

// Result is the outcome of a Knowledge Engine boundary operation.
type Result struct {
	OK         bool      `json:"ok"`
	Message    string    `json:"message"`
	Kind       ErrorKind `json:"kind,omitempty"`
	ChunkCount int       `json:"chunk_count,omitempty"`
}

func okResult(message string) Result {
	return Result{OK: true, Message: message}
}

func errResult(kind ErrorKind, message string) Result {
	return Result{OK: false, Message: message, Kind: kind}
}
