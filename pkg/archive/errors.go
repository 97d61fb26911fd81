package archive

import "errors"

// Code is the stable, cross-version domain result code returned by the
// query engine and table operations (§6). Unlike the Go-level sentinel
// errors below, Code values are persisted in log messages and compared
// across releases, so their numeric order must never be reassigned.
type Code int

const (
	CodeSuccess Code = iota
	CodeUnassociated
	CodeUnvalidated
	CodeBlockConfirmable
	CodeBlockUnconfirmable
	CodeBlockPreconfirmable
	CodeTxConnected
	CodeTxPreconnected
	CodeTxDisconnected
	CodeConfirmedDoubleSpend
	CodeUnspentCoinbaseCollision
	CodeUnconfirmedSpend
	CodeRelativeTimeLocked
	CodeCoinbaseMaturity
	CodeMerkleProof
	CodeMerkleHashes
	CodeMerkleInterval
	CodeInvalidArgument
	CodeNotFound
	CodeIntegrity1
	CodeIntegrity2
	CodeIntegrity3
	CodeIntegrity4
	CodeIntegrity5
	CodeIntegrity6
	CodeIntegrity7
	CodeIntegrity8
	CodeIntegrity9
	CodeUnloadedFile
	CodeMissingBackup
	CodeDiskFull
)

var codeNames = map[Code]string{
	CodeSuccess:                  "success",
	CodeUnassociated:             "unassociated",
	CodeUnvalidated:              "unvalidated",
	CodeBlockConfirmable:         "block_confirmable",
	CodeBlockUnconfirmable:       "block_unconfirmable",
	CodeBlockPreconfirmable:      "block_preconfirmable",
	CodeTxConnected:              "tx_connected",
	CodeTxPreconnected:           "tx_preconnected",
	CodeTxDisconnected:           "tx_disconnected",
	CodeConfirmedDoubleSpend:     "confirmed_double_spend",
	CodeUnspentCoinbaseCollision: "unspent_coinbase_collision",
	CodeUnconfirmedSpend:         "unconfirmed_spend",
	CodeRelativeTimeLocked:       "relative_time_locked",
	CodeCoinbaseMaturity:         "coinbase_maturity",
	CodeMerkleProof:              "merkle_proof",
	CodeMerkleHashes:             "merkle_hashes",
	CodeMerkleInterval:           "merkle_interval",
	CodeInvalidArgument:          "invalid_argument",
	CodeNotFound:                 "not_found",
	CodeIntegrity1:               "integrity1",
	CodeIntegrity2:               "integrity2",
	CodeIntegrity3:               "integrity3",
	CodeIntegrity4:               "integrity4",
	CodeIntegrity5:               "integrity5",
	CodeIntegrity6:               "integrity6",
	CodeIntegrity7:               "integrity7",
	CodeIntegrity8:               "integrity8",
	CodeIntegrity9:               "integrity9",
	CodeUnloadedFile:             "unloaded_file",
	CodeMissingBackup:            "missing_backup",
	CodeDiskFull:                 "disk_full",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown_code"
}

// Success reports whether c denotes a non-error outcome. Several codes
// are "successful" query results rather than failures (e.g.
// block_confirmable itself is the positive answer of that query).
func (c Code) Success() bool {
	switch c {
	case CodeSuccess, CodeBlockConfirmable, CodeTxConnected:
		return true
	default:
		return false
	}
}

// ResultError pairs a stable Code with the Go error that surfaced it, so
// callers can branch on Code while %w-chains still reach the underlying
// cause.
type ResultError struct {
	Code Code
	Err  error
}

func (e *ResultError) Error() string {
	if e.Err != nil {
		return e.Code.String() + ": " + e.Err.Error()
	}
	return e.Code.String()
}

func (e *ResultError) Unwrap() error { return e.Err }

// NewResultError wraps err (which may be nil) with a stable Code.
func NewResultError(code Code, err error) *ResultError {
	return &ResultError{Code: code, Err: err}
}

// Go-level sentinel errors for operational faults that are not
// themselves part of the stable Code table: these are failures of the
// storage engine itself, not query outcomes (§6).
var (
	ErrNotFound        = errors.New("archive: not found")
	ErrInvalidArgument = errors.New("archive: invalid argument")
	ErrUnloadedFile    = errors.New("archive: file unloaded")
	ErrMissingBackup   = errors.New("archive: missing backup")
	ErrDiskFull        = errors.New("archive: disk full")
	ErrClosed          = errors.New("archive: store closed")
	ErrLocked          = errors.New("archive: store locked by another process")
	ErrCorrupt         = errors.New("archive: file corrupt")
)
