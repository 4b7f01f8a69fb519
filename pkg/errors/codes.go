// Package errors provides centralized error code definitions for the nmrhose
// platform. All error codes are grouped by domain and mapped to HTTP status codes.
package errors

import "net/http"

// ErrorCode represents a typed error code used throughout the nmrhose platform.
// Codes are partitioned by domain to avoid conflicts and simplify maintenance.
type ErrorCode int

// ─────────────────────────────────────────────────────────────────────────────
// General / cross-cutting error codes  (1xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeOK indicates no error.
	CodeOK ErrorCode = 0

	// CodeUnknown is a catch-all for errors that have not been categorised.
	CodeUnknown ErrorCode = 10000

	// CodeInvalidParam is returned when one or more request parameters fail
	// validation (missing required fields, type mismatch, out-of-range values, etc.).
	CodeInvalidParam ErrorCode = 10001

	// CodeUnauthorized is returned when a request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = 10002

	// CodeForbidden is returned when authenticated credentials do not grant access
	// to the requested resource or action.
	CodeForbidden ErrorCode = 10003

	// CodeNotFound is returned when the requested resource does not exist.
	CodeNotFound ErrorCode = 10004

	// CodeConflict is returned when an operation violates a uniqueness or state
	// constraint.
	CodeConflict ErrorCode = 10005

	// CodeRateLimit is returned when the caller has exceeded the allowed request rate.
	CodeRateLimit ErrorCode = 10006

	// CodeInternal is returned for unexpected server-side errors that are not
	// attributable to the caller.
	CodeInternal ErrorCode = 10007

	// CodeNotImplemented is returned when a requested feature or endpoint is
	// not yet implemented.
	CodeNotImplemented ErrorCode = 10008
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule / chemistry domain error codes  (3xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeInvalidSMILES is returned when a SMILES string cannot be parsed into
	// a valid molecular graph.
	CodeInvalidSMILES ErrorCode = 30001

	// CodeUnknownElement is returned when an atom's element symbol is not in
	// the supported periodic-table subset.
	CodeUnknownElement ErrorCode = 30002

	// CodeLabelingFailed is returned when the canonical labeler cannot produce
	// a usable invariant partition for a parsed molecule (disconnected or
	// empty graph).
	CodeLabelingFailed ErrorCode = 30003
)

// ─────────────────────────────────────────────────────────────────────────────
// Shift-store domain error codes  (4xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeChunkLoadFailed is returned when a chunk artifact cannot be fetched
	// from its backing store (MinIO or filesystem).
	CodeChunkLoadFailed ErrorCode = 40001

	// CodeChunkDecodeFailed is returned when a fetched chunk artifact cannot
	// be decoded into its key→entry mapping.
	CodeChunkDecodeFailed ErrorCode = 40002

	// CodeChunkIndexOutOfRange is returned when a requested chunk index falls
	// outside [0, 255].
	CodeChunkIndexOutOfRange ErrorCode = 40003
)

// ─────────────────────────────────────────────────────────────────────────────
// Lookup / estimator domain error codes  (5xxxx)
//
// Absent shift entries are a normal, expected outcome of a lookup (see
// forward-lookup fallback sequence) and are never represented as errors;
// these codes cover only malformed requests.
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeEmptyPeakList is returned when the reverse estimator is invoked with
	// zero observed peaks.
	CodeEmptyPeakList ErrorCode = 50001
)

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure error codes  (7xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeCacheError is returned when a Redis operation (GET, SET, DEL, EVAL, etc.)
	// fails due to connection loss, timeout, or an unexpected response.
	CodeCacheError ErrorCode = 70002

	// CodeMessageQueueError is returned when producing a telemetry event to
	// Kafka fails. Telemetry publication never blocks a lookup/estimate
	// response; this code is logged, not propagated to callers.
	CodeMessageQueueError ErrorCode = 70004

	// CodeStorageError is returned when a MinIO object storage operation
	// (upload, download, stat, delete) fails.
	CodeStorageError ErrorCode = 70005

	// CodeSerialization is returned when marshalling or unmarshalling a cache
	// or chunk payload fails.
	CodeSerialization ErrorCode = 70006
)

// ─────────────────────────────────────────────────────────────────────────────
// String — human-readable name of the error code
// ─────────────────────────────────────────────────────────────────────────────

// String returns the human-readable name associated with an ErrorCode.
// It is safe to call on any value, including unknown codes.
func (c ErrorCode) String() string {
	switch c {
	// General
	case CodeOK:
		return "OK"
	case CodeUnknown:
		return "UNKNOWN"
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeUnauthorized:
		return "UNAUTHORIZED"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeConflict:
		return "CONFLICT"
	case CodeRateLimit:
		return "RATE_LIMIT"
	case CodeInternal:
		return "INTERNAL_ERROR"
	case CodeNotImplemented:
		return "NOT_IMPLEMENTED"

	// Molecule / chemistry
	case CodeInvalidSMILES:
		return "INVALID_SMILES"
	case CodeUnknownElement:
		return "UNKNOWN_ELEMENT"
	case CodeLabelingFailed:
		return "LABELING_FAILED"

	// Shift store
	case CodeChunkLoadFailed:
		return "CHUNK_LOAD_FAILED"
	case CodeChunkDecodeFailed:
		return "CHUNK_DECODE_FAILED"
	case CodeChunkIndexOutOfRange:
		return "CHUNK_INDEX_OUT_OF_RANGE"

	// Lookup / estimator
	case CodeEmptyPeakList:
		return "EMPTY_PEAK_LIST"

	// Infrastructure
	case CodeCacheError:
		return "CACHE_ERROR"
	case CodeMessageQueueError:
		return "MESSAGE_QUEUE_ERROR"
	case CodeStorageError:
		return "STORAGE_ERROR"
	case CodeSerialization:
		return "SERIALIZATION_ERROR"

	default:
		return "UNKNOWN_CODE"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTPStatus — mapping from domain error codes to HTTP status codes
// ─────────────────────────────────────────────────────────────────────────────

// HTTPStatus returns the most appropriate HTTP status code for the given ErrorCode.
//
// Decision matrix:
//   - 200 OK              → CodeOK
//   - 400 Bad Request     → CodeInvalidParam, CodeInvalidSMILES, CodeUnknownElement, CodeEmptyPeakList
//   - 401 Unauthorized    → CodeUnauthorized
//   - 403 Forbidden       → CodeForbidden
//   - 404 Not Found       → CodeNotFound, CodeChunkIndexOutOfRange
//   - 409 Conflict        → CodeConflict
//   - 429 Too Many Req.   → CodeRateLimit
//   - 503 Service Unavail → CodeStorageError, CodeMessageQueueError
//   - 500 Internal Server → everything else
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK

	case CodeInvalidParam,
		CodeInvalidSMILES,
		CodeUnknownElement,
		CodeEmptyPeakList:
		return http.StatusBadRequest

	case CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound,
		CodeChunkIndexOutOfRange:
		return http.StatusNotFound

	case CodeConflict:
		return http.StatusConflict

	case CodeRateLimit:
		return http.StatusTooManyRequests

	case CodeStorageError,
		CodeMessageQueueError:
		return http.StatusServiceUnavailable

	case CodeNotImplemented:
		return http.StatusNotImplemented

	default:
		// CodeUnknown, CodeInternal, CodeLabelingFailed, CodeChunkLoadFailed,
		// CodeChunkDecodeFailed, CodeCacheError, CodeSerialization, and all
		// unrecognised codes.
		return http.StatusInternalServerError
	}
}
