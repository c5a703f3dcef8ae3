package phrsdk

import (
	"github.com/allisson/phrsdk/internal/api"
	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir3"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

type (
	// Record is a decrypted record as returned by the client.
	Record = recordDomain.Record
	// RecordMeta holds the creation and update dates of a record.
	RecordMeta = recordDomain.Meta
	// RecordStatus is the lifecycle state of a record.
	RecordStatus = recordDomain.Status
	// Resource is the payload of a record.
	Resource = recordDomain.Resource
	// ResourceKind selects the variant held by a Resource.
	ResourceKind = recordDomain.Kind
	// SearchCriteria filters Search and Count.
	SearchCriteria = recordDomain.SearchCriteria
	// SearchResult is one page of records.
	SearchResult = recordDomain.SearchResult
	// BatchFailure is the failure of one id of a batch call.
	BatchFailure = recordDomain.BatchFailure
	// FhirResource is a FHIR STU3 or R4 resource.
	FhirResource = fhir.Resource
	// Attachment is a FHIR attachment with its payload.
	Attachment = fhir.Attachment
	// DownloadType selects the stored variant of an attachment.
	DownloadType = attachmentDomain.DownloadType
	// Account is a registered user and the credentials it logs in with.
	Account = api.Account
	// TokenProvider hands out bearer tokens for backend calls.
	TokenProvider = api.TokenProvider
	// Error is the error type returned by every Client method.
	Error = apperrors.SDKError
	// ErrorKind groups errors by what a caller can do about them.
	ErrorKind = apperrors.Kind
)

// BatchResult holds the successes and per-id failures of a batch call.
type BatchResult[T any] = recordDomain.BatchResult[T]

const (
	KindFhir3 = recordDomain.KindFhir3
	KindFhir4 = recordDomain.KindFhir4
	KindData  = recordDomain.KindData
)

const (
	StatusActive  = recordDomain.StatusActive
	StatusPending = recordDomain.StatusPending
	StatusDeleted = recordDomain.StatusDeleted
)

const (
	DownloadFull   = attachmentDomain.Full
	DownloadMedium = attachmentDomain.Medium
	DownloadSmall  = attachmentDomain.Small
)

const (
	ErrorValidation   = apperrors.KindValidation
	ErrorNotFound     = apperrors.KindNotFound
	ErrorUnauthorized = apperrors.KindUnauthorized
	ErrorTransport    = apperrors.KindTransport
	ErrorCrypto       = apperrors.KindCrypto
	ErrorInternal     = apperrors.KindInternal
)

var (
	// NewFhir3Resource wraps a FHIR STU3 resource.
	NewFhir3Resource = recordDomain.NewFhir3Resource
	// NewFhir4Resource wraps a FHIR R4 resource.
	NewFhir4Resource = recordDomain.NewFhir4Resource
	// NewDataResource wraps an arbitrary payload.
	NewDataResource = recordDomain.NewDataResource
	// DecodeFhir3 parses a FHIR STU3 JSON document.
	DecodeFhir3 = fhir3.Decode
	// DecodeFhir4 parses a FHIR R4 JSON document.
	DecodeFhir4 = fhir4.Decode
	// ParseDownloadType parses "full", "medium" or "small".
	ParseDownloadType = attachmentDomain.ParseDownloadType
)

// ErrorKindOf returns the kind of err, KindInternal for errors not produced by a Client.
func ErrorKindOf(err error) ErrorKind {
	return apperrors.KindOf(err)
}
