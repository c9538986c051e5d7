package chi

import (
	"github.com/kailas-cloud/snowball/internal/domain/params"
	"github.com/kailas-cloud/snowball/internal/domain/tuple"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeConfiguration    ErrorCode = "configuration_error"
	ErrorCodeModel            ErrorCode = "vector_space_model_error"
	ErrorCodeUnavailable      ErrorCode = "unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// OccurrenceRequest is one entity pair with its contexts.
type OccurrenceRequest struct {
	Ent1     string `json:"ent1"`
	Ent2     string `json:"ent2"`
	Sentence string `json:"sentence"`
	Before   string `json:"before"`
	Between  string `json:"between"`
	After    string `json:"after"`
}

// TuplesRequest is the body of POST /v1/tuples.
type TuplesRequest struct {
	Occurrences []OccurrenceRequest `json:"occurrences"`
}

// SentencesRequest is the body of POST /v1/sentences.
type SentencesRequest struct {
	Sentences []string `json:"sentences"`
}

// TupleListResponse lists built tuples.
type TupleListResponse struct {
	Items []*tuple.Tuple `json:"items"`
	Count int            `json:"count"`
}

// ConfigurationResponse describes the loaded run.
type ConfigurationResponse struct {
	Parameters          params.Parameters `json:"parameters"`
	E1Type              string            `json:"e1_type"`
	E2Type              string            `json:"e2_type"`
	Seeds               int               `json:"seeds"`
	NegativeSeeds       int               `json:"negative_seeds"`
	Vocabulary          int               `json:"vocabulary"`
	ThresholdSimilarity float64           `json:"threshold_similarity"`
	InstanceConfidence  float64           `json:"instance_confidence"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (o OccurrenceRequest) toDomain() tuple.Occurrence {
	return tuple.Occurrence{
		Ent1:     o.Ent1,
		Ent2:     o.Ent2,
		Sentence: o.Sentence,
		Before:   o.Before,
		Between:  o.Between,
		After:    o.After,
	}
}

func tupleList(items []*tuple.Tuple) TupleListResponse {
	if items == nil {
		items = []*tuple.Tuple{}
	}
	return TupleListResponse{Items: items, Count: len(items)}
}
