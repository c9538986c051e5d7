package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/params"
	"github.com/kailas-cloud/snowball/internal/domain/seed"
	"github.com/kailas-cloud/snowball/internal/linguistic/linguistictest"
	extractionuc "github.com/kailas-cloud/snowball/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/snowball/internal/usecase/health"
	"github.com/kailas-cloud/snowball/internal/vsm"
)

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

var corpus = []string{
	"<ORG>Google</ORG> was founded in <LOC>Menlo Park</LOC> .",
	"<ORG>Nokia</ORG> is headquartered in <LOC>Espoo</LOC> .",
	"<ORG>Kone</ORG> is headquartered in <LOC>Espoo</LOC> .",
	"<ORG>Apple</ORG> was founded in <LOC>Cupertino</LOC> .",
}

func newTestConfig(t *testing.T) *configuration.Configuration {
	t.Helper()
	lm := linguistictest.New()
	model, err := vsm.Build(corpus, lm, lm.Stopwords())
	if err != nil {
		t.Fatalf("vsm.Build: %v", err)
	}
	pos := seed.File{E1Type: "ORG", E2Type: "LOC", Seeds: seed.Set{}}
	pos.Seeds.Add(seed.Seed{E1: "Nokia", E2: "Espoo"})
	cfg, err := configuration.New(configuration.Options{
		Parameters: params.Parameters{
			NumberIterations: 2, MaxTokensAway: 5, ContextWindowSize: 2,
			UseReverb: params.ReverbYes, Alpha: 0.25, Beta: 0.5, Gamma: 0.25,
		},
		Seeds:               pos,
		VSM:                 model,
		Linguistic:          lm,
		ThresholdSimilarity: 0.6,
		InstanceConfidence:  0.7,
	})
	if err != nil {
		t.Fatalf("configuration.New: %v", err)
	}
	return cfg
}

func newTestRouter(t *testing.T, cfg *configuration.Configuration, cache healthuc.CachePinger) http.Handler {
	t.Helper()
	srv := NewServer(cfg, extractionuc.New(2), healthuc.New(cache), nil).WithMaxBodyBytes(4096)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestCreateTuples(t *testing.T) {
	h := newTestRouter(t, newTestConfig(t), nil)

	rr := do(t, h, http.MethodPost, "/v1/tuples", `{"occurrences":[
		{"ent1":"Google","ent2":"Menlo Park","between":"was founded in","after":"."},
		{"ent1":"Google","ent2":"Menlo Park","between":"was founded in","after":".","sentence":"dup"}
	]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	var resp struct {
		Items []struct {
			Ent1         string          `json:"ent1"`
			BetVector    json.RawMessage `json:"bet_vector"`
			PassiveVoice *bool           `json:"passive_voice"`
		} `json:"items"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || len(resp.Items) != 1 {
		t.Fatalf("expected one deduplicated tuple, got %d", resp.Count)
	}
	if resp.Items[0].PassiveVoice == nil || !*resp.Items[0].PassiveVoice {
		t.Error("expected passive voice")
	}
	if string(resp.Items[0].BetVector) == "null" {
		t.Error("expected a between vector")
	}
}

func TestCreateTuples_Validation(t *testing.T) {
	h := newTestRouter(t, newTestConfig(t), nil)

	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed json", `{"occurrences":`, ErrorCodeBadRequest},
		{"unknown field", `{"pairs":[]}`, ErrorCodeBadRequest},
		{"empty", `{"occurrences":[]}`, ErrorCodeValidationFailed},
		{"missing entity", `{"occurrences":[{"ent1":"Google","between":"x"}]}`, ErrorCodeValidationFailed},
		{"too large", `{"occurrences":[{"ent1":"` + strings.Repeat("a", 5000) + `"}]}`, ErrorCodeBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/tuples", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := decodeError(t, rr).Code; got != tc.code {
				t.Errorf("code = %q, want %q", got, tc.code)
			}
		})
	}
}

func TestCreateTuples_ConfigurationError(t *testing.T) {
	h := newTestRouter(t, &configuration.Configuration{}, nil)

	rr := do(t, h, http.MethodPost, "/v1/tuples", `{"occurrences":[{"ent1":"a","ent2":"b"}]}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Code != ErrorCodeConfiguration || !strings.Contains(resp.Message, params.KeyUseReverb) {
		t.Errorf("unexpected error response %+v", resp)
	}
}

func TestExtractSentences(t *testing.T) {
	h := newTestRouter(t, newTestConfig(t), nil)

	rr := do(t, h, http.MethodPost, "/v1/sentences",
		`{"sentences":["<ORG>Nokia</ORG> is headquartered in <LOC>Espoo</LOC> .","no markup"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp TupleListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].Ent2 != "Espoo" || resp.Items[0].BetWords != "is headquartered in" {
		t.Errorf("unexpected response %+v", resp)
	}

	rr = do(t, h, http.MethodPost, "/v1/sentences", `{"sentences":["nothing here"]}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Errorf("expected empty list, got %d %s", rr.Code, rr.Body)
	}

	rr = do(t, h, http.MethodPost, "/v1/sentences", `{"sentences":[]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetConfiguration(t *testing.T) {
	h := newTestRouter(t, newTestConfig(t), nil)

	rr := do(t, h, http.MethodGet, "/v1/configuration", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp ConfigurationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.E1Type != "ORG" || resp.Seeds != 1 || resp.Vocabulary == 0 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Parameters.UseReverb != params.ReverbYes || resp.Parameters.Beta != 0.5 {
		t.Errorf("unexpected parameters %+v", resp.Parameters)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		cache  healthuc.CachePinger
		status int
	}{
		{"no cache", nil, http.StatusOK},
		{"cache ok", &mockCachePinger{}, http.StatusOK},
		{"cache down", &mockCachePinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, newTestConfig(t), tc.cache)
			rr := do(t, h, http.MethodGet, "/health", "")
			if rr.Code != tc.status {
				t.Errorf("status = %d, want %d", rr.Code, tc.status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, newTestConfig(t), nil)
	rr := do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected default registry output")
	}
}
