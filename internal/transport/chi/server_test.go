package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
	healthuc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/health"
)

type mockRetriever struct {
	retrieveFn func(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, query, k)
	}
	return nil, nil
}

type mockSynthesizer struct {
	synthesizeFn func(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.SynthesizedAnswer, error)
}

func (m *mockSynthesizer) Synthesize(
	ctx context.Context, query string, chunks []domain.RetrievedChunk,
) (domain.SynthesizedAnswer, error) {
	if m.synthesizeFn != nil {
		return m.synthesizeFn(ctx, query, chunks)
	}
	return domain.SynthesizedAnswer{Text: domain.NoEvidenceAnswer}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	if m.report.Status == "" {
		return healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}
	}
	return m.report
}

func newTestRouter(ret Retriever, syn Synthesizer, h HealthChecker) http.Handler {
	s := NewServer(ret, syn, h, zap.NewNop())
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func postAsk(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAsk_Success(t *testing.T) {
	ret := &mockRetriever{retrieveFn: func(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
		if query != "why is the internet slow?" || k != 3 {
			t.Errorf("unexpected retrieve args: %q, %d", query, k)
		}
		return []domain.RetrievedChunk{
			{TicketID: "100", Text: "slow internet", Status: "Open", Score: 0.93},
			{TicketID: "103", Text: "drops nightly", Status: "Closed", Score: 0.85},
		}, nil
	}}
	syn := &mockSynthesizer{synthesizeFn: func(_ context.Context, _ string, chunks []domain.RetrievedChunk) (domain.SynthesizedAnswer, error) {
		if len(chunks) != 2 {
			t.Errorf("expected 2 chunks passed to synthesizer, got %d", len(chunks))
		}
		return domain.SynthesizedAnswer{
			Text:           "Speeds drop in the evening (Ticket #100).",
			CitedTicketIDs: []string{"100"},
		}, nil
	}}

	handler := newTestRouter(ret, syn, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "why is the internet slow?", "k": 3}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var resp askResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "Speeds drop in the evening (Ticket #100)." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.CitedTicketIDs) != 1 || resp.CitedTicketIDs[0] != "100" {
		t.Errorf("unexpected citations: %v", resp.CitedTicketIDs)
	}
	if len(resp.Sources) != 2 || resp.Sources[0].TicketID != "100" || resp.Sources[0].Score != 0.93 {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestAsk_NoEvidenceAnswerHasEmptyCitations(t *testing.T) {
	handler := newTestRouter(&mockRetriever{}, &mockSynthesizer{}, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "anything"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	// cited_ticket_ids must serialize as [], not null
	if !strings.Contains(rr.Body.String(), `"cited_ticket_ids":[]`) {
		t.Errorf("expected empty citations array, body: %s", rr.Body.String())
	}

	var resp askResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != domain.NoEvidenceAnswer {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
}

func TestAsk_InvalidBody_400(t *testing.T) {
	handler := newTestRouter(&mockRetriever{}, &mockSynthesizer{}, &mockHealth{})
	rr := postAsk(t, handler, `{not json`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestAsk_EmptyQuery_400(t *testing.T) {
	ret := &mockRetriever{retrieveFn: func(context.Context, string, int) ([]domain.RetrievedChunk, error) {
		return nil, domain.ErrEmptyQuery
	}}
	handler := newTestRouter(ret, &mockSynthesizer{}, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "  "}`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeEmptyQuery {
		t.Errorf("error code = %s, want %s", errResp.Code, codeEmptyQuery)
	}
}

func TestAsk_IndexNotReady_503(t *testing.T) {
	ret := &mockRetriever{retrieveFn: func(context.Context, string, int) ([]domain.RetrievedChunk, error) {
		return nil, fmt.Errorf("read meta: %w", domain.ErrIndexNotReady)
	}}
	handler := newTestRouter(ret, &mockSynthesizer{}, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "q"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestAsk_ProviderErrors_502(t *testing.T) {
	cases := []error{
		fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError),
		fmt.Errorf("embed: %w", domain.ErrProviderTransient),
	}
	for _, provErr := range cases {
		ret := &mockRetriever{retrieveFn: func(context.Context, string, int) ([]domain.RetrievedChunk, error) {
			return nil, provErr
		}}
		handler := newTestRouter(ret, &mockSynthesizer{}, &mockHealth{})
		rr := postAsk(t, handler, `{"query": "q"}`)

		if rr.Code != http.StatusBadGateway {
			t.Errorf("%v: status = %d, want 502", provErr, rr.Code)
		}
	}
}

func TestAsk_GenerationError_502(t *testing.T) {
	syn := &mockSynthesizer{synthesizeFn: func(context.Context, string, []domain.RetrievedChunk) (domain.SynthesizedAnswer, error) {
		return domain.SynthesizedAnswer{}, fmt.Errorf("generate: %w", domain.ErrGenerationProviderError)
	}}
	ret := &mockRetriever{retrieveFn: func(context.Context, string, int) ([]domain.RetrievedChunk, error) {
		return []domain.RetrievedChunk{{TicketID: "100", Text: "t"}}, nil
	}}
	handler := newTestRouter(ret, syn, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "q"}`)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}

func TestAsk_UnknownError_500(t *testing.T) {
	ret := &mockRetriever{retrieveFn: func(context.Context, string, int) ([]domain.RetrievedChunk, error) {
		return nil, errors.New("boom")
	}}
	handler := newTestRouter(ret, &mockSynthesizer{}, &mockHealth{})
	rr := postAsk(t, handler, `{"query": "q"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Error("internal error details must not leak to clients")
	}
}

func TestHealthz_Healthy_200(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}}
	handler := newTestRouter(&mockRetriever{}, &mockSynthesizer{}, h)

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestHealthz_Degraded_503(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}}
	handler := newTestRouter(&mockRetriever{}, &mockSynthesizer{}, h)

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
