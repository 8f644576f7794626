package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finwiz/internal/api/handlers"
	"finwiz/internal/dto"
	"finwiz/internal/repository"
	"finwiz/internal/service"
	"finwiz/pkg/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type stubLLM struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubLLM) Close() error { return nil }

func newTestApp(t *testing.T, llm service.LLMClient) (*fiber.App, *repository.MemoryStore) {
	t.Helper()

	logger := zap.NewNop()
	store := repository.NewMemoryStore()

	categorizer := service.NewCategorizationService(llm, time.Minute, logger)
	advisor := service.NewAdviceService(llm, time.Minute, "$", logger)

	h := Handlers{
		Transactions: handlers.NewTransactionHandler(logger),
		AI:           handlers.NewAIHandler(categorizer, advisor, logger),
		Health:       handlers.NewHealthHandler(store, "test", logger),
	}
	cfg := &config.ServerConfig{
		ReadTimeout:      time.Second,
		WriteTimeout:     time.Second,
		CORSAllowOrigins: "*",
	}

	return SetupRouter(h, store, cfg, logger), store
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestTransactions_CreateThenList(t *testing.T) {
	app, store := newTestApp(t, &stubLLM{})

	resp, body := doJSON(t, app, "GET", "/transactions", "")
	if resp.StatusCode != 200 || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("empty list: status=%d body=%s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "POST", "/transactions",
		`{"date": "2024-01-05", "description": "AMAZON.COM", "amount": -42.50}`)
	if resp.StatusCode != 200 {
		t.Fatalf("create: status=%d body=%s", resp.StatusCode, body)
	}
	created := decode[map[string]any](t, body)
	if created["id"] != float64(1) || created["date"] != "2024-01-05" ||
		created["description"] != "AMAZON.COM" || created["amount"] != -42.5 {
		t.Fatalf("create body = %s", body)
	}
	if v, ok := created["category"]; !ok || v != nil {
		t.Fatalf("category should be present and null, body = %s", body)
	}

	resp, body = doJSON(t, app, "GET", "/transactions", "")
	if resp.StatusCode != 200 {
		t.Fatalf("list: status=%d", resp.StatusCode)
	}
	list := decode[[]dto.TransactionResponse](t, body)
	if len(list) != 1 || list[0].ID != 1 || list[0].Description != "AMAZON.COM" || list[0].Amount != -42.5 {
		t.Fatalf("list = %s", body)
	}

	if got := store.OpenSessions(); got != 0 {
		t.Fatalf("OpenSessions = %d, want 0", got)
	}
}

func TestTransactions_ListIsRepeatable(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	for _, body := range []string{
		`{"date": "2024-01-05", "description": "AMAZON.COM", "amount": -42.50}`,
		`{"date": "2024-01-06", "description": "UBER EATS", "amount": -23.10, "category": "Restaurants"}`,
		`{"date": "2024-01-07", "description": "PAYROLL", "amount": 3200}`,
	} {
		if resp, data := doJSON(t, app, "POST", "/transactions", body); resp.StatusCode != 200 {
			t.Fatalf("create: status=%d body=%s", resp.StatusCode, data)
		}
	}

	resp, first := doJSON(t, app, "GET", "/transactions", "")
	if resp.StatusCode != 200 {
		t.Fatalf("first list: status=%d", resp.StatusCode)
	}
	resp, second := doJSON(t, app, "GET", "/transactions", "")
	if resp.StatusCode != 200 {
		t.Fatalf("second list: status=%d", resp.StatusCode)
	}

	if string(first) != string(second) {
		t.Fatalf("consecutive lists differ:\n%s\n%s", first, second)
	}
	if got := decode[[]dto.TransactionResponse](t, first); len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestTransactions_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLoc []string
	}{
		{
			name:    "missing amount",
			body:    `{"date": "2024-01-05", "description": "AMAZON.COM"}`,
			wantLoc: []string{"body", "amount"},
		},
		{
			name:    "missing description",
			body:    `{"date": "2024-01-05", "amount": 1}`,
			wantLoc: []string{"body", "description"},
		},
		{
			name:    "bad date",
			body:    `{"date": "05/01/2024", "description": "X", "amount": 1}`,
			wantLoc: []string{"body", "date"},
		},
		{
			name:    "amount is a string",
			body:    `{"date": "2024-01-05", "description": "X", "amount": "lots"}`,
			wantLoc: []string{"body", "amount"},
		},
		{
			name:    "malformed json",
			body:    `{"date": `,
			wantLoc: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, store := newTestApp(t, &stubLLM{})

			resp, body := doJSON(t, app, "POST", "/transactions", tt.body)
			if resp.StatusCode != fiber.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (body %s)", resp.StatusCode, body)
			}
			got := decode[dto.ValidationErrorResponse](t, body)
			if len(got.Detail) == 0 {
				t.Fatalf("empty detail: %s", body)
			}
			if strings.Join(got.Detail[0].Loc, ".") != strings.Join(tt.wantLoc, ".") {
				t.Errorf("loc = %v, want %v", got.Detail[0].Loc, tt.wantLoc)
			}
			if got.Detail[0].Msg == "" || got.Detail[0].Type == "" {
				t.Errorf("detail should carry msg and type: %s", body)
			}

			_, body = doJSON(t, app, "GET", "/transactions", "")
			if strings.TrimSpace(string(body)) != "[]" {
				t.Errorf("rejected request must not store anything, list = %s", body)
			}
			if store.OpenSessions() != 0 {
				t.Errorf("OpenSessions = %d, want 0", store.OpenSessions())
			}
		})
	}
}

func TestTransactions_ExplicitCategoryAndZeroAmount(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	resp, body := doJSON(t, app, "POST", "/transactions",
		`{"date": "2024-02-01", "description": "REFUND", "amount": 0, "category": "Shopping"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}
	got := decode[dto.TransactionResponse](t, body)
	if got.Amount != 0 || got.Category == nil || *got.Category != "Shopping" {
		t.Fatalf("body = %s", body)
	}
}

func TestCategorize(t *testing.T) {
	llm := &stubLLM{reply: "```json\n{\"category\": \"Restaurants\", \"confidence\": 0.9}\n```"}
	app, _ := newTestApp(t, llm)

	resp, body := doJSON(t, app, "POST", "/categorize", `{"description": "UBER EATS"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}
	got := decode[dto.CategorizationResult](t, body)
	if got.Description != "UBER EATS" || got.Category != "Restaurants" || got.Confidence != 0.9 {
		t.Fatalf("result = %+v", got)
	}
}

func TestCategorize_Failures(t *testing.T) {
	tests := []struct {
		name string
		llm  *stubLLM
	}{
		{"unparseable reply", &stubLLM{reply: "It is probably food."}},
		{"upstream error", &stubLLM{err: &service.UpstreamCallError{Provider: "gemini", Err: errors.New("timeout")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, tt.llm)

			resp, body := doJSON(t, app, "POST", "/categorize", `{"description": "UBER EATS"}`)
			if resp.StatusCode != fiber.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", resp.StatusCode)
			}
			got := decode[dto.ErrorResponse](t, body)
			if got.Detail == "" {
				t.Fatalf("500 body should carry detail: %s", body)
			}
		})
	}
}

func TestCategorize_MissingDescription(t *testing.T) {
	llm := &stubLLM{}
	app, _ := newTestApp(t, llm)

	resp, body := doJSON(t, app, "POST", "/categorize", `{}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", resp.StatusCode, body)
	}
	if len(llm.prompts) != 0 {
		t.Fatal("model must not be called for an invalid request")
	}
}

func TestCategorizeBatch(t *testing.T) {
	llm := &stubLLM{reply: `[{"description": "AMAZON.COM", "category": "Shopping"}, {"description": "UBER EATS", "category": "Restaurants"}]`}
	app, _ := newTestApp(t, llm)

	resp, body := doJSON(t, app, "POST", "/categorize/batch", `{"descriptions": ["AMAZON.COM", "UBER EATS"]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}
	got := decode[[]dto.BatchCategorizationItem](t, body)
	if len(got) != 2 || got[1].Category != "Restaurants" {
		t.Fatalf("items = %s", body)
	}

	resp, body = doJSON(t, app, "POST", "/categorize/batch", `{"descriptions": []}`)
	if resp.StatusCode != 200 || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("empty batch: status=%d body=%s", resp.StatusCode, body)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("model calls = %d, want 1", len(llm.prompts))
	}
}

func TestAdvice(t *testing.T) {
	llm := &stubLLM{reply: "Spend less on **Shopping**."}
	app, store := newTestApp(t, llm)

	doJSON(t, app, "POST", "/transactions",
		`{"date": "2024-01-05", "description": "AMAZON.COM", "amount": -42.50, "category": "Shopping"}`)

	resp, body := doJSON(t, app, "POST", "/advice", `{"prompt": "Where can I save?"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}
	got := decode[dto.AdviceResult](t, body)
	if got.Advice != "Spend less on **Shopping**." {
		t.Fatalf("advice = %q", got.Advice)
	}
	if !strings.Contains(llm.prompts[0], "- 2024-01-05: AMAZON.COM ($-42.50) -> Shopping") {
		t.Errorf("advice prompt missing stored transaction:\n%s", llm.prompts[0])
	}
	if store.OpenSessions() != 0 {
		t.Errorf("OpenSessions = %d, want 0", store.OpenSessions())
	}
}

func TestAdvice_FallbackOnUpstreamFailure(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{err: errors.New("quota exceeded")})

	resp, body := doJSON(t, app, "POST", "/advice", `{"prompt": "Any tips?"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[dto.AdviceResult](t, body)
	if got.Advice != "I'm sorry, I encountered an issue while generating advice. Please try again." {
		t.Fatalf("advice = %q", got.Advice)
	}
}

func TestAdvice_MissingPrompt(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	resp, body := doJSON(t, app, "POST", "/advice", `{"question": "hi"}`)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	got := decode[dto.ValidationErrorResponse](t, body)
	if strings.Join(got.Detail[0].Loc, ".") != "body.prompt" {
		t.Fatalf("loc = %v", got.Detail[0].Loc)
	}
}

func TestCORS(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	req := httptest.NewRequest("OPTIONS", "/transactions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight Allow-Origin = %q, want *", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("preflight Allow-Methods = %q", got)
	}

	req = httptest.NewRequest("GET", "/transactions", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	resp, body := doJSON(t, app, "GET", "/health", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[dto.HealthResponse](t, body)
	if got.Status != "healthy" || got.Storage != "up" || got.Version != "test" {
		t.Fatalf("health = %+v", got)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Error("response should carry a request id")
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, &stubLLM{})

	resp, body := doJSON(t, app, "GET", "/nope", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if got := decode[dto.ErrorResponse](t, body); got.Detail == "" {
		t.Fatalf("body = %s", body)
	}
}
