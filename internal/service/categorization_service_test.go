package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"finwiz/internal/models"

	"go.uber.org/zap"
)

func newCategorizer(llm LLMClient) *CategorizationService {
	return NewCategorizationService(llm, time.Minute, zap.NewNop())
}

func TestCategorize_FencedReply(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"category\": \"Restaurants\", \"confidence\": 0.9}\n```"}

	got, err := newCategorizer(llm).Categorize(context.Background(), "UBER EATS")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if got.Description != "UBER EATS" || got.Category != models.CategoryRestaurants || got.Confidence != 0.9 {
		t.Fatalf("Categorize() = %+v", got)
	}
	if !llm.sawDeadline {
		t.Error("model call should carry a deadline")
	}

	prompt := llm.prompts[0]
	for _, c := range models.Categories {
		if !strings.Contains(prompt, c) {
			t.Errorf("prompt does not list category %q", c)
		}
	}
	if !strings.Contains(prompt, "UBER EATS") {
		t.Error("prompt does not contain the description")
	}
}

func TestCategorize_CanonicalizesCase(t *testing.T) {
	llm := &fakeLLM{reply: `{"category": "shopping", "confidence": 1}`}

	got, err := newCategorizer(llm).Categorize(context.Background(), "AMAZON.COM")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if got.Category != models.CategoryShopping {
		t.Fatalf("Category = %q, want %q", got.Category, models.CategoryShopping)
	}
}

func TestCategorize_ParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose", "This looks like a restaurant purchase."},
		{"invalid json", "{category: Restaurants}"},
		{"missing confidence", `{"category": "Restaurants"}`},
		{"missing category", `{"confidence": 0.5}`},
		{"unknown category", `{"category": "Food", "confidence": 0.8}`},
		{"confidence above one", `{"category": "Travel", "confidence": 1.5}`},
		{"negative confidence", `{"category": "Travel", "confidence": -0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCategorizer(&fakeLLM{reply: tt.reply}).Categorize(context.Background(), "X")
			var perr *ResponseParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Categorize() error = %v, want *ResponseParseError", err)
			}
			if perr.Raw != tt.reply {
				t.Errorf("Raw = %q, want the model reply", perr.Raw)
			}
		})
	}
}

func TestCategorize_UpstreamFailure(t *testing.T) {
	upstream := &UpstreamCallError{Provider: "gemini", Err: errors.New("connection refused")}

	_, err := newCategorizer(&fakeLLM{err: upstream}).Categorize(context.Background(), "X")
	var uerr *UpstreamCallError
	if !errors.As(err, &uerr) {
		t.Fatalf("Categorize() error = %v, want *UpstreamCallError", err)
	}
}

func TestCategorizeBatch(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n[{\"description\": \"AMAZON.COM\", \"category\": \"Shopping\"}, {\"description\": \"UBER EATS\", \"category\": \"restaurants\"}]\n```"}

	got, err := newCategorizer(llm).CategorizeBatch(context.Background(), []string{"AMAZON.COM", "UBER EATS"})
	if err != nil {
		t.Fatalf("CategorizeBatch() error = %v", err)
	}
	want := []models.Categorization{
		{Description: "AMAZON.COM", Category: models.CategoryShopping},
		{Description: "UBER EATS", Category: models.CategoryRestaurants},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if !strings.Contains(llm.prompts[0], models.CategoryMiscellaneous) {
		t.Error("batch prompt should name the fallback category")
	}
}

func TestCategorizeBatch_EmptyInputSkipsModel(t *testing.T) {
	llm := &fakeLLM{}

	got, err := newCategorizer(llm).CategorizeBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("CategorizeBatch() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("CategorizeBatch() = %#v, want empty non-nil slice", got)
	}
	if llm.calls() != 0 {
		t.Fatalf("model called %d times, want 0", llm.calls())
	}
}

func TestCategorizeBatch_ParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"object instead of array", `{"description": "X", "category": "Travel"}`},
		{"missing key", `[{"description": "X"}]`},
		{"unknown category", `[{"description": "X", "category": "Gadgets"}]`},
		{"no payload", "Sorry, I can't do that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCategorizer(&fakeLLM{reply: tt.reply}).CategorizeBatch(context.Background(), []string{"X"})
			var perr *ResponseParseError
			if !errors.As(err, &perr) {
				t.Fatalf("CategorizeBatch() error = %v, want *ResponseParseError", err)
			}
		})
	}
}
