package service

import (
	"context"
	"sync"
)

// fakeLLM returns a canned reply or error and records the prompts it saw.
type fakeLLM struct {
	mu          sync.Mutex
	reply       string
	err         error
	prompts     []string
	sawDeadline bool
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	_, f.sawDeadline = ctx.Deadline()
	return f.reply, f.err
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
