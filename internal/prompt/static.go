package prompt

import (
	"sync"

	"ct-go/internal/ct"
)

// Static returns a fixed passphrase and records every request. Used by
// tests and scripted callers.
type Static struct {
	passphrase string
	err        error

	mu       sync.Mutex
	requests []Request
}

// Request is one recorded Passphrase call.
type Request struct {
	Prompt  string
	Confirm bool
}

var _ ct.PromptProvider = (*Static)(nil)

func NewStatic(passphrase string) *Static {
	return &Static{passphrase: passphrase}
}

// NewFailing returns a Static that always fails with err.
func NewFailing(err error) *Static {
	return &Static{err: err}
}

func (s *Static) Passphrase(prompt string, confirm bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Prompt: prompt, Confirm: confirm})
	if s.err != nil {
		return "", s.err
	}
	return s.passphrase, nil
}

// Requests returns the calls made so far.
func (s *Static) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
