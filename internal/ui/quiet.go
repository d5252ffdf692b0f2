package ui

import "github.com/hollandaise/fanout/internal/stats"

// quietPresenter consumes events but produces no output. Counters still
// accumulate on the collector, so the exit summary stays accurate.
type quietPresenter struct {
	stats stats.Reader
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Drain. The engine updates the collector directly; presenters
		// only read from it.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
