package memory

import (
	"context"
	"fmt"
	"sync"

	"lynx/internal/report"
	ports "lynx/internal/sheets"
)

// Publisher keeps published tables in memory, keyed by tab name.
type Publisher struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

var _ ports.ReportPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{tabs: make(map[string][][]string)}
}

func (p *Publisher) Publish(_ context.Context, doc report.Document) (string, error) {
	tab := ports.TabName(doc.Title())
	table := doc.Table()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tabs[tab] = table
	return fmt.Sprintf("mem:%s!A1", tab), nil
}

// Tab returns a copy of what was last published to tab.
func (p *Publisher) Tab(tab string) ([][]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tabs[tab]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(t))
	for i, row := range t {
		out[i] = append([]string(nil), row...)
	}
	return out, true
}

// Tabs returns how many tabs hold data.
func (p *Publisher) Tabs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tabs)
}
