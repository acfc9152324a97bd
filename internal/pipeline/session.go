package pipeline

import (
	"sync"

	"github.com/sells-group/leadscout/internal/model"
)

// ResultBuffer holds the most recently completed session's company
// list for later export. Writes replace the whole list; readers get a
// snapshot, so a concurrent export never observes a partial update.
type ResultBuffer struct {
	mu        sync.RWMutex
	companies []model.Company
}

// NewResultBuffer creates an empty buffer.
func NewResultBuffer() *ResultBuffer {
	return &ResultBuffer{}
}

// Replace swaps the buffer contents for a copy of companies.
func (b *ResultBuffer) Replace(companies []model.Company) {
	copied := make([]model.Company, len(companies))
	copy(copied, companies)

	b.mu.Lock()
	b.companies = copied
	b.mu.Unlock()
}

// Snapshot returns a copy of the current contents.
func (b *ResultBuffer) Snapshot() []model.Company {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Company, len(b.companies))
	copy(out, b.companies)
	return out
}

// Len returns the current number of records.
func (b *ResultBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.companies)
}
