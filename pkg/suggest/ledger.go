package suggest

import "sync"

// ImpressionLedger remembers impression URLs that were already reported.
// It only grows.
type ImpressionLedger struct {
	sent map[string]struct{}
	mu   sync.RWMutex
}

func NewImpressionLedger() *ImpressionLedger {
	return &ImpressionLedger{sent: make(map[string]struct{})}
}

// WasAlreadySent reports whether url was marked before.
func (l *ImpressionLedger) WasAlreadySent(url string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sent[url]
	return ok
}

// MarkSent records url. Marking twice is a no-op.
func (l *ImpressionLedger) MarkSent(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[url] = struct{}{}
}

// markIfNew marks url and reports whether it was new.
func (l *ImpressionLedger) markIfNew(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sent[url]; ok {
		return false
	}
	l.sent[url] = struct{}{}
	return true
}

func (l *ImpressionLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sent)
}
