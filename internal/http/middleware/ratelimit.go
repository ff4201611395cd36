package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	last  time.Time
	count int
}

// localWindow is the in-process fixed window used when Redis is not
// configured.
type localWindow struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
}

func newLocalWindow() *localWindow {
	return &localWindow{clients: make(map[string]*clientInfo)}
}

// hit counts one request for key and returns the count inside the window.
func (w *localWindow) hit(key string, window time.Duration, now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	ci, ok := w.clients[key]
	if !ok || now.Sub(ci.last) > window {
		w.clients[key] = &clientInfo{last: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}
