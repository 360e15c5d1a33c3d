package service

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type failureWindow struct {
	count int
	first time.Time
}

// LoginThrottle counts failed logins per e-mail within a sliding window and blocks
// further attempts once the limit is reached. Expired windows are swept by a
// background goroutine until Stop is called.
type LoginThrottle struct {
	mu        sync.RWMutex
	failures  map[string]*failureWindow
	limit     int
	window    time.Duration
	now       func() time.Time
	logger    *zap.Logger
	stopChan  chan struct{}
	cleanupWg sync.WaitGroup
}

func NewLoginThrottle(limit int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	t := &LoginThrottle{
		failures: make(map[string]*failureWindow),
		limit:    limit,
		window:   window,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	t.cleanupWg.Add(1)
	go t.cleanupLoop()

	return t
}

// Blocked reports whether email has reached the failure limit and, if so, how long
// until the window expires.
func (t *LoginThrottle) Blocked(email string) (bool, time.Duration) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	w, ok := t.failures[key(email)]
	if !ok || t.expired(w) {
		return false, 0
	}
	if w.count < t.limit {
		return false, 0
	}
	return true, w.first.Add(t.window).Sub(t.now())
}

// Fail records a failed attempt.
func (t *LoginThrottle) Fail(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(email)
	w, ok := t.failures[k]
	if !ok || t.expired(w) {
		w = &failureWindow{first: t.now()}
		t.failures[k] = w
	}
	w.count++

	if w.count == t.limit {
		t.logger.Warn("Login attempts limit reached", zap.String("email", k))
	}
}

// Reset forgets the failures of email after a successful login.
func (t *LoginThrottle) Reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key(email))
}

func (t *LoginThrottle) expired(w *failureWindow) bool {
	return t.now().Sub(w.first) > t.window
}

func (t *LoginThrottle) cleanupLoop() {
	defer t.cleanupWg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanup()
		case <-t.stopChan:
			return
		}
	}
}

func (t *LoginThrottle) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	expired := 0
	for k, w := range t.failures {
		if t.expired(w) {
			delete(t.failures, k)
			expired++
		}
	}

	if expired > 0 {
		t.logger.Debug("Cleaned up login failure windows", zap.Int("count", expired))
	}
}

// Stop stops the cleanup goroutine.
func (t *LoginThrottle) Stop() {
	close(t.stopChan)
	t.cleanupWg.Wait()
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
