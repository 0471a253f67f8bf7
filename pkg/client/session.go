package client

import (
	"strconv"
	"sync"
	"time"
)

// Session storage keys. They match what the web pages keep per browser tab.
const (
	KeyAdminID      = "admin_id"
	KeyAdminToken   = "admin_token"
	KeyLessorID     = "lessorId"
	KeyLessorToken  = "lessor_token"
	KeyUserID       = "user_id"
	KeyUserToken    = "user_token"
	KeyUserEmail    = "userEmail"
	KeyUserPassword = "userPassword"
)

// Local storage keys. They outlive the tab so a reload keeps the admin lockout countdown.
const (
	KeyFailedAttempts = "failedAttempts"
	KeyLockoutEnd     = "lockoutEnd"
)

// Storage is a string key/value store standing in for one browser storage area.
// Page flows keep sign-in state in a session Storage and the admin lockout
// mirror in a separate local Storage.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSession returns the per-tab store.
func NewSession() *Storage {
	return &Storage{values: make(map[string]string)}
}

// NewLocalStorage returns the store that is shared across tabs and reloads.
func NewLocalStorage() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *Storage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Storage) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
}

func (s *Storage) getUint(key string) uint {
	v, err := strconv.ParseUint(s.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func (s *Storage) setUint(key string, v uint) {
	s.Set(key, strconv.FormatUint(uint64(v), 10))
}

func (s *Storage) getInt(key string) int {
	v, _ := strconv.Atoi(s.Get(key))
	return v
}

// getTime reads a unix millisecond timestamp.
func (s *Storage) getTime(key string) time.Time {
	ms, err := strconv.ParseInt(s.Get(key), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (s *Storage) setTime(key string, t time.Time) {
	s.Set(key, strconv.FormatInt(t.UnixMilli(), 10))
}
