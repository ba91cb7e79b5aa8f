package main

import (
	"net/http"
	"sync"

	"go-resource-admin/internal/model"

	"github.com/google/uuid"
)

const flashCookie = "resadmin_flash"

// flashStore keeps alerts across a redirect, keyed by a random id held in a
// short-lived cookie.
type flashStore struct {
	mu       sync.Mutex
	messages map[string][]model.Alert
}

func newFlashStore() *flashStore {
	return &flashStore{messages: make(map[string][]model.Alert)}
}

// Add queues alerts for the client's next request.
func (s *flashStore) Add(w http.ResponseWriter, r *http.Request, alerts ...model.Alert) {
	if len(alerts) == 0 {
		return
	}
	id := ""
	if c, err := r.Cookie(flashCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	s.messages[id] = append(s.messages[id], alerts...)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns and clears the client's queued alerts.
func (s *flashStore) Pop(w http.ResponseWriter, r *http.Request) []model.Alert {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	alerts := s.messages[c.Value]
	delete(s.messages, c.Value)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	return alerts
}
