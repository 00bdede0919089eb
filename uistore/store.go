// Package uistore holds the per-session UI state: the toast queue and the
// login modal flag. Each session owns its own Store.
package uistore

import (
	"sync"
	"time"

	"modelhubweb/models"

	"github.com/google/uuid"
)

const (
	ErrorToastDuration   = 5 * time.Second
	DefaultToastDuration = 3 * time.Second
)

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The returned handle cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notifier is the part of the store page controllers use to surface events.
type Notifier interface {
	AddToast(variant models.ToastVariant, message string, duration time.Duration) string
}

type Store struct {
	mu             sync.Mutex
	scheduler      Scheduler
	toasts         []models.Toast
	timers         map[string]Timer
	loginModalOpen bool
	closed         bool
}

func New() *Store {
	return NewWithScheduler(realScheduler{})
}

func NewWithScheduler(scheduler Scheduler) *Store {
	return &Store{
		scheduler: scheduler,
		timers:    map[string]Timer{},
	}
}

func ToastDuration(variant models.ToastVariant) time.Duration {
	if variant == models.ToastError {
		return ErrorToastDuration
	}
	return DefaultToastDuration
}

// AddToast queues a toast and schedules its removal. A zero duration picks the
// variant default.
func (s *Store) AddToast(variant models.ToastVariant, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = ToastDuration(variant)
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}
	s.toasts = append(s.toasts, models.Toast{
		ID:       id,
		Variant:  variant,
		Message:  message,
		Duration: duration,
	})
	s.timers[id] = s.scheduler.AfterFunc(duration, func() {
		s.expire(id)
	})
	return id
}

func (s *Store) Success(message string) string {
	return s.AddToast(models.ToastSuccess, message, 0)
}

func (s *Store) Error(message string) string {
	return s.AddToast(models.ToastError, message, 0)
}

func (s *Store) Info(message string) string {
	return s.AddToast(models.ToastInfo, message, 0)
}

func (s *Store) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, id)
	s.removeLocked(id)
}

// RemoveToast dismisses a toast right away and cancels its timer.
func (s *Store) RemoveToast(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	return s.removeLocked(id)
}

func (s *Store) removeLocked(id string) bool {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Toasts() []models.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

func (s *Store) OpenLoginModal() {
	s.mu.Lock()
	s.loginModalOpen = true
	s.mu.Unlock()
}

func (s *Store) CloseLoginModal() {
	s.mu.Lock()
	s.loginModalOpen = false
	s.mu.Unlock()
}

func (s *Store) IsLoginModalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginModalOpen
}

// Close stops every pending expiry timer and drops the queue.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.toasts = nil
	s.closed = true
}

type State struct {
	Toasts         []models.Toast `json:"toasts"`
	LoginModalOpen bool           `json:"login_modal_open"`
}

func (s *Store) Snapshot() State {
	return State{Toasts: s.Toasts(), LoginModalOpen: s.IsLoginModalOpen()}
}
