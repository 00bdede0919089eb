// Package session keeps one state container per signed-in user: the UI
// store, open booking wizards, chat rooms, the explorer and dashboards.
package session

import (
	"context"
	"sync"
	"time"

	"modelhubweb/booking"
	"modelhubweb/chat"
	"modelhubweb/dashboard"
	"modelhubweb/explore"
	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"

	log "github.com/sirupsen/logrus"
)

// Dependencies are shared by every session. API carries no token; each
// session derives its own authenticated copy.
type Dependencies struct {
	API              *services.APIClient
	Models           services.ModelServiceProvider
	Storage          services.StorageProvider
	Incidents        booking.IncidentRecorder
	ChatPollInterval time.Duration
	Scheduler        uistore.Scheduler
}

type Session struct {
	User models.CurrentUser
	UI   *uistore.Store

	deps *Dependencies
	api  *services.APIClient

	mu       sync.Mutex
	lastSeen time.Time
	wizards  map[string]*booking.Wizard
	rooms    map[string]*chat.Room
	explorer *explore.Explorer
	brand    *dashboard.BrandDashboard
	creator  *dashboard.CreatorDashboard
}

func newSession(user models.CurrentUser, deps *Dependencies) *Session {
	ui := uistore.New()
	if deps.Scheduler != nil {
		ui = uistore.NewWithScheduler(deps.Scheduler)
	}
	return &Session{
		User:     user,
		UI:       ui,
		deps:     deps,
		api:      deps.API.WithToken(user.Token),
		lastSeen: time.Now(),
		wizards:  map[string]*booking.Wizard{},
		rooms:    map[string]*chat.Room{},
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) NewWizard() *booking.Wizard {
	w := booking.NewWizard(s.User, &services.BookingService{API: s.api}, s.UI, s.deps.Incidents)
	s.mu.Lock()
	s.wizards[w.ID] = w
	s.mu.Unlock()
	return w
}

func (s *Session) Wizard(id string) (*booking.Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	return w, ok
}

func (s *Session) DropWizard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wizards[id]
	delete(s.wizards, id)
	return ok
}

// Room returns the chat room for orderID, creating a closed one if needed.
func (s *Session) Room(orderID string) *chat.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[orderID]; ok {
		return r
	}
	r := chat.NewRoom(orderID, s.User, &services.ChatService{API: s.api}, s.UI, s.deps.ChatPollInterval)
	s.rooms[orderID] = r
	return r
}

func (s *Session) ExistingRoom(orderID string) (*chat.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[orderID]
	return r, ok
}

func (s *Session) CloseRoom(orderID string) bool {
	s.mu.Lock()
	r, ok := s.rooms[orderID]
	delete(s.rooms, orderID)
	s.mu.Unlock()
	if ok {
		r.Close()
	}
	return ok
}

// DiscardRoom drops r after a failed open. A room another request has since
// activated, or one already replaced, stays.
func (s *Session) DiscardRoom(orderID string, r *chat.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[orderID] != r || r.Active() {
		return false
	}
	delete(s.rooms, orderID)
	return true
}

func (s *Session) Explorer() *explore.Explorer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.explorer == nil {
		s.explorer = explore.NewExplorer(s.deps.Models, &services.FavoriteService{API: s.api}, s.UI)
	}
	return s.explorer
}

func (s *Session) Brand() *dashboard.BrandDashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.brand == nil {
		s.brand = dashboard.NewBrandDashboard(&services.OrderService{API: s.api}, &services.FavoriteService{API: s.api}, s.UI)
	}
	return s.brand
}

func (s *Session) Creator() *dashboard.CreatorDashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creator == nil {
		s.creator = dashboard.NewCreatorDashboard(
			s.User,
			&services.OrderService{API: s.api},
			// per creator listings bypass the shared cache
			&services.ModelService{API: s.api},
			s.deps.Storage,
			s.UI,
		)
	}
	return s.creator
}

type Stats struct {
	Wizards int `json:"wizards"`
	Rooms   int `json:"rooms"`
	Toasts  int `json:"toasts"`
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	st := Stats{Wizards: len(s.wizards), Rooms: len(s.rooms)}
	s.mu.Unlock()
	st.Toasts = len(s.UI.Toasts())
	return st
}

// Close stops every chat poller and toast timer the session owns.
func (s *Session) Close() {
	s.mu.Lock()
	rooms := s.rooms
	s.rooms = map[string]*chat.Room{}
	s.wizards = map[string]*booking.Wizard{}
	s.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
	s.UI.Close()
}

type Hub struct {
	deps *Dependencies

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHub(deps *Dependencies) *Hub {
	return &Hub{deps: deps, sessions: map[string]*Session{}}
}

// Get returns the user's session. A different token means a new sign-in,
// which starts over with a fresh session.
func (h *Hub) Get(user models.CurrentUser) *Session {
	h.mu.Lock()
	s, ok := h.sessions[user.ID]
	if ok && s.User.Token == user.Token {
		h.mu.Unlock()
		s.touch()
		return s
	}
	fresh := newSession(user, h.deps)
	h.sessions[user.ID] = fresh
	h.mu.Unlock()

	if ok {
		s.Close()
	}
	log.WithField("user_id", user.ID).Debug("session started")
	return fresh
}

func (h *Hub) Close(userID string) bool {
	h.mu.Lock()
	s, ok := h.sessions[userID]
	delete(h.sessions, userID)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Sweep closes sessions idle for longer than maxIdle and returns how many went.
func (h *Hub) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []*Session
	h.mu.Lock()
	for id, s := range h.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (h *Hub) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(maxIdle); n > 0 {
				log.WithField("closed", n).Info("swept idle sessions")
			}
		}
	}
}

// CloseAll is used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = map[string]*Session{}
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
