package uistore

import (
	"sort"
	"sync"
	"testing"
	"time"

	"modelhubweb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &fakeTimer{at: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*fakeTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.at <= m.now {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func ids(toasts []models.Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.ID)
	}
	return out
}

func TestErrorToastExpiresAfterFiveSeconds(t *testing.T) {
	clock := &manualScheduler{}
	store := NewWithScheduler(clock)

	id := store.Error("결제 처리 중 오류가 발생했습니다.")
	require.NotEmpty(t, id)

	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, []string{id}, ids(store.Toasts()))

	clock.Advance(time.Millisecond)
	assert.Empty(t, store.Toasts())
}

func TestSuccessAndInfoToastsExpireAfterThreeSeconds(t *testing.T) {
	clock := &manualScheduler{}
	store := NewWithScheduler(clock)

	success := store.Success("saved")
	info := store.Info("heads up")
	errID := store.Error("boom")

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, []string{success, info, errID}, ids(store.Toasts()))

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{errID}, ids(store.Toasts()))

	clock.Advance(2 * time.Second)
	assert.Empty(t, store.Toasts())
}

func TestExplicitDurationWins(t *testing.T) {
	clock := &manualScheduler{}
	store := NewWithScheduler(clock)

	store.AddToast(models.ToastError, "long", 10*time.Second)
	clock.Advance(5 * time.Second)
	assert.Len(t, store.Toasts(), 1)
	clock.Advance(5 * time.Second)
	assert.Empty(t, store.Toasts())
}

func TestRemoveToastIsImmediateAndCancelsTimer(t *testing.T) {
	clock := &manualScheduler{}
	store := NewWithScheduler(clock)

	first := store.Success("one")
	second := store.Success("two")

	assert.True(t, store.RemoveToast(first))
	assert.Equal(t, []string{second}, ids(store.Toasts()))
	assert.True(t, clock.timers[0].stopped)
	assert.False(t, store.RemoveToast(first))

	clock.Advance(3 * time.Second)
	assert.Empty(t, store.Toasts())
}

func TestToastIDsAreUnique(t *testing.T) {
	store := NewWithScheduler(&manualScheduler{})
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := store.Info("again")
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, store.Toasts(), 200)
}

func TestCloseStopsPendingTimers(t *testing.T) {
	clock := &manualScheduler{}
	store := NewWithScheduler(clock)
	store.Success("a")
	store.Error("b")

	store.Close()

	for _, timer := range clock.timers {
		assert.True(t, timer.stopped)
	}
	assert.Empty(t, store.Toasts())
	assert.Empty(t, store.AddToast(models.ToastInfo, "late", 0))
}

func TestLoginModal(t *testing.T) {
	store := New()
	defer store.Close()
	assert.False(t, store.IsLoginModalOpen())
	store.OpenLoginModal()
	assert.True(t, store.Snapshot().LoginModalOpen)
	store.CloseLoginModal()
	assert.False(t, store.IsLoginModalOpen())
}

func TestRealTimerRemovesToast(t *testing.T) {
	store := New()
	defer store.Close()
	store.AddToast(models.ToastInfo, "quick", 20*time.Millisecond)
	assert.Len(t, store.Toasts(), 1)
	assert.Eventually(t, func() bool { return len(store.Toasts()) == 0 }, time.Second, 5*time.Millisecond)
}
