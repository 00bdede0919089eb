// Package chat keeps the message thread of one order in sync with the API
// and echoes outgoing messages before the server confirms them.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 5 * time.Second
	CorrelationPrefix   = "temp-"

	sendFallback = "메시지 전송에 실패했습니다"

	// how far a server timestamp may sit from the local echo and still be its copy
	echoMatchWindow = time.Minute
)

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrAttachmentTooLarge = errors.New("attachment exceeds the upload limit")
	ErrRoomClosed         = errors.New("chat room is closed")
)

type SendError struct {
	Message string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send message: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func (e *SendError) UserMessage() string {
	return e.Message
}

// outgoing is a locally echoed message. Until the API answers, msg carries
// the correlation id; afterwards it is the server copy.
type outgoing struct {
	correlationID string
	msg           models.ChatMessage
	confirmed     bool
}

type View struct {
	OrderID  string               `json:"order_id"`
	Order    *models.Order        `json:"order,omitempty"`
	Messages []models.ChatMessage `json:"messages"`
	Active   bool                 `json:"active"`
}

type Room struct {
	OrderID string

	user     models.CurrentUser
	service  services.ChatServiceProvider
	notifier uistore.Notifier
	interval time.Duration

	mu      sync.Mutex
	active  bool
	gen     int
	cancel  context.CancelFunc
	order   *models.Order
	server  []models.ChatMessage
	pending []*outgoing
}

func NewRoom(orderID string, user models.CurrentUser, service services.ChatServiceProvider, notifier uistore.Notifier, interval time.Duration) *Room {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Room{
		OrderID:  orderID,
		user:     user,
		service:  service,
		notifier: notifier,
		interval: interval,
	}
}

func (r *Room) logger() *log.Entry {
	return log.WithFields(log.Fields{"order_id": r.OrderID, "user_id": r.user.ID})
}

// Open loads the order header and the thread, marks it read and starts polling.
// Opening an open room is a no-op.
func (r *Room) Open(ctx context.Context) error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	order, err := r.service.GetOrder(ctx, r.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", r.OrderID, err)
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil
	}
	r.gen++
	gen := r.gen
	r.active = true
	r.order = order
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.mu.Unlock()

	if err := r.sync(pollCtx, gen); err != nil {
		r.logger().WithError(err).Warn("initial message load failed")
	}

	go r.poll(pollCtx, gen)
	return nil
}

func (r *Room) poll(ctx context.Context, gen int) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sync(ctx, gen); err != nil && ctx.Err() == nil {
				r.logger().WithError(err).Debug("message poll failed")
			}
		}
	}
}

// Refresh pulls the thread once outside the polling schedule.
func (r *Room) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	gen := r.gen
	r.mu.Unlock()
	return r.sync(ctx, gen)
}

// sync pulls the thread and, if the room is still the same open room,
// marks it read so messages that arrive while it is open count as seen.
func (r *Room) sync(ctx context.Context, gen int) error {
	if err := r.refresh(ctx, gen); err != nil {
		return err
	}
	if !r.current(gen) {
		return nil
	}
	if err := r.service.MarkAsRead(ctx, r.OrderID); err != nil && ctx.Err() == nil {
		r.logger().WithError(err).Warn("mark as read failed")
	}
	return nil
}

func (r *Room) current(gen int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active && r.gen == gen
}

func (r *Room) refresh(ctx context.Context, gen int) error {
	messages, err := r.service.GetMessages(ctx, r.OrderID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// late answers for a closed or reopened room are dropped
	if !r.active || r.gen != gen {
		return nil
	}
	r.server = messages
	r.prune()
	return nil
}

// prune drops confirmed echoes the server list now contains. Caller holds mu.
func (r *Room) prune() {
	if len(r.pending) == 0 {
		return
	}
	known := make(map[string]struct{}, len(r.server))
	for _, m := range r.server {
		known[m.ID] = struct{}{}
	}
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.confirmed {
			if _, ok := known[p.msg.ID]; ok {
				continue
			}
		}
		kept = append(kept, p)
	}
	r.pending = kept
}

// Send echoes the message right away and then posts it. On failure only the
// echo of this message is withdrawn.
func (r *Room) Send(ctx context.Context, text string, attachment *models.Attachment) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}
	if attachment != nil && len(attachment.Content) > services.MaxUploadSize {
		return nil, ErrAttachmentTooLarge
	}

	echo := &outgoing{
		correlationID: CorrelationPrefix + uuid.NewString(),
	}
	echo.msg = models.ChatMessage{
		ID:        echo.correlationID,
		OrderID:   r.OrderID,
		Message:   text,
		IsRead:    true,
		Sender:    r.user.Sender(),
		CreatedAt: time.Now().UTC(),
		Pending:   true,
	}
	if attachment != nil {
		size := int64(len(attachment.Content))
		echo.msg.AttachmentName = services.StrPointer(attachment.Name)
		echo.msg.AttachmentSize = &size
	}

	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil, ErrRoomClosed
	}
	r.pending = append(r.pending, echo)
	r.mu.Unlock()

	sent, err := r.service.SendMessage(context.WithoutCancel(ctx), r.OrderID, text, attachment)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.withdraw(echo.correlationID)
		msg := services.UserMessage(err, sendFallback)
		r.logger().WithError(err).Warn("send message failed")
		if r.notifier != nil {
			r.notifier.AddToast(models.ToastError, msg, 0)
		}
		return nil, &SendError{Message: msg, Err: err}
	}
	echo.msg = *sent
	echo.msg.Pending = false
	echo.confirmed = true
	r.prune()
	return sent, nil
}

// withdraw removes the echo with the given correlation id. Caller holds mu.
func (r *Room) withdraw(correlationID string) {
	for i, p := range r.pending {
		if p.correlationID == correlationID {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

// Messages is the last server list followed by echoes it does not contain yet.
func (r *Room) Messages() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.merged()
}

// merged hides an unconfirmed echo once a poll already returned the stored
// copy, so a message is not listed twice while its send is still in flight.
// Each server message stands in for at most one echo. Caller holds mu.
func (r *Room) merged() []models.ChatMessage {
	claimed := make(map[string]bool, len(r.pending))
	for _, p := range r.pending {
		if p.confirmed {
			claimed[p.msg.ID] = true
		}
	}
	out := make([]models.ChatMessage, 0, len(r.server)+len(r.pending))
	out = append(out, r.server...)
	for _, p := range r.pending {
		if !p.confirmed && r.claimServerCopy(p.msg, claimed) {
			continue
		}
		out = append(out, p.msg)
	}
	return out
}

func (r *Room) claimServerCopy(echo models.ChatMessage, claimed map[string]bool) bool {
	for _, m := range r.server {
		if claimed[m.ID] || !sameMessage(m, echo) {
			continue
		}
		claimed[m.ID] = true
		return true
	}
	return false
}

func sameMessage(stored, echo models.ChatMessage) bool {
	if stored.Sender.ID != echo.Sender.ID || stored.Message != echo.Message {
		return false
	}
	if (stored.AttachmentName == nil) != (echo.AttachmentName == nil) {
		return false
	}
	if stored.AttachmentName != nil && *stored.AttachmentName != *echo.AttachmentName {
		return false
	}
	diff := stored.CreatedAt.Sub(echo.CreatedAt)
	return diff > -echoMatchWindow && diff < echoMatchWindow
}

func (r *Room) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := View{OrderID: r.OrderID, Messages: r.merged(), Active: r.active}
	if r.order != nil {
		o := *r.order
		v.Order = &o
	}
	return v
}

func (r *Room) UnreadCount(ctx context.Context) (int, error) {
	stats, err := r.service.GetUnreadCount(ctx, r.OrderID)
	if err != nil {
		return 0, err
	}
	return stats.UnreadCount, nil
}

func (r *Room) DeliveryFiles(ctx context.Context) ([]models.DeliveryFile, error) {
	return r.service.GetDeliveryFiles(ctx, r.OrderID)
}

func (r *Room) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Close stops polling. Responses still in flight are ignored when they land.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
