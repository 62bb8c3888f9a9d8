package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"notify_hub/internal/auth"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
)

// Conn is a live, message-oriented connection. Send returns an error when the
// frame could not be written; the registry treats that as a dead connection.
type Conn interface {
	Send(msg domain.Message) error
	Receive() ([]byte, error)
	Close(code int, reason string) error
}

// Pending is an inbound connection whose handshake has not completed yet.
type Pending interface {
	// Credential is the bearer token offered through sub-protocol negotiation.
	Credential() string
	// Accept completes the handshake, echoing subprotocol back to the client.
	Accept(subprotocol string) (Conn, error)
	// Reject completes the handshake only to close it with the given status.
	Reject(code int, reason string) error
}

type Counter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Registry tracks live connections per user. The forward and reverse maps are
// only ever mutated together under mu.
type Registry struct {
	validator auth.TokenValidator
	counter   Counter
	metrics   *metrics.Metrics
	log       *zap.Logger

	mu     sync.Mutex
	byUser map[string]map[Conn]struct{}
	byConn map[Conn]string
}

func NewRegistry(validator auth.TokenValidator, counter Counter, m *metrics.Metrics, logger *zap.Logger) *Registry {
	return &Registry{
		validator: validator,
		counter:   counter,
		metrics:   m,
		log:       logger,
		byUser:    make(map[string]map[Conn]struct{}),
		byConn:    make(map[Conn]string),
	}
}

// Accept admits an inbound connection. A bad credential closes it with a
// policy-violation status and returns an error wrapping domain.ErrAuthentication.
// On success the connection is registered and receives a welcome frame with
// the current unread count.
func (r *Registry) Accept(ctx context.Context, p Pending) (Conn, string, error) {
	credential := p.Credential()
	subject, err := r.validator.Validate(credential)
	if err != nil {
		r.metrics.AuthFailures.Inc()
		if rejectErr := p.Reject(websocket.ClosePolicyViolation, "authentication failed"); rejectErr != nil {
			r.log.Debug("reject connection failed", zap.Error(rejectErr))
		}
		return nil, "", err
	}

	conn, err := p.Accept(credential)
	if err != nil {
		return nil, "", fmt.Errorf("complete handshake: %w", err)
	}
	r.add(subject.UserID, conn)
	r.log.Info("connection admitted", zap.String("user_id", subject.UserID))

	count, err := r.counter.CountUnread(ctx, subject.UserID)
	if err != nil {
		r.log.Error("welcome count failed", zap.String("user_id", subject.UserID), zap.Error(err))
		return conn, subject.UserID, nil
	}
	r.deliver(subject.UserID, conn, domain.WelcomeMessage{Count: count})
	return conn, subject.UserID, nil
}

// Serve runs the receive loop of an admitted connection until it fails or is
// closed. Every inbound frame refreshes the unread count on all of the user's
// connections.
func (r *Registry) Serve(ctx context.Context, conn Conn, userID string) {
	defer r.Remove(conn)
	for {
		data, err := conn.Receive()
		if err != nil {
			r.log.Debug("receive loop ended", zap.String("user_id", userID), zap.Error(err))
			return
		}
		r.log.Debug("frame received", zap.String("user_id", userID), zap.Int("bytes", len(data)))

		count, err := r.counter.CountUnread(ctx, userID)
		if err != nil {
			r.log.Error("refresh count failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		r.PushToUser(userID, domain.CountMessage{Count: count})
	}
}

// Remove drops conn from the registry and closes it. Unknown connections are
// ignored. Reports whether conn was registered.
func (r *Registry) Remove(conn Conn) bool {
	return r.remove(conn, websocket.CloseNormalClosure, "")
}

// PushToUser delivers msg to every live connection of userID and returns the
// number of successful sends. Failed connections are removed; a failure never
// stops delivery to the remaining ones.
func (r *Registry) PushToUser(userID string, msg domain.Message) int {
	delivered := 0
	for _, conn := range r.Connections(userID) {
		if r.deliver(userID, conn, msg) {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) Broadcast(msg domain.Message) int {
	delivered := 0
	for _, userID := range r.Users() {
		delivered += r.PushToUser(userID, msg)
	}
	return delivered
}

// CloseAll evicts every connection with a going-away status.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]Conn, 0, len(r.byConn))
	for conn := range r.byConn {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		r.remove(conn, websocket.CloseGoingAway, "server shutdown")
	}
}

// Connections returns a snapshot of the user's live connections.
func (r *Registry) Connections(userID string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byUser[userID]
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

// Users returns a snapshot of every user with at least one live connection.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}

func (r *Registry) UserOf(conn Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[conn]
	return userID, ok
}

func (r *Registry) add(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byConn[conn]; exists {
		return
	}
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[Conn]struct{})
	}
	r.byUser[userID][conn] = struct{}{}
	r.byConn[conn] = userID
	r.metrics.Connections.Inc()
}

func (r *Registry) remove(conn Conn, code int, reason string) bool {
	r.mu.Lock()
	userID, ok := r.byConn[conn]
	if ok {
		delete(r.byConn, conn)
		set := r.byUser[userID]
		delete(set, conn)
		if len(set) == 0 {
			delete(r.byUser, userID)
		}
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.metrics.Connections.Dec()
	// already-closed connections report an error here; it carries no signal
	if err := conn.Close(code, reason); err != nil {
		r.log.Debug("close connection", zap.String("user_id", userID), zap.Error(err))
	}
	r.log.Info("connection removed", zap.String("user_id", userID))
	return true
}

func (r *Registry) deliver(userID string, conn Conn, msg domain.Message) bool {
	if err := conn.Send(msg); err != nil {
		r.metrics.Pushes.WithLabelValues("failed").Inc()
		r.log.Warn("push failed, evicting connection", zap.String("user_id", userID), zap.Error(err))
		r.Remove(conn)
		return false
	}
	r.metrics.Pushes.WithLabelValues("ok").Inc()
	return true
}
