package ws

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"notify_hub/internal/auth"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
)

type validatorMock struct {
	mock.Mock
}

func (m *validatorMock) Validate(token string) (auth.Subject, error) {
	args := m.Called(token)
	return args.Get(0).(auth.Subject), args.Error(1)
}

type counterMock struct {
	mock.Mock
}

func (m *counterMock) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

var errSendFailed = errors.New("broken pipe")

type fakeConn struct {
	mu        sync.Mutex
	sent      []domain.Envelope
	sendErr   error
	closed    bool
	closeCode int
	inbound   chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8)}
}

func (c *fakeConn) Send(msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	if c.closed {
		return errors.New("send on closed connection")
	}
	c.sent = append(c.sent, msg.Envelope())
	return nil
}

func (c *fakeConn) Receive() ([]byte, error) {
	data, ok := <-c.inbound
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (c *fakeConn) Close(code int, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("already closed")
	}
	c.closed = true
	c.closeCode = code
	return nil
}

func (c *fakeConn) failSends() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = errSendFailed
}

func (c *fakeConn) frames() []domain.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Envelope(nil), c.sent...)
}

func (c *fakeConn) isClosed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

type fakePending struct {
	credential  string
	conn        *fakeConn
	acceptedAs  string
	accepted    bool
	rejected    bool
	rejectCode  int
	acceptError error
}

func (p *fakePending) Credential() string { return p.credential }

func (p *fakePending) Accept(subprotocol string) (Conn, error) {
	if p.acceptError != nil {
		return nil, p.acceptError
	}
	p.accepted = true
	p.acceptedAs = subprotocol
	return p.conn, nil
}

func (p *fakePending) Reject(code int, _ string) error {
	p.rejected = true
	p.rejectCode = code
	return nil
}

func newTestRegistry(validator auth.TokenValidator, counter Counter) *Registry {
	return NewRegistry(validator, counter, metrics.New(), zap.NewNop())
}

// consistent reports whether the forward and reverse maps agree and no user
// entry is empty.
func (r *Registry) consistent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for userID, set := range r.byUser {
		if len(set) == 0 {
			return false
		}
		for conn := range set {
			if r.byConn[conn] != userID {
				return false
			}
		}
		total += len(set)
	}
	return total == len(r.byConn)
}
