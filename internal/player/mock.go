package player

import (
	"context"
	"sync"
	"time"
)

// Verify Mock implements Pipeline at compile time.
var _ Pipeline = (*Mock)(nil)

// Mock is a test double for the pipeline. State transitions confirm
// immediately and tests inject bus messages by hand.
type Mock struct {
	mu sync.Mutex

	status   Status
	uri      string
	position time.Duration
	duration time.Duration

	uriCalls   []string
	stateCalls []Status
	seekCalls  []SeekCall

	stateErr error
	seekErr  error

	messages      chan Message
	aboutToFinish func()
	closed        bool
}

// SeekCall records one Seek invocation.
type SeekCall struct {
	Pos   time.Duration
	Flags SeekFlags
}

// NewMock creates a mock pipeline in the Null state.
func NewMock() *Mock {
	return &Mock{
		status:   Null,
		messages: make(chan Message, 64),
	}
}

func (m *Mock) SetURI(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uri = uri
	m.uriCalls = append(m.uriCalls, uri)
}

func (m *Mock) SetState(_ context.Context, target Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateCalls = append(m.stateCalls, target)
	if m.stateErr != nil {
		return m.stateErr
	}
	m.status = target
	// Confirm over the bus like the real pipeline does.
	if !m.closed {
		select {
		case m.messages <- Message{Kind: MsgStateChanged, State: target}:
		default:
		}
	}
	return nil
}

func (m *Mock) State() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mock) Position() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == Null {
		return 0, false
	}
	return m.position, true
}

func (m *Mock) Duration() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == Null || m.duration == 0 {
		return 0, false
	}
	return m.duration, true
}

func (m *Mock) Seek(pos time.Duration, flags SeekFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, SeekCall{Pos: pos, Flags: flags})
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = pos
	return nil
}

func (m *Mock) Messages() <-chan Message { return m.messages }

func (m *Mock) OnAboutToFinish(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aboutToFinish = fn
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.status = Null
	close(m.messages)
	return nil
}

// Test helpers

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	m.position = d
	m.mu.Unlock()
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

func (m *Mock) SetStateError(err error) {
	m.mu.Lock()
	m.stateErr = err
	m.mu.Unlock()
}

func (m *Mock) URICalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uriCalls...)
}

func (m *Mock) CurrentURI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uri
}

func (m *Mock) StateCalls() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Status(nil), m.stateCalls...)
}

func (m *Mock) SeekCalls() []SeekCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeekCall(nil), m.seekCalls...)
}

// Emit injects a bus message as if the native graph produced it.
func (m *Mock) Emit(msg Message) {
	m.messages <- msg
}

// FireAboutToFinish invokes the registered lead-out callback from the
// caller's goroutine, mimicking the pipeline's own thread.
func (m *Mock) FireAboutToFinish() {
	m.mu.Lock()
	cb := m.aboutToFinish
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}
