package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Message is an operator notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a message to the operator mailbox.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the application log. It stands in for SMTP
// when no mail server is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification", zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}

// MemorySender stores messages in memory for inspection.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewMemorySender constructs an empty memory sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// FailWith makes subsequent sends return err without recording.
func (m *MemorySender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Send records the message.
func (m *MemorySender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of the messages seen so far.
func (m *MemorySender) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
