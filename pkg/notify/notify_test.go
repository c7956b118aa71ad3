package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type dialerStub struct {
	sent []*gomail.Message
	err  error
}

func (d *dialerStub) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

type outcomes struct {
	mu   sync.Mutex
	seen []string
}

func (o *outcomes) record(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, outcome)
}

func (o *outcomes) list() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	stub := &dialerStub{}
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 465, User: "ops@example.com", To: "ops@example.com"})
	require.NoError(t, err)
	s.dialer = stub

	require.NoError(t, s.Send(context.Background(), Message{Subject: "Nouvelle synthèse ajoutée: Graphes", Body: "body"}))
	require.Len(t, stub.sent, 1)
	assert.Equal(t, []string{"Nouvelle synthèse ajoutée: Graphes"}, stub.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"ops@example.com"}, stub.sent[0].GetHeader("From"))
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{To: "ops@example.com"})
	assert.Error(t, err)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	mem := NewMemorySender()
	mem.FailWith(errors.New("connection refused"))
	b := NewBreakerSender(mem, BreakerConfig{Failures: 2, Timeout: time.Hour}, nil)

	assert.Error(t, b.Send(context.Background(), Message{Subject: "a"}))
	assert.Error(t, b.Send(context.Background(), Message{Subject: "b"}))
	assert.Equal(t, gobreaker.StateOpen, b.State())

	mem.FailWith(nil)
	assert.ErrorIs(t, b.Send(context.Background(), Message{Subject: "c"}), gobreaker.ErrOpenState)
	assert.Empty(t, mem.Messages())
}

func TestDispatcherDeliversAsynchronously(t *testing.T) {
	mem := NewMemorySender()
	results := &outcomes{}
	d := NewDispatcher(mem, DispatcherConfig{OnResult: results.record})
	d.Start(context.Background())
	defer d.Stop()

	d.Dispatch(Message{Subject: "Nouveau message de contact", Body: "Message: salut"})

	require.Eventually(t, func() bool { return len(mem.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Nouveau message de contact", mem.Messages()[0].Subject)
	require.Eventually(t, func() bool { return len(results.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{OutcomeSent}, results.list())
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	mem := NewMemorySender()
	mem.FailWith(errors.New("smtp down"))
	results := &outcomes{}
	d := NewDispatcher(mem, DispatcherConfig{Retries: 1, RetryDelay: time.Millisecond, OnResult: results.record})
	d.Start(context.Background())
	defer d.Stop()

	assert.NotPanics(t, func() { d.Dispatch(Message{Subject: "x"}) })
	require.Eventually(t, func() bool { return len(results.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{OutcomeFailed}, results.list())
}

func TestDispatchBeforeStartDrops(t *testing.T) {
	results := &outcomes{}
	d := NewDispatcher(NewMemorySender(), DispatcherConfig{OnResult: results.record})
	d.Dispatch(Message{Subject: "x"})
	assert.Equal(t, []string{OutcomeDropped}, results.list())
}
