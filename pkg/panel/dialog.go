package panel

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Dialog shows results to the user and asks for confirmation.
type Dialog interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	// Confirm blocks until the user answers or ctx ends.
	Confirm(ctx context.Context, msg string) (bool, error)
}

// Publisher delivers outbound messages to every attached UI.
type Publisher interface {
	Publish(msg Outbound)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Outbound)

// Publish calls f(msg).
func (f PublisherFunc) Publish(msg Outbound) { f(msg) }

// LogDialog reports through a logger and answers every confirmation with
// Accept. The CLI uses it for scripted commands.
type LogDialog struct {
	Logger *log.Logger
	Accept bool
}

func (d LogDialog) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default()
	}
	return d.Logger
}

func (d LogDialog) Info(msg string)  { d.logger().Info(msg) }
func (d LogDialog) Warn(msg string)  { d.logger().Warn(msg) }
func (d LogDialog) Error(msg string) { d.logger().Error(msg) }

func (d LogDialog) Confirm(_ context.Context, msg string) (bool, error) {
	d.logger().Debug("confirm", "question", msg, "answer", d.Accept)
	return d.Accept, nil
}

// Confirmations tracks confirm requests awaiting a confirmReply.
type Confirmations struct {
	mu      sync.Mutex
	pending map[string]chan bool
}

// NewConfirmations returns an empty registry.
func NewConfirmations() *Confirmations {
	return &Confirmations{pending: make(map[string]chan bool)}
}

// Ask publishes a confirm message and waits for [Confirmations.Resolve]
// with the same id.
func (c *Confirmations) Ask(ctx context.Context, pub Publisher, msg string) (bool, error) {
	id := uuid.NewString()
	ch := make(chan bool, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	pub.Publish(ConfirmMessage(id, msg))
	select {
	case ok := <-ch:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve answers a pending request. Unknown ids are ignored and
// reported as false.
func (c *Confirmations) Resolve(id string, accepted bool) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- accepted:
	default:
	}
	return true
}

// Len returns the number of unanswered requests.
func (c *Confirmations) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// RemoteDialog turns dialog calls into notify and confirm messages.
type RemoteDialog struct {
	Out      Publisher
	Confirms *Confirmations
}

func (d RemoteDialog) Info(msg string)  { d.Out.Publish(NotifyMessage(LevelInfo, msg)) }
func (d RemoteDialog) Warn(msg string)  { d.Out.Publish(NotifyMessage(LevelWarning, msg)) }
func (d RemoteDialog) Error(msg string) { d.Out.Publish(NotifyMessage(LevelError, msg)) }

func (d RemoteDialog) Confirm(ctx context.Context, msg string) (bool, error) {
	return d.Confirms.Ask(ctx, d.Out, msg)
}
