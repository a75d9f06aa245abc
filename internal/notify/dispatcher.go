package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

var _ Notifier = (*Dispatcher)(nil)

// sendTimeout bounds a single sender call.
const sendTimeout = 15 * time.Second

// Dispatcher fans events out to the registered senders. Senders are called
// in registration order; one sender failing or panicking does not stop the
// others.
type Dispatcher struct {
	mu      sync.RWMutex
	senders []Sender

	async bool
	log   *slog.Logger
	wg    sync.WaitGroup
}

// NewDispatcher returns an empty dispatcher. With async set every sender
// runs on its own goroutine and Wait blocks until they are done.
func NewDispatcher(async bool, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Dispatcher{async: async, log: log}
}

// Register adds sender, replacing a registered sender with the same name.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i := d.indexOf(sender.Name()); i >= 0 {
		d.senders[i] = sender
		return
	}

	d.senders = append(d.senders, sender)
}

// Unregister drops the sender called name, if any.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i := d.indexOf(name); i >= 0 {
		d.senders = slices.Delete(slices.Clone(d.senders), i, i+1)
	}
}

// Notify implements Notifier.
func (d *Dispatcher) Notify(ctx context.Context, event *Event) {
	d.Dispatch(ctx, event)
}

// Dispatch delivers event to every sender. Delivery outlives cancellation
// of ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) {
	ctx = context.WithoutCancel(ctx)

	for _, sender := range d.Senders() {
		if !d.async {
			d.deliver(ctx, sender, event)
			continue
		}

		d.wg.Go(func() { d.deliver(ctx, sender, event) })
	}
}

// Wait blocks until every asynchronous delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// HasSenders reports whether any sender is registered.
func (d *Dispatcher) HasSenders() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.senders) > 0
}

// Senders returns the registered senders in order.
func (d *Dispatcher) Senders() []Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.senders)
}

func (d *Dispatcher) deliver(ctx context.Context, sender Sender, event *Event) {
	log := d.log.With(slog.String("sender", sender.Name()), slog.String("event", event.Type))

	defer func() {
		if r := recover(); r != nil {
			log.Error("notify: sender panicked", slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := sender.Send(ctx, event); err != nil {
		log.Warn("notify: delivery failed", slog.Any("error", err))
	}
}

func (d *Dispatcher) indexOf(name string) int {
	return slices.IndexFunc(d.senders, func(s Sender) bool { return s.Name() == name })
}
