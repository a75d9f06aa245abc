package cmd

import (
	"context"
	"io"

	"github.com/inovacc/cookbook/internal/collection"
	"github.com/inovacc/cookbook/internal/editor"
	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/notify"
)

// client bundles the pieces a client command works with. Close releases the
// store and flushes pending notifications.
type client struct {
	gw         gateway.Gateway
	dispatcher *notify.Dispatcher
	store      *collection.Store
	reconciler *collection.Reconciler
	rater      *collection.RatingUpdater
}

// newClient wires the HTTP gateway, notification dispatcher and collection
// store from the loaded configuration. With console set, notifications are
// printed to out.
func newClient(out io.Writer, console bool) *client {
	gw := gateway.NewHTTPClient(cfg.Endpoint,
		gateway.WithTimeout(requestTimeout()),
		gateway.WithLogger(logger))

	d := notify.NewDispatcher(false, logger)
	if console {
		d.Register(notify.NewConsoleSender(out, plainOutput(out)))
	}

	if cfg.SlackWebhook != "" {
		if err := notify.ValidateWebhookURL(cfg.SlackWebhook); err != nil {
			logger.Warn("slack notifications disabled", "error", err)
		} else {
			d.Register(notify.NewSlackSender(notify.WithWebhook(cfg.SlackWebhook)))
		}
	}

	st := collection.NewStore(logger)

	return &client{
		gw:         gw,
		dispatcher: d,
		store:      st,
		reconciler: collection.NewReconciler(st, gw, d, logger),
		rater:      collection.NewRatingUpdater(st, gw, d, logger),
	}
}

// editor returns a recipe editor bound to the client's gateway.
func (c *client) editor() *editor.Editor {
	return editor.New(c.gw, c.dispatcher, logger)
}

// load fetches the collection once.
func (c *client) load(ctx context.Context) error {
	return c.reconciler.Reconcile(ctx)
}

func (c *client) Close() {
	c.store.Close()
	c.store.Wait()
	c.dispatcher.Wait()
}
