package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
	"golang.org/x/sync/singleflight"
)

// maxFetches bounds how many back-to-back fetches one reconcile runs while
// the collection keeps being marked stale mid-fetch.
const maxFetches = 2

// errNoID is returned for operations that need a stored recipe.
var errNoID = errors.New("recipe has no id")

// Reconciler refreshes a Store from the gateway after mutations. At most one
// fetch per store is in flight at any time.
type Reconciler struct {
	store    *Store
	gw       gateway.Gateway
	notifier notify.Notifier
	log      *slog.Logger

	group singleflight.Group
}

// NewReconciler binds a reconciler to store and gw.
func NewReconciler(store *Store, gw gateway.Gateway, n notify.Notifier, log *slog.Logger) *Reconciler {
	if n == nil {
		n = notify.Discard
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{store: store, gw: gw, notifier: n, log: log}
}

// MarkStale flags the collection and starts a reconcile in the background.
// Use Store.Wait to wait for it.
func (r *Reconciler) MarkStale() {
	r.store.markStale()

	done, err := r.store.begin()
	if err != nil {
		return
	}

	go func() {
		defer done()

		if err := r.Reconcile(r.store.ctx); err != nil && !errors.Is(err, ErrStoreClosed) {
			r.log.Warn("collection: background refresh failed", slog.Any("error", err))
		}
	}()
}

// Reconcile fetches the full list and replaces the collection with it.
// Callers arriving while a fetch is running share its result. A result that
// arrives after Close is discarded and ErrStoreClosed is returned.
//
// ctx only bounds how long this caller waits; the shared fetch itself is
// bound to the store's lifetime.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	if r.store.Closed() {
		return ErrStoreClosed
	}

	ch := r.group.DoChan("readAll", func() (any, error) {
		return nil, r.fetch()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) fetch() error {
	done, err := r.store.begin()
	if err != nil {
		return err
	}
	defer done()

	live := r.store.ctx

	for range maxFetches {
		gen := r.store.generation()

		recipes, err := r.gw.ReadAll(live)
		if live.Err() != nil {
			r.log.Debug("collection: dropping fetch result after close")
			return ErrStoreClosed
		}

		if err != nil {
			r.notifier.Notify(live, notify.NewEvent(notify.EventRefresh).
				WithError(err.Error()).
				WithTransient(gateway.IsTransient(err)))

			return fmt.Errorf("refresh recipes: %w", err)
		}

		current, err := r.store.replace(recipes, gen)
		if err != nil {
			return err
		}

		r.log.Debug("collection: replaced", slog.Int("recipes", len(recipes)), slog.Bool("current", current))

		if current {
			return nil
		}
	}

	return nil
}

// Delete removes recipe on the server. Its card shows loading while the
// call runs. On success the collection is marked stale.
func (r *Reconciler) Delete(ctx context.Context, recipe model.Recipe) error {
	if !recipe.Persisted() {
		return fmt.Errorf("delete %s: %w", recipe.DisplayName(), errNoID)
	}

	if r.store.Closed() {
		return ErrStoreClosed
	}

	r.store.setCardLoading(recipe.ID, true)
	err := r.gw.Delete(ctx, recipe.ID)
	r.store.setCardLoading(recipe.ID, false)

	event := notify.NewEvent(notify.EventDeleted).WithRecipe(recipe.DisplayName(), recipe.ID)

	if err != nil {
		r.log.Warn("collection: delete failed", slog.String("id", recipe.ID), slog.Any("error", err))
		r.notifier.Notify(ctx, event.WithError(err.Error()).WithTransient(gateway.IsTransient(err)))

		return fmt.Errorf("delete %s: %w", recipe.DisplayName(), err)
	}

	r.MarkStale()
	r.notifier.Notify(ctx, event)

	return nil
}
