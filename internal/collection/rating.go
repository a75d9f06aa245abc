package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
)

// RatingUpdater changes a single recipe's star rating without refreshing
// the list.
type RatingUpdater struct {
	store    *Store
	gw       gateway.Gateway
	notifier notify.Notifier
	log      *slog.Logger
}

// NewRatingUpdater binds an updater to store and gw.
func NewRatingUpdater(store *Store, gw gateway.Gateway, n notify.Notifier, log *slog.Logger) *RatingUpdater {
	if n == nil {
		n = notify.Discard
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &RatingUpdater{store: store, gw: gw, notifier: n, log: log}
}

// Select shows rating on the card at once and then sends the whole record
// with the new rating. A failed update is reported and returned, but the
// shown rating is not rolled back.
func (u *RatingUpdater) Select(ctx context.Context, recipe model.Recipe, rating int) error {
	if err := model.CheckRating(rating); err != nil {
		return err
	}

	if !recipe.Persisted() {
		return fmt.Errorf("rate %s: %w", recipe.DisplayName(), errNoID)
	}

	updated := recipe.WithRating(rating)
	u.store.setDisplayedRating(recipe.ID, rating)

	event := notify.NewEvent(notify.EventRated).WithRecipe(recipe.DisplayName(), recipe.ID).WithRating(rating)

	if err := u.gw.Update(ctx, recipe.ID, updated); err != nil {
		u.log.Warn("collection: rating update failed",
			slog.String("id", recipe.ID),
			slog.Int("rating", rating),
			slog.Any("error", err))
		u.notifier.Notify(ctx, event.WithError(err.Error()).WithTransient(gateway.IsTransient(err)))

		return fmt.Errorf("rate %s: %w", recipe.DisplayName(), err)
	}

	u.notifier.Notify(ctx, event)

	return nil
}
