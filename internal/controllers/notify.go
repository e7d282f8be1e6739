package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/push"
)

// NotifyController fans catalog changes out to the users tracking an item
type NotifyController struct {
	progress ProgressStore
	subs     SubscriptionStore
	sender   PushSender
	logger   *logrus.Logger
}

// NewNotifyController creates a new notify controller
func NewNotifyController(progress ProgressStore, subs SubscriptionStore, sender PushSender, logger *logrus.Logger) *NotifyController {
	return &NotifyController{
		progress: progress,
		subs:     subs,
		sender:   sender,
		logger:   logger,
	}
}

// NotifyFollowers sends one notification per catalog change to every
// subscription of every user tracking the item. Users who gave the item
// up are skipped, and subscriptions the endpoint reports gone are pruned.
func (n *NotifyController) NotifyFollowers(ctx context.Context, item *models.CatalogItem, changes []Change) {
	if len(changes) == 0 {
		return
	}

	followers, err := n.progress.ProgressByItem(item.OriginalID, item.Type)
	if err != nil {
		n.logger.WithError(err).WithField("item_id", item.OriginalID).Error("Failed to list item followers")
		return
	}

	for _, follower := range followers {
		if follower.Status == models.StatusGiveUp {
			continue
		}

		subs, err := n.subs.Subscriptions(follower.UserID)
		if err != nil {
			n.logger.WithError(err).WithField("user_id", follower.UserID).Error("Failed to load subscriptions")
			continue
		}

		for _, change := range changes {
			payload := changePayload(item, change)
			for _, sub := range subs {
				if err := n.sender.Send(ctx, sub, payload); err != nil {
					if errors.Is(err, push.ErrSubscriptionGone) {
						if err := n.subs.RemoveSubscription(follower.UserID, sub.Endpoint); err != nil {
							n.logger.WithError(err).Warn("Failed to prune dead subscription")
						} else {
							n.logger.WithField("user_id", follower.UserID).Info("Pruned dead push subscription")
						}
						continue
					}
					n.logger.WithError(err).WithField("user_id", follower.UserID).Warn("Failed to send push notification")
				}
			}
		}
	}
}

func changePayload(item *models.CatalogItem, change Change) push.Payload {
	payload := push.Payload{
		Title: item.Title,
		Icon:  item.Image["poster"],
	}

	switch change.Kind {
	case ChangeNewSeason:
		payload.Body = fmt.Sprintf("New season: %s", change.SeasonTitle)
	case ChangeNewEpisode:
		payload.Body = fmt.Sprintf("%s now has %d episodes", change.SeasonTitle, change.EpisodeNumber)
	case ChangeNewTome:
		payload.Body = fmt.Sprintf("New tome %d/%d: %s", change.TomeIndex, change.TomeCount, change.TomeTitle)
	default:
		payload.Body = "Catalog update"
	}

	return payload
}
