package push

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
)

// activeCustomerWindow separates "active" from "inactive" customers by their
// last order date
const activeCustomerWindow = 90 * 24 * time.Hour

// Resolver computes the exact subscription set a dispatch attempt targets
type Resolver struct {
	Subscriptions databases.SubscriptionDatabase
	Users         databases.UserDatabase
	Deliveries    databases.DeliveryDatabase
}

// Resolve applies the base active filter, the campaign's channel list, the
// audience-segment predicate, and - in retry mode - narrows to subscriptions
// whose prior delivery failed. Subscriptions with no delivery record are
// excluded from a retry.
func (r *Resolver) Resolve(ctx context.Context, campaign *models.Campaign, retryFailedOnly bool) ([]models.PushSubscription, error) {
	filter := bson.M{"isActive": true}
	if len(campaign.Channels) > 0 {
		filter["platform"] = bson.M{"$in": campaign.Channels}
	}

	subs, err := r.Subscriptions.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	users, err := r.loadOwners(ctx, subs)
	if err != nil {
		return nil, err
	}

	matched := make([]models.PushSubscription, 0, len(subs))
	for _, sub := range subs {
		if matchesAudience(campaign, sub, users[sub.UserID]) {
			matched = append(matched, sub)
		}
	}

	if !retryFailedOnly {
		return matched, nil
	}

	failedIDs, err := r.Deliveries.FailedSubscriptionIDs(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	failed := make(map[primitive.ObjectID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}

	retryable := make([]models.PushSubscription, 0, len(matched))
	for _, sub := range matched {
		if failed[sub.ID] {
			retryable = append(retryable, sub)
		}
	}
	return retryable, nil
}

// loadOwners fetches the owning user documents for the subscriptions that
// have one, keyed by user id
func (r *Resolver) loadOwners(ctx context.Context, subs []models.PushSubscription) (map[string]*models.User, error) {
	ids := make([]string, 0, len(subs))
	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if sub.UserID == "" || seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		ids = append(ids, sub.UserID)
	}

	owners := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	users, err := r.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for i := range users {
		owners[users[i].ID] = &users[i]
	}
	return owners, nil
}

// matchesAudience is the segment predicate, one branch per enum value. A
// segment that needs owner metadata never matches an anonymous subscription;
// an unknown segment matches nothing rather than silently widening to "all".
func matchesAudience(campaign *models.Campaign, sub models.PushSubscription, owner *models.User) bool {
	switch campaign.Audience {
	case models.AudienceAll:
		return true
	case models.AudienceAdmins:
		return owner != nil && owner.IsAdmin
	case models.AudienceActive:
		return owner != nil && owner.LastOrderAt != nil &&
			time.Since(owner.LastOrderAt.Time()) <= activeCustomerWindow
	case models.AudienceInactive:
		return owner != nil &&
			(owner.LastOrderAt == nil || time.Since(owner.LastOrderAt.Time()) > activeCustomerWindow)
	case models.AudienceCategory:
		if owner == nil || campaign.CategorySlug == "" {
			return false
		}
		for _, slug := range owner.CategoryInterests {
			if slug == campaign.CategorySlug {
				return true
			}
		}
		return false
	case models.AudienceAbandonedCart:
		return owner != nil && owner.HasAbandonedCart
	default:
		zap.S().Warnw("unknown audience segment, matching nothing",
			"audience", campaign.Audience,
			"campaignId", campaign.ID.Hex(),
		)
		return false
	}
}
