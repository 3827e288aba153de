package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/databases"
	"github.com/minnowkids/minnow-push-api/models"
	"github.com/minnowkids/minnow-push-api/push"
)

const scheduledCampaignJob = "scheduled_campaign_job"

// Dispatcher launches one dispatch attempt for a campaign
type Dispatcher interface {
	Dispatch(ctx context.Context, campaignID primitive.ObjectID, retryFailedOnly bool) (*push.DispatchResult, error)
}

// Scheduler launches scheduled campaigns when their schedule time arrives
type Scheduler struct {
	cron       *cron.Cron
	CDB        databases.CampaignDatabase
	LockDB     databases.SchedulerLockDatabase
	Engine     Dispatcher
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cDB databases.CampaignDatabase, lockDB databases.SchedulerLockDatabase, engine Dispatcher) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%s", uuid.New().String())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		CDB:        cDB,
		LockDB:     lockDB,
		Engine:     engine,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Check for due campaigns every minute
	_, err := s.cron.AddFunc("* * * * *", s.DispatchDueCampaigns)
	if err != nil {
		zap.S().Errorw("failed to register scheduled campaign job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Campaign scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Campaign scheduler stopped")
}

// DispatchDueCampaigns finds campaigns whose schedule time has arrived and
// dispatches each one. A Mongo-backed lock keeps the job on a single instance.
func (s *Scheduler) DispatchDueCampaigns() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, scheduledCampaignJob, s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for scheduled campaign job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Scheduled campaign job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, scheduledCampaignJob, s.instanceID)

	now := primitive.NewDateTimeFromTime(time.Now())
	dueFilter := bson.M{
		"status":      models.CampaignStatusScheduled,
		"scheduleFor": bson.M{"$lte": now},
	}

	due, err := s.CDB.Find(ctx, dueFilter)
	if err != nil {
		zap.S().Errorw("failed to find due campaigns", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	zap.S().Infow("Dispatching due campaigns", "count", len(due), "instance", s.instanceID)

	for _, campaign := range due {
		result, err := s.Engine.Dispatch(ctx, campaign.ID, false)
		if err != nil {
			zap.S().Errorw("scheduled campaign dispatch failed",
				"campaignId", campaign.ID.Hex(),
				"error", err,
			)
			continue
		}
		zap.S().Infow("scheduled campaign dispatched",
			"campaignId", campaign.ID.Hex(),
			"status", result.Status,
			"delivered", result.Delivered,
			"failed", result.Failed,
		)
	}
}
