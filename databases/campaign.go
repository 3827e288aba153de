package databases

// go generate: mockery --name CampaignDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/models"
)

const campaignCollectionName = "campaigns"

// CampaignDatabase contains the methods to use with the campaign database
type CampaignDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Campaign, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Campaign, error)
	InsertOne(context.Context, models.Campaign) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type campaignDatabase struct {
	db DatabaseHelper
}

// NewCampaignDatabase initializes a new instance of campaign database with the provided db connection
func NewCampaignDatabase(db DatabaseHelper) CampaignDatabase {
	return &campaignDatabase{
		db: db,
	}
}

func (c *campaignDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := c.db.Collection(campaignCollectionName).FindOne(ctx, filter, opts...).Decode(campaign)
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

func (c *campaignDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	cur, err := c.db.Collection(campaignCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (c *campaignDatabase) InsertOne(ctx context.Context, campaign models.Campaign) (InsertOneResultHelper, error) {
	return c.db.Collection(campaignCollectionName).InsertOne(ctx, campaign)
}

func (c *campaignDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(campaignCollectionName).UpdateOne(ctx, filter, update, opts...)
}
