package databases

// go generate: mockery --name TemplateDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minnowkids/minnow-push-api/models"
)

const templateCollectionName = "pushtemplates"

// TemplateDatabase contains the methods to use with the push template database
type TemplateDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.PushTemplate, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.PushTemplate, error)
	InsertOne(context.Context, models.PushTemplate) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type templateDatabase struct {
	db DatabaseHelper
}

// NewTemplateDatabase initializes a new instance of template database with the provided db connection
func NewTemplateDatabase(db DatabaseHelper) TemplateDatabase {
	return &templateDatabase{
		db: db,
	}
}

func (t *templateDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.PushTemplate, error) {
	tmpl := &models.PushTemplate{}
	err := t.db.Collection(templateCollectionName).FindOne(ctx, filter, opts...).Decode(tmpl)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (t *templateDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PushTemplate, error) {
	var tmpls []models.PushTemplate
	cur, err := t.db.Collection(templateCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&tmpls); err != nil {
		return nil, err
	}
	return tmpls, nil
}

func (t *templateDatabase) InsertOne(ctx context.Context, tmpl models.PushTemplate) (InsertOneResultHelper, error) {
	return t.db.Collection(templateCollectionName).InsertOne(ctx, tmpl)
}

func (t *templateDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return t.db.Collection(templateCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (t *templateDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return t.db.Collection(templateCollectionName).DeleteOne(ctx, filter, opts...)
}
