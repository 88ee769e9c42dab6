// Package repository reads provider configuration. Providers are managed by
// an external admin surface; this service only ever reads them.
package repository

import (
	"context"
	"errors"
	"fmt"

	appterrors "agendo/internal/appointments/errors"
	"agendo/pkg/config"
	"agendo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Providers"

type ProviderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Provider, error)
}

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var provider model.Provider
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	if provider.Policy.UTCOffset == "" {
		provider.Policy.UTCOffset = r.cfg.UTCOffset
	}

	return &provider, nil
}
