package repository

import (
	"context"
	"time"

	"agendo/pkg/config"
	"agendo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentLockRepository provides operations for advisory slot locks
type AppointmentLockRepository interface {
	Create(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoAppointmentLockRepository struct {
	collection *mongo.Collection
}

func NewAppointmentLockRepository(cfg *config.Config) AppointmentLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentLockRepository{
		collection: db.Collection("Appointment_locks"),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoAppointmentLockRepository) Create(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoAppointmentLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
