// Package calendar integrates the external calendar: credential storage and
// the free/busy query the availability path consumes. OAuth consent and token
// refresh live in a separate admin service; this package only reads what that
// service persisted.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "agendo/internal/appointments/errors"
	"agendo/pkg/config"
	"agendo/pkg/sealer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CredentialsCollection = "Calendar_credentials"

// Credential is one provider's external calendar connection. The access
// token is sealed at rest when a sealer key is configured.
type Credential struct {
	ProviderID  string    `bson:"_id"`
	AccessToken string    `bson:"access_token"`
	CalendarID  string    `bson:"calendar_id"`
	Connected   bool      `bson:"connected"`
	ExpiresAt   time.Time `bson:"expires_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type CredentialRepository interface {
	// FindByProvider returns the connection for a provider with the access
	// token unsealed, or ErrCalendarNotConnected when the provider has no
	// active connection.
	FindByProvider(ctx context.Context, providerID string) (*Credential, error)
}

type mongoCredentialRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	sealer     *sealer.Sealer
}

func NewMongoCredentialRepository(cfg *config.Config, s *sealer.Sealer) CredentialRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCredentialRepository{
		cfg:        cfg,
		collection: db.Collection(CredentialsCollection),
		sealer:     s,
	}
}

func (r *mongoCredentialRepository) FindByProvider(ctx context.Context, providerID string) (*Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var cred Credential
	err := r.collection.FindOne(ctx, bson.M{"_id": providerID}).Decode(&cred)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrCalendarNotConnected
		}
		return nil, fmt.Errorf("failed to load calendar credential: %w", err)
	}

	if !cred.Connected {
		return nil, appterrors.ErrCalendarNotConnected
	}
	if !cred.ExpiresAt.IsZero() && cred.ExpiresAt.Before(time.Now()) {
		return nil, appterrors.ErrCalendarNotConnected
	}

	if r.sealer != nil {
		token, err := r.sealer.Open(cred.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal calendar token: %w", err)
		}
		cred.AccessToken = token
	}

	if cred.CalendarID == "" {
		cred.CalendarID = "primary"
	}

	return &cred, nil
}
