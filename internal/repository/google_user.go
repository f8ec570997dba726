package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omaju/auth-service/internal/model"
)

// GoogleUserRepository defines the database operations for the Google
// identity variant.
type GoogleUserRepository interface {
	CreateGoogleUser(ctx context.Context, user *model.GoogleUser) (*model.GoogleUser, error)
	GetGoogleUserByEmail(ctx context.Context, email string) (*model.GoogleUser, error)
	GetGoogleUserByGoogleID(ctx context.Context, googleID string) (*model.GoogleUser, error)
	UpdateLastLogin(ctx context.Context, id bson.ObjectID) error
}

const googleUserCollection = "google_users"

type googleUserMongoRepository struct {
	db *mongo.Database
}

func NewGoogleUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) GoogleUserRepository {
	collection := db.Collection(googleUserCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create google user indexes")
	}

	return &googleUserMongoRepository{db: db}
}

func (r *googleUserMongoRepository) CreateGoogleUser(
	ctx context.Context,
	user *model.GoogleUser,
) (*model.GoogleUser, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(googleUserCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *googleUserMongoRepository) GetGoogleUserByEmail(
	ctx context.Context,
	email string,
) (*model.GoogleUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *googleUserMongoRepository) GetGoogleUserByGoogleID(
	ctx context.Context,
	googleID string,
) (*model.GoogleUser, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *googleUserMongoRepository) UpdateLastLogin(ctx context.Context, id bson.ObjectID) error {
	_, err := r.db.Collection(googleUserCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

func (r *googleUserMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.GoogleUser, error) {
	result := r.db.Collection(googleUserCollection).FindOne(ctx, filter)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var user model.GoogleUser
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
