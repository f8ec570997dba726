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

// EmailUserRepository defines the database operations for the email/password
// identity variant.
type EmailUserRepository interface {
	CreateEmailUser(ctx context.Context, user *model.EmailUser) (*model.EmailUser, error)
	GetEmailUserByEmail(ctx context.Context, email string) (*model.EmailUser, error)

	// UpdateLoginState persists a lockout transition computed by the
	// credential verifier. A nil lockUntil clears the lock field.
	UpdateLoginState(ctx context.Context, id bson.ObjectID, attempts int, lockUntil *time.Time) error

	// ResetLoginState clears the failure counter and lock after a
	// successful login.
	ResetLoginState(ctx context.Context, id bson.ObjectID) error

	UpdateLastLogin(ctx context.Context, id bson.ObjectID) error
}

const emailUserCollection = "email_users"

type emailUserMongoRepository struct {
	db *mongo.Database
}

// NewEmailUserMongoRepository creates the email-user repository and ensures
// its unique indexes. Email uniqueness here is per-collection only; the
// cross-collection invariant is the resolver's job.
func NewEmailUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) EmailUserRepository {
	collection := db.Collection(emailUserCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create email user indexes")
	}

	return &emailUserMongoRepository{db: db}
}

func (r *emailUserMongoRepository) CreateEmailUser(
	ctx context.Context,
	user *model.EmailUser,
) (*model.EmailUser, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(emailUserCollection).InsertOne(ctx, user)
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

func (r *emailUserMongoRepository) GetEmailUserByEmail(
	ctx context.Context,
	email string,
) (*model.EmailUser, error) {
	result := r.db.Collection(emailUserCollection).FindOne(ctx, bson.M{"email": email})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var user model.EmailUser
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *emailUserMongoRepository) UpdateLoginState(
	ctx context.Context,
	id bson.ObjectID,
	attempts int,
	lockUntil *time.Time,
) error {
	update := bson.M{
		"$set": bson.M{
			"login_attempts": attempts,
			"lock_until":     lockUntil,
			"updated_at":     time.Now(),
		},
	}

	_, err := r.db.Collection(emailUserCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *emailUserMongoRepository) ResetLoginState(ctx context.Context, id bson.ObjectID) error {
	return r.UpdateLoginState(ctx, id, 0, nil)
}

func (r *emailUserMongoRepository) UpdateLastLogin(ctx context.Context, id bson.ObjectID) error {
	_, err := r.db.Collection(emailUserCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now(), "updated_at": time.Now()}},
	)
	return err
}
