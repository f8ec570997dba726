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

// GithubUserRepository defines the database operations for the GitHub
// identity variant.
type GithubUserRepository interface {
	CreateGithubUser(ctx context.Context, user *model.GithubUser) (*model.GithubUser, error)
	GetGithubUserByEmail(ctx context.Context, email string) (*model.GithubUser, error)
	GetGithubUserByGithubID(ctx context.Context, githubID string) (*model.GithubUser, error)
	UpdateLastLogin(ctx context.Context, id bson.ObjectID) error
}

const githubUserCollection = "github_users"

type githubUserMongoRepository struct {
	db *mongo.Database
}

func NewGithubUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) GithubUserRepository {
	collection := db.Collection(githubUserCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "github_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create github user indexes")
	}

	return &githubUserMongoRepository{db: db}
}

func (r *githubUserMongoRepository) CreateGithubUser(
	ctx context.Context,
	user *model.GithubUser,
) (*model.GithubUser, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(githubUserCollection).InsertOne(ctx, user)
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

func (r *githubUserMongoRepository) GetGithubUserByEmail(
	ctx context.Context,
	email string,
) (*model.GithubUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *githubUserMongoRepository) GetGithubUserByGithubID(
	ctx context.Context,
	githubID string,
) (*model.GithubUser, error) {
	return r.findOne(ctx, bson.M{"github_id": githubID})
}

func (r *githubUserMongoRepository) UpdateLastLogin(ctx context.Context, id bson.ObjectID) error {
	_, err := r.db.Collection(githubUserCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

func (r *githubUserMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.GithubUser, error) {
	result := r.db.Collection(githubUserCollection).FindOne(ctx, filter)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var user model.GithubUser
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
