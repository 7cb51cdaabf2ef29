package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password,omitempty"`
	RefreshToken *string            `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// the auth middleware reads users through this projection
var publicUserProjection = bson.M{"password": 0, "refreshToken": 0}

type UsersRepo struct {
	coll *mongo.Collection
	obs  observability.DBObserver
}

func NewUsersRepo(db *mongo.Database, obs observability.DBObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopDBObserver{}
	}
	return &UsersRepo{coll: db.Collection(usersCollection), obs: obs}
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      p.Name,
		Email:     p.Email,
		Password:  p.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var doc userDoc

	err := r.obs.ObserveDB("users.get_by_email", func() error {
		return r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("find user by email: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) GetPublicByID(ctx context.Context, id string) (user.Public, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.Public{}, user.ErrNotFound
	}

	var doc userDoc
	err = r.obs.ObserveDB("users.get_public", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(publicUserProjection)).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.Public{}, user.ErrNotFound
		}
		return user.Public{}, fmt.Errorf("find user by id: %w", err)
	}

	return doc.toDomain().Public(), nil
}

func (r *UsersRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, "users.set_refresh", id, bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	})
}

// UnsetRefreshToken removes the field so that "no session" is distinguishable
// from an empty token.
func (r *UsersRepo) UnsetRefreshToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, "users.unset_refresh", id, bson.M{
		"$unset": bson.M{"refreshToken": 1},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UsersRepo) updateByID(ctx context.Context, op, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.ErrNotFound
	}

	var res *mongo.UpdateResult
	err = r.obs.ObserveDB(op, func() error {
		var err error
		res, err = r.coll.UpdateByID(ctx, oid, update)
		return err
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
