package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"acm-portal/internal/domain"
)

const usersCollection = "users"

// MongoUserRepository guarda usuarios como documentos con credenciales embebidas en "local".
type MongoUserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type userDocument struct {
	ID        string        `bson:"_id"`
	Local     localDocument `bson:"local"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

type localDocument struct {
	Email                string     `bson:"email"`
	Password             string     `bson:"password"`
	FirstName            string     `bson:"firstName,omitempty"`
	LastName             string     `bson:"lastName,omitempty"`
	Classification       string     `bson:"classification,omitempty"`
	ConfirmEmailToken    string     `bson:"confirmEmailToken,omitempty"`
	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty"`
	HasPaidDues          bool       `bson:"hasPaidDues"`
	Verified             bool       `bson:"verified"`
	Resume               string     `bson:"resume,omitempty"`
}

// NewMongoUserRepository crea el repositorio y asegura el indice unico de email.
func NewMongoUserRepository(ctx context.Context, client *mongo.Client, database string) (*MongoUserRepository, error) {
	coll := client.Database(database).Collection(usersCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "local.email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("local_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "local.confirmEmailToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("local_confirm_token"),
		},
		{
			Keys:    bson.D{{Key: "local.resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("local_reset_token"),
		},
	})
	if err != nil {
		return nil, err
	}
	return &MongoUserRepository{client: client, coll: coll}, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.coll.InsertOne(ctx, toDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"local.email": email})
}

func (r *MongoUserRepository) GetByResetToken(ctx context.Context, token string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"local.resetPasswordToken": token})
}

func (r *MongoUserRepository) ConfirmEmail(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrNotFound
	}
	return r.findAndUpdate(ctx,
		bson.M{"local.confirmEmailToken": token},
		bson.M{
			"$set":   bson.M{"local.verified": true, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"local.confirmEmailToken": ""},
		},
	)
}

func (r *MongoUserRepository) SetConfirmToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"local.confirmEmailToken": token, "updatedAt": time.Now().UTC()}},
	)
}

func (r *MongoUserRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.updateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"local.resetPasswordToken":   token,
			"local.resetPasswordExpires": expiresAt,
			"updatedAt":                  time.Now().UTC(),
		}},
	)
}

func (r *MongoUserRepository) ResetPassword(ctx context.Context, id, token, passwordHash string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrNotFound
	}
	return r.findAndUpdate(ctx,
		bson.M{"_id": id, "local.resetPasswordToken": token},
		bson.M{
			"$set":   bson.M{"local.password": passwordHash, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"local.resetPasswordToken": "", "local.resetPasswordExpires": ""},
		},
	)
}

func (r *MongoUserRepository) UpdateResume(ctx context.Context, id, path string) (domain.User, error) {
	return r.findAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"local.resume": path, "updatedAt": time.Now().UTC()}},
	)
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.User, error) {
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": profileSet(patch)})
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return fromDocument(doc), nil
}

func (r *MongoUserRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return fromDocument(doc), nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func profileSet(patch domain.ProfilePatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.FirstName != nil {
		set["local.firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["local.lastName"] = *patch.LastName
	}
	if patch.Classification != nil {
		set["local.classification"] = *patch.Classification
	}
	return set
}

func toDocument(u domain.User) userDocument {
	return userDocument{
		ID: u.ID,
		Local: localDocument{
			Email:                u.Email,
			Password:             u.PasswordHash,
			FirstName:            u.FirstName,
			LastName:             u.LastName,
			Classification:       u.Classification,
			ConfirmEmailToken:    u.ConfirmEmailToken,
			ResetPasswordToken:   u.ResetPasswordToken,
			ResetPasswordExpires: u.ResetPasswordExpires,
			HasPaidDues:          u.HasPaidDues,
			Verified:             u.Verified,
			Resume:               u.Resume,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromDocument(d userDocument) domain.User {
	return domain.User{
		ID:                   d.ID,
		Email:                d.Local.Email,
		PasswordHash:         d.Local.Password,
		FirstName:            d.Local.FirstName,
		LastName:             d.Local.LastName,
		Classification:       d.Local.Classification,
		ConfirmEmailToken:    d.Local.ConfirmEmailToken,
		ResetPasswordToken:   d.Local.ResetPasswordToken,
		ResetPasswordExpires: d.Local.ResetPasswordExpires,
		HasPaidDues:          d.Local.HasPaidDues,
		Verified:             d.Local.Verified,
		Resume:               d.Local.Resume,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}
