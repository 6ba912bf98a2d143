package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	FullName             string             `bson:"fullName"`
	Email                string             `bson:"email"`
	Phone                string             `bson:"phone,omitempty"`
	Password             string             `bson:"password"`
	IsEmailVerified      bool               `bson:"isEmailVerified"`
	Roles                []string           `bson:"roles"`
	Wishlist             []wishlistDoc      `bson:"wishlist"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

// wishlistDoc keeps the product reference raw: older documents hold it as an
// ObjectID, a hex string or an embedded product.
type wishlistDoc struct {
	Product bson.RawValue `bson:"product"`
	AddedAt time.Time     `bson:"addedAt"`
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:             d.ID.Hex(),
		FullName:       d.FullName,
		Email:          d.Email,
		Phone:          d.Phone,
		PasswordHash:   d.Password,
		Roles:          d.Roles,
		EmailVerified:  d.IsEmailVerified,
		Wishlist:       make([]domain.WishlistEntry, 0, len(d.Wishlist)),
		ResetTokenHash: d.ResetPasswordToken,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.ResetPasswordExpires != nil {
		u.ResetExpiresAt = *d.ResetPasswordExpires
	}
	for _, w := range d.Wishlist {
		ref := productRef(w.Product)
		if ref == "" {
			continue
		}
		u.Wishlist = append(u.Wishlist, domain.WishlistEntry{ProductID: ref, AddedAt: w.AddedAt})
	}
	return u
}

// productRef normalises a stored wishlist reference to its hex string form.
func productRef(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return strings.TrimSpace(v.StringValue())
	case bsontype.EmbeddedDocument:
		if id, err := v.Document().LookupErr("_id"); err == nil {
			return productRef(id)
		}
	}
	return ""
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		FullName:        user.FullName,
		Email:           user.Email,
		Phone:           user.Phone,
		Password:        user.PasswordHash,
		IsEmailVerified: user.EmailVerified,
		Roles:           user.Roles,
		Wishlist:        []wishlistDoc{},
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "phone") {
				return nil, domain.ErrPhoneTaken
			}
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.Wishlist = []domain.WishlistEntry{}
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
	})
}

func (r *UserRepository) SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"resetPasswordToken":   tokenHash,
			"resetPasswordExpires": expiresAt,
			"updatedAt":            time.Now().UTC(),
		},
	})
}

func (r *UserRepository) ConsumePasswordReset(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidResetToken
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                  oid,
		"resetPasswordToken":   tokenHash,
		"resetPasswordExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": now},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("consume password reset: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidResetToken
	}
	return nil
}

func (r *UserRepository) AddWishlistEntry(ctx context.Context, userID string, entry domain.WishlistEntry) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}
	pid, err := primitive.ObjectIDFromHex(entry.ProductID)
	if err != nil {
		return false, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id": uid,
		"wishlist": bson.M{"$not": bson.M{"$elemMatch": bson.M{"$or": refVariants(pid)}}},
	}
	update := bson.M{
		"$push": bson.M{"wishlist": bson.M{"product": pid, "addedAt": entry.AddedAt}},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("push wishlist entry: %w", err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	// Either the user is missing or the product was already present.
	if _, err := r.FindByID(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *UserRepository) RemoveWishlistEntry(ctx context.Context, userID, productID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$pull": bson.M{"wishlist": bson.M{"$or": refVariants(pid)}}},
	)
	if err != nil {
		return false, fmt.Errorf("pull wishlist entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

// refVariants matches every stored representation of a product reference.
func refVariants(pid primitive.ObjectID) bson.A {
	return bson.A{
		bson.M{"product": pid},
		bson.M{"product": pid.Hex()},
		bson.M{"product._id": pid},
	}
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
