package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

const collectionCarts = "carts"

type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(collectionCarts)}
}

type cartDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	Items     []cartItemDoc      `bson:"items"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type cartItemDoc struct {
	ProductID primitive.ObjectID `bson:"productId"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Image     string             `bson:"image"`
	Quantity  int                `bson:"quantity"`
}

func (d *cartDoc) toDomain() *domain.Cart {
	c := &domain.Cart{
		ID:        d.ID.Hex(),
		UserID:    d.User.Hex(),
		Items:     make([]domain.LineItem, 0, len(d.Items)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, it := range d.Items {
		c.Items = append(c.Items, domain.LineItem{
			ProductID: it.ProductID.Hex(),
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return c
}

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrCartNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc cartDoc
	if err := r.col.FindOne(ctx, bson.M{"user": uid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return doc.toDomain(), nil
}

// Save replaces the item list of the user's cart, creating it when absent.
// Lines whose product id is not a valid ObjectID are dropped.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	uid, err := primitive.ObjectIDFromHex(cart.UserID)
	if err != nil {
		return domain.Invalid("invalid cart owner %q", cart.UserID)
	}

	items := make([]cartItemDoc, 0, len(cart.Items))
	for _, it := range cart.Items {
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			continue
		}
		items = append(items, cartItemDoc{
			ProductID: pid,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set":         bson.M{"items": items, "updatedAt": cart.UpdatedAt},
		"$setOnInsert": bson.M{"createdAt": cart.CreatedAt},
	}
	if _, err := r.col.UpdateOne(ctx, bson.M{"user": uid}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}
