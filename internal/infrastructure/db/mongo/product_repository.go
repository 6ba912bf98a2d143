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

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	BusinessID       string             `bson:"id"`
	Title            string             `bson:"title"`
	Slug             string             `bson:"slug"`
	ShortDescription string             `bson:"short_description,omitempty"`
	Description      string             `bson:"description,omitempty"`
	Categories       []string           `bson:"categories"`
	Lengths          []float64          `bson:"lengths"`
	PriceByLength    map[string]float64 `bson:"price_by_length"`
	BasePrice        string             `bson:"base_price,omitempty"`
	Images           string             `bson:"images,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d *productDoc) toDomain() *domain.Product {
	p := &domain.Product{
		StorageID:        d.ID.Hex(),
		ID:               d.BusinessID,
		Title:            d.Title,
		Slug:             d.Slug,
		ShortDescription: d.ShortDescription,
		Description:      d.Description,
		Categories:       d.Categories,
		Lengths:          d.Lengths,
		PriceByLength:    d.PriceByLength,
		BasePrice:        d.BasePrice,
		Image:            d.Images,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Lengths == nil {
		p.Lengths = []float64{}
	}
	if p.PriceByLength == nil {
		p.PriceByLength = map[string]float64{}
	}
	return p
}

func fromProduct(p *domain.Product) productDoc {
	return productDoc{
		BusinessID:       p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		Categories:       p.Categories,
		Lengths:          p.Lengths,
		PriceByLength:    p.PriceByLength,
		BasePrice:        p.BasePrice,
		Images:           p.Image,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r *ProductRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["categories"] = category
	}
	return r.find(ctx, filter)
}

func (r *ProductRepository) FindByBusinessID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *ProductRepository) FindByStorageID(ctx context.Context, storageID string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(storageID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ProductRepository) FindByStorageIDs(ctx context.Context, storageIDs []string) ([]*domain.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(storageIDs))
	for _, id := range storageIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*domain.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// ReplaceAll empties the collection and bulk inserts products. It is not
// atomic: a failed insert leaves a partial catalog.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, fromProduct(p))
	}
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, domain.Invalid("duplicate product id or slug: %v", err)
		}
		return 0, fmt.Errorf("insert products: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}
