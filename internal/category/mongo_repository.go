package category

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/at-ishikawa/notekeeper/internal/database"
)

type categoryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d categoryDocument) toCategory() Category {
	return Category{ID: d.ID.Hex(), Name: d.Name, CreatedAt: d.CreatedAt}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.CategoriesCollection)}
}

func (repo *MongoRepository) Create(ctx context.Context, c *Category) error {
	doc := categoryDocument{ID: primitive.NewObjectID(), Name: c.Name, CreatedAt: c.CreatedAt}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("coll.InsertOne() > %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (repo *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Category, error) {
	var doc categoryDocument
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOne() > %w", err)
	}
	c := doc.toCategory()
	return &c, nil
}

func (repo *MongoRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return repo.findOne(ctx, bson.M{"_id": oid})
}

func (repo *MongoRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	return repo.findOne(ctx, bson.M{"name": name})
}

func (repo *MongoRepository) find(ctx context.Context, filter bson.M) ([]Category, error) {
	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("coll.Find() > %w", err)
	}
	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cursor.All() > %w", err)
	}
	categories := make([]Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.toCategory())
	}
	return categories, nil
}

// FindByIDs skips ids that are not valid ObjectIDs.
func (repo *MongoRepository) FindByIDs(ctx context.Context, ids []string) ([]Category, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return repo.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (repo *MongoRepository) FindAll(ctx context.Context) ([]Category, error) {
	return repo.find(ctx, bson.M{})
}

func (repo *MongoRepository) Delete(ctx context.Context, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc categoryDocument
	if err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOneAndDelete() > %w", err)
	}
	c := doc.toCategory()
	return &c, nil
}
