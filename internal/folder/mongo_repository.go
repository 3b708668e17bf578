package folder

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

type folderDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Records     []primitive.ObjectID `bson:"records"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d folderDocument) toFolder() Folder {
	f := Folder{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, id := range d.Records {
		f.RecordIDs = append(f.RecordIDs, id.Hex())
	}
	return f
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.FoldersCollection)}
}

// Create inserts f and assigns its ID.
func (repo *MongoRepository) Create(ctx context.Context, f *Folder) error {
	doc := folderDocument{
		ID:          primitive.NewObjectID(),
		Name:        f.Name,
		Description: f.Description,
		Records:     []primitive.ObjectID{},
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	for _, id := range f.RecordIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", id, err)
		}
		doc.Records = append(doc.Records, oid)
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("coll.InsertOne() > %w", err)
	}
	f.ID = doc.ID.Hex()
	return nil
}

func (repo *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Folder, error) {
	var doc folderDocument
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOne() > %w", err)
	}
	f := doc.toFolder()
	return &f, nil
}

// FindByID returns the folder with id, or ErrNotFound.
func (repo *MongoRepository) FindByID(ctx context.Context, id string) (*Folder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return repo.findOne(ctx, bson.M{"_id": oid})
}

// FindByName returns the folder with the exact name, or ErrNotFound.
func (repo *MongoRepository) FindByName(ctx context.Context, name string) (*Folder, error) {
	return repo.findOne(ctx, bson.M{"name": name})
}

func (repo *MongoRepository) find(ctx context.Context, filter bson.M) ([]Folder, error) {
	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("coll.Find() > %w", err)
	}
	var docs []folderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cursor.All() > %w", err)
	}
	folders := make([]Folder, 0, len(docs))
	for _, d := range docs {
		folders = append(folders, d.toFolder())
	}
	return folders, nil
}

// FindByIDs returns the folders with the given ids, skipping unknown ones.
func (repo *MongoRepository) FindByIDs(ctx context.Context, ids []string) ([]Folder, error) {
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

// FindAll returns every folder, newest first.
func (repo *MongoRepository) FindAll(ctx context.Context) ([]Folder, error) {
	return repo.find(ctx, bson.M{})
}

// Update replaces the name and description of f.
func (repo *MongoRepository) Update(ctx context.Context, f *Folder) error {
	oid, err := primitive.ObjectIDFromHex(f.ID)
	if err != nil {
		return ErrNotFound
	}
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        f.Name,
		"description": f.Description,
		"updatedAt":   f.UpdatedAt,
	}})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("coll.UpdateOne() > %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the folder with id and returns it.
func (repo *MongoRepository) Delete(ctx context.Context, id string) (*Folder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc folderDocument
	if err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOneAndDelete() > %w", err)
	}
	f := doc.toFolder()
	return &f, nil
}

func (repo *MongoRepository) updateRecords(ctx context.Context, folderID, recordID, operator string) error {
	oid, err := primitive.ObjectIDFromHex(folderID)
	if err != nil {
		return ErrNotFound
	}
	recordOID, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", recordID, err)
	}
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		operator: bson.M{"records": recordOID},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("coll.UpdateOne(%s) > %w", operator, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRecord links a record to the folder.
func (repo *MongoRepository) AddRecord(ctx context.Context, folderID, recordID string) error {
	return repo.updateRecords(ctx, folderID, recordID, "$addToSet")
}

// RemoveRecord unlinks a record from the folder.
func (repo *MongoRepository) RemoveRecord(ctx context.Context, folderID, recordID string) error {
	return repo.updateRecords(ctx, folderID, recordID, "$pull")
}

// RemoveRecordFromAll unlinks a record from every folder.
func (repo *MongoRepository) RemoveRecordFromAll(ctx context.Context, recordID string) error {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return nil
	}
	if _, err := repo.coll.UpdateMany(ctx, bson.M{"records": oid}, bson.M{"$pull": bson.M{"records": oid}}); err != nil {
		return fmt.Errorf("coll.UpdateMany() > %w", err)
	}
	return nil
}
