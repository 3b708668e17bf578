package record

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/at-ishikawa/notekeeper/internal/database"
)

type recordDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Title     string               `bson:"title"`
	Content   string               `bson:"content"`
	Category  *primitive.ObjectID  `bson:"category"`
	Image     *string              `bson:"image"`
	DateInfo  DateInfo             `bson:"dateInfo"`
	Folder    []primitive.ObjectID `bson:"folder"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d recordDocument) toRecord() Record {
	r := Record{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		DateInfo:  d.DateInfo,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Category != nil {
		r.CategoryID = d.Category.Hex()
	}
	for _, f := range d.Folder {
		r.FolderIDs = append(r.FolderIDs, f.Hex())
	}
	return r
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.RecordsCollection)}
}

// Create inserts r and assigns its ID.
func (repo *MongoRepository) Create(ctx context.Context, r *Record) error {
	doc := recordDocument{
		ID:        primitive.NewObjectID(),
		Title:     r.Title,
		Content:   r.Content,
		Image:     r.Image,
		DateInfo:  r.DateInfo,
		Folder:    []primitive.ObjectID{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(r.CategoryID)
		if err != nil {
			return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", r.CategoryID, err)
		}
		doc.Category = &categoryID
	}
	for _, id := range r.FolderIDs {
		folderID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", id, err)
		}
		doc.Folder = append(doc.Folder, folderID)
	}

	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("coll.InsertOne() > %w", err)
	}
	r.ID = doc.ID.Hex()
	return nil
}

func (repo *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Record, error) {
	var doc recordDocument
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOne() > %w", err)
	}
	r := doc.toRecord()
	return &r, nil
}

// FindByID returns the record with id, or ErrNotFound.
func (repo *MongoRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return repo.findOne(ctx, bson.M{"_id": oid})
}

// FindByTitle returns the record with the exact title, or ErrNotFound.
func (repo *MongoRepository) FindByTitle(ctx context.Context, title string) (*Record, error) {
	return repo.findOne(ctx, bson.M{"title": title})
}

// FindByIDs returns the records with the given ids, skipping unknown ones.
func (repo *MongoRepository) FindByIDs(ctx context.Context, ids []string) ([]Record, error) {
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return repo.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (repo *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Record, error) {
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("coll.Find() > %w", err)
	}
	var docs []recordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cursor.All() > %w", err)
	}
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toRecord())
	}
	return records, nil
}

// List returns one page of records matching q and the total count.
func (repo *MongoRepository) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	if q.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(q.CategoryID)
		if err != nil {
			return []Record{}, 0, nil
		}
		filter["category"] = oid
	}
	if q.FolderID != "" {
		oid, err := primitive.ObjectIDFromHex(q.FolderID)
		if err != nil {
			return []Record{}, 0, nil
		}
		filter["folder"] = oid
	}

	total, err := repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("coll.CountDocuments() > %w", err)
	}

	order := -1
	if q.Ascending {
		order = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	records, err := repo.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindByPeriod returns the records of p, newest first.
func (repo *MongoRepository) FindByPeriod(ctx context.Context, p Period) ([]Record, error) {
	filter := bson.M{"dateInfo.year": p.Year}
	switch p.Kind {
	case PeriodDay:
		filter["dateInfo.month"] = p.Month
		filter["dateInfo.day"] = p.Day
	case PeriodWeek:
		filter["dateInfo.week"] = p.Week
	case PeriodMonth:
		filter["dateInfo.month"] = p.Month
	default:
		return nil, fmt.Errorf("unknown period kind %q", p.Kind)
	}
	return repo.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// FindAll returns every record, newest first.
func (repo *MongoRepository) FindAll(ctx context.Context) ([]Record, error) {
	return repo.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// Update replaces the editable fields of r.
func (repo *MongoRepository) Update(ctx context.Context, r *Record) error {
	oid, err := primitive.ObjectIDFromHex(r.ID)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{
		"title":     r.Title,
		"content":   r.Content,
		"image":     r.Image,
		"category":  nil,
		"updatedAt": r.UpdatedAt,
	}
	if r.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(r.CategoryID)
		if err != nil {
			return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", r.CategoryID, err)
		}
		set["category"] = categoryID
	}

	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
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

// SetImage stores the image URL of a record.
func (repo *MongoRepository) SetImage(ctx context.Context, id, image string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"image": image}})
	if err != nil {
		return fmt.Errorf("coll.UpdateOne() > %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with id and returns it.
func (repo *MongoRepository) Delete(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc recordDocument
	if err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("coll.FindOneAndDelete() > %w", err)
	}
	r := doc.toRecord()
	return &r, nil
}

func (repo *MongoRepository) updateFolder(ctx context.Context, recordID, folderID, operator string) error {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return ErrNotFound
	}
	folderOID, err := primitive.ObjectIDFromHex(folderID)
	if err != nil {
		return fmt.Errorf("primitive.ObjectIDFromHex(%s) > %w", folderID, err)
	}
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{operator: bson.M{"folder": folderOID}})
	if err != nil {
		return fmt.Errorf("coll.UpdateOne(%s) > %w", operator, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFolder links the record to a folder.
func (repo *MongoRepository) AddFolder(ctx context.Context, recordID, folderID string) error {
	return repo.updateFolder(ctx, recordID, folderID, "$addToSet")
}

// RemoveFolder unlinks the record from a folder.
func (repo *MongoRepository) RemoveFolder(ctx context.Context, recordID, folderID string) error {
	return repo.updateFolder(ctx, recordID, folderID, "$pull")
}

// RemoveFolderFromAll unlinks every record from a folder.
func (repo *MongoRepository) RemoveFolderFromAll(ctx context.Context, folderID string) error {
	oid, err := primitive.ObjectIDFromHex(folderID)
	if err != nil {
		return nil
	}
	if _, err := repo.coll.UpdateMany(ctx, bson.M{"folder": oid}, bson.M{"$pull": bson.M{"folder": oid}}); err != nil {
		return fmt.Errorf("coll.UpdateMany() > %w", err)
	}
	return nil
}

// ClearCategory detaches a category from every record.
func (repo *MongoRepository) ClearCategory(ctx context.Context, categoryID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return 0, nil
	}
	result, err := repo.coll.UpdateMany(ctx, bson.M{"category": oid}, bson.M{"$set": bson.M{"category": nil}})
	if err != nil {
		return 0, fmt.Errorf("coll.UpdateMany() > %w", err)
	}
	return result.ModifiedCount, nil
}

// DistinctCategoryIDs returns the ids of categories used by at least one record.
func (repo *MongoRepository) DistinctCategoryIDs(ctx context.Context) ([]string, error) {
	values, err := repo.coll.Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": nil}})
	if err != nil {
		return nil, fmt.Errorf("coll.Distinct() > %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}
	return ids, nil
}

// CountByCategory returns the number of records per category id.
func (repo *MongoRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"category": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("coll.Aggregate() > %w", err)
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("cursor.All() > %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID.Hex()] = row.Count
	}
	return counts, nil
}

func toObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}
