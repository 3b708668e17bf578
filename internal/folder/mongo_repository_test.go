package folder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const foldersNamespace = "notekeeper.folders"

func folderBSON(id primitive.ObjectID, name string, records ...primitive.ObjectID) bson.D {
	now := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)
	ids := bson.A{}
	for _, r := range records {
		ids = append(ids, r)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "description", Value: name + " notes"},
		{Key: "records", Value: ids},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestMongoRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns an id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		f := &Folder{Name: "work"}
		require.NoError(mt, NewMongoRepository(mt.DB).Create(context.Background(), f))
		assert.True(mt, primitive.IsValidObjectID(f.ID))
	})

	mt.Run("duplicate name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := NewMongoRepository(mt.DB).Create(context.Background(), &Folder{Name: "work"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestMongoRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	recordID := primitive.NewObjectID()

	mt.Run("find by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foldersNamespace, mtest.FirstBatch, folderBSON(id, "work", recordID)))

		got, err := NewMongoRepository(mt.DB).FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "work", got.Name)
		assert.Equal(mt, []string{recordID.Hex()}, got.RecordIDs)
		assert.True(mt, got.HasRecord(recordID.Hex()))
	})

	mt.Run("find by name not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foldersNamespace, mtest.FirstBatch))
		_, err := NewMongoRepository(mt.DB).FindByName(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find all", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foldersNamespace, mtest.FirstBatch,
			folderBSON(primitive.NewObjectID(), "work"),
			folderBSON(primitive.NewObjectID(), "home"),
		))
		got, err := NewMongoRepository(mt.DB).FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "home", got[1].Name)
		assert.Empty(mt, got[1].RecordIDs)
	})
}

func TestMongoRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing folder", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := NewMongoRepository(mt.DB).Update(context.Background(), &Folder{ID: primitive.NewObjectID().Hex(), Name: "work"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("duplicate name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := NewMongoRepository(mt.DB).Update(context.Background(), &Folder{ID: primitive.NewObjectID().Hex(), Name: "home"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestMongoRepository_Records(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("add record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		err := NewMongoRepository(mt.DB).AddRecord(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("add record to missing folder", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := NewMongoRepository(mt.DB).AddRecord(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("remove record from all folders", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))
		assert.NoError(mt, NewMongoRepository(mt.DB).RemoveRecordFromAll(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("delete", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: folderBSON(id, "work")}))
		got, err := NewMongoRepository(mt.DB).Delete(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
	})
}
