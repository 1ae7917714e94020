package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/config"
	"github.com/mamadbah2/watermeter/internal/domain/models"
)

const (
	homesCollection       = "homes"
	consumptionCollection = "dailyconsumptions"
)

// MongoDBRepository is the document-store backed record store.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

type homeDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.Home `bson:",inline"`
}

type recordDocument struct {
	ID                            primitive.ObjectID `bson:"_id,omitempty"`
	HomeID                        primitive.ObjectID `bson:"homeId"`
	models.DailyConsumptionRecord `bson:",inline"`
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.QueryTimeout > 0 {
		clientOptions.SetTimeout(cfg.QueryTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", cfg.DBName))

	return &MongoDBRepository{
		client: client,
		db:     client.Database(cfg.DBName),
		logger: logger,
	}, nil
}

// EnsureIndexes creates the unique (homeId, date) index and the date index used for sorting.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(consumptionCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "homeId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("home_date_unique"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("create consumption indexes: %w", err)
	}
	return nil
}

// InsertHome stores a new home and returns it with its generated id.
func (r *MongoDBRepository) InsertHome(ctx context.Context, home models.Home) (models.Home, error) {
	doc := homeDocument{Home: home}
	res, err := r.db.Collection(homesCollection).InsertOne(ctx, doc)
	if err != nil {
		return models.Home{}, fmt.Errorf("failed to insert home: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		home.ID = oid.Hex()
	}
	return home, nil
}

// InsertRecord stores a new daily record. The unique index turns a second
// record for the same home and day into ErrDuplicateRecord.
func (r *MongoDBRepository) InsertRecord(ctx context.Context, record models.DailyConsumptionRecord) (models.DailyConsumptionRecord, error) {
	homeOID, err := parseHomeID(record.HomeID)
	if err != nil {
		return models.DailyConsumptionRecord{}, err
	}
	record.Date = models.CalendarDay(record.Date)

	res, err := r.db.Collection(consumptionCollection).InsertOne(ctx, recordDocument{
		HomeID:                 homeOID,
		DailyConsumptionRecord: record,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.DailyConsumptionRecord{}, models.ErrDuplicateRecord
		}
		return models.DailyConsumptionRecord{}, fmt.Errorf("failed to insert consumption record: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return record, nil
}

// FindRecords returns the records matching the query sorted by date.
func (r *MongoDBRepository) FindRecords(ctx context.Context, query models.RecordQuery) ([]models.DailyConsumptionRecord, error) {
	filter, err := recordFilter(query.HomeID, query.Window)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(consumptionCollection).Find(ctx, filter, findOptions(query))
	if err != nil {
		return nil, fmt.Errorf("find consumption records: %w: %w", models.ErrStoreUnavailable, err)
	}

	var docs []recordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode consumption records: %w: %w", models.ErrStoreUnavailable, err)
	}

	records := make([]models.DailyConsumptionRecord, 0, len(docs))
	for _, doc := range docs {
		record := doc.DailyConsumptionRecord
		record.ID = doc.ID.Hex()
		record.HomeID = doc.HomeID.Hex()
		records = append(records, record)
	}
	return records, nil
}

// Aggregate runs a $group pipeline over the consumption collection.
func (r *MongoDBRepository) Aggregate(ctx context.Context, query models.AggregateQuery) ([]models.GroupStat, error) {
	pipeline, err := aggregatePipeline(query)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(consumptionCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate consumption records: %w: %w", models.ErrStoreUnavailable, err)
	}

	var stats []models.GroupStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode consumption aggregate: %w: %w", models.ErrStoreUnavailable, err)
	}
	return stats, nil
}

// GetHome loads a home by its hex id.
func (r *MongoDBRepository) GetHome(ctx context.Context, homeID string) (*models.Home, error) {
	oid, err := primitive.ObjectIDFromHex(homeID)
	if err != nil {
		return nil, models.ErrHomeNotFound
	}

	var doc homeDocument
	err = r.db.Collection(homesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrHomeNotFound
		}
		return nil, fmt.Errorf("get home %s: %w: %w", homeID, models.ErrStoreUnavailable, err)
	}

	home := doc.Home
	home.ID = doc.ID.Hex()
	return &home, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
