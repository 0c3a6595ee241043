package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

const historyCollection = "reconciliation_history"

// HistoryStore implements the rolling reconciliation history on MongoDB.
type HistoryStore struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewHistoryStore connects to MongoDB and verifies the connection.
func NewHistoryStore(ctx context.Context, uri string, dbName string) (*HistoryStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &HistoryStore{
		client:   client,
		dbName:   dbName,
		collName: historyCollection,
	}, nil
}

// historyDocument is the stored shape of a HistoryRecord. Amounts are kept
// as decimal strings.
type historyDocument struct {
	Timestamp              time.Time `bson:"timestamp"`
	TotalEntries           int       `bson:"total_entries"`
	DiscrepancyCount       int       `bson:"discrepancy_count"`
	ValidationErrorCount   int       `bson:"validation_error_count"`
	ReconciliationAccuracy float64   `bson:"reconciliation_accuracy"`
	AverageDiscrepancy     string    `bson:"average_discrepancy"`
	CashRecoveryNeeded     string    `bson:"cash_recovery_needed"`
	TotalCashVariance      string    `bson:"total_cash_variance"`
	Status                 string    `bson:"status"`
	Confidence             int       `bson:"confidence"`
	TotalDifference        string    `bson:"total_difference"`
	Recommendations        []string  `bson:"recommendations"`
}

func toDocument(r models.HistoryRecord) historyDocument {
	return historyDocument{
		Timestamp:              r.Timestamp,
		TotalEntries:           r.TotalEntries,
		DiscrepancyCount:       r.Summary.DiscrepancyCount,
		ValidationErrorCount:   r.Summary.ValidationErrorCount,
		ReconciliationAccuracy: r.Summary.ReconciliationAccuracy,
		AverageDiscrepancy:     r.Summary.AverageDiscrepancy.String(),
		CashRecoveryNeeded:     r.Summary.CashRecoveryNeeded.String(),
		TotalCashVariance:      r.Summary.TotalCashVariance.String(),
		Status:                 string(r.Overall.Status),
		Confidence:             r.Overall.Confidence,
		TotalDifference:        r.Overall.TotalDifference.String(),
		Recommendations:        r.Overall.Recommendations,
	}
}

func (d historyDocument) toRecord() models.HistoryRecord {
	return models.HistoryRecord{
		Timestamp:    d.Timestamp,
		TotalEntries: d.TotalEntries,
		Summary: models.Summary{
			TotalEntries:           d.TotalEntries,
			DiscrepancyCount:       d.DiscrepancyCount,
			ValidationErrorCount:   d.ValidationErrorCount,
			ReconciliationAccuracy: d.ReconciliationAccuracy,
			AverageDiscrepancy:     parseAmount(d.AverageDiscrepancy),
			CashRecoveryNeeded:     parseAmount(d.CashRecoveryNeeded),
			TotalCashVariance:      parseAmount(d.TotalCashVariance),
		},
		Overall: models.Overall{
			Status:          models.Status(d.Status),
			Confidence:      d.Confidence,
			TotalDifference: parseAmount(d.TotalDifference),
			Recommendations: d.Recommendations,
		},
	}
}

func parseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Load returns the stored history ordered by timestamp.
func (s *HistoryStore) Load(ctx context.Context) ([]models.HistoryRecord, error) {
	collection := s.client.Database(s.dbName).Collection(s.collName)

	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	var docs []historyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	records := make([]models.HistoryRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toRecord())
	}
	return records, nil
}

// Save replaces the stored history with records. The new documents are
// inserted before the previous ones are removed, so a failed insert keeps the
// old history.
func (s *HistoryStore) Save(ctx context.Context, records []models.HistoryRecord) error {
	collection := s.client.Database(s.dbName).Collection(s.collName)

	var inserted []interface{}
	if len(records) > 0 {
		docs := make([]interface{}, 0, len(records))
		for _, record := range records {
			docs = append(docs, toDocument(record))
		}

		res, err := collection.InsertMany(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		inserted = res.InsertedIDs
	}

	if _, err := collection.DeleteMany(ctx, staleFilter(inserted)); err != nil {
		return fmt.Errorf("failed to remove replaced history: %w", err)
	}
	return nil
}

// staleFilter matches every document except the ones just inserted.
func staleFilter(keep []interface{}) bson.D {
	if len(keep) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: keep}}}}
}

// Close closes the MongoDB connection.
func (s *HistoryStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
