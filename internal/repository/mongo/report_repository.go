package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodreport/internal/domain/report"
	"foodreport/internal/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository implements report.Store.
type ReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{collection: db.Collection(ReportsCollection)}
}

var errReportNotFound = apperr.NotFound("report not found")

func (r *ReportRepository) Migrate(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "dateYYYYMMDD", Value: -1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create report index: %w", err)
	}
	return nil
}

func (r *ReportRepository) FindAll(ctx context.Context) ([]report.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateYYYYMMDD", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := make([]report.Report, 0)
	for cursor.Next(ctx) {
		var doc reportDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (report.Report, error) {
	var doc reportDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return report.Report{}, errReportNotFound
		}
		return report.Report{}, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) Create(ctx context.Context, rep report.Report) error {
	_, err := r.collection.InsertOne(ctx, toReportDocument(rep, time.Now().UTC()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("report already exists")
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) Update(ctx context.Context, rep report.Report) error {
	set := bson.M{
		"shopName":     rep.ShopName,
		"name":         rep.Name,
		"rating":       rep.Rating,
		"comment":      rep.Comment,
		"imgUrl":       rep.ImgURL,
		"dateYYYYMMDD": rep.DateYYYYMMDD,
		"userId":       rep.UserID,
		"updatedAt":    time.Now().UTC(),
	}
	unset := bson.M{}
	optionalField(set, unset, "place", rep.Place)
	optionalField(set, unset, "link", rep.Link)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": rep.ID}, update)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return errReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) (string, error) {
	var doc reportDocument
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", errReportNotFound
		}
		return "", fmt.Errorf("delete report: %w", err)
	}
	return doc.ImgURL, nil
}

// optionalField stores empty strings as absent fields.
func optionalField(set, unset bson.M, key, value string) {
	if value == "" {
		unset[key] = ""
		return
	}
	set[key] = value
}
