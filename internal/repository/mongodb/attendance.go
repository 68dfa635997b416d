package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/database"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AttendanceCollection = "attendance"

	writeConflictCode = 112
)

type attendanceRepositoryImpl struct {
	coll *mongo.Collection
	loc  *time.Location
}

// NewAttendanceRepository reads offset-less stored timestamps in loc (UTC when nil).
func NewAttendanceRepository(db *database.MongoDB, loc *time.Location) attendance.AttendanceRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceRepositoryImpl{coll: db.Database.Collection(AttendanceCollection), loc: loc}
}

// EnsureIndexes creates the unique (employee_id, date) index the clock-in upsert relies on.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	coll := db.Database.Collection(AttendanceCollection)

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_date_unique"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	}

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}
	return nil
}

// ClockIn implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ClockIn(ctx context.Context, employeeID int64, date time.Time, inTime time.Time) (attendance.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	// Matches only a missing or pending record (in_time absent or null). When the day is already
	// clocked in the upsert collides with the unique index instead of overwriting.
	filter := bson.D{
		{Key: "employee_id", Value: employeeID},
		{Key: "date", Value: attendance.FormatDate(date)},
		{Key: "in_time", Value: nil},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "in_time", Value: formatTimestamp(inTime)},
			{Key: "status", Value: string(attendance.StatusPresent)},
			{Key: "updated_at", Value: inTime.UTC()},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "hours_worked", Value: 0.0},
			{Key: "created_at", Value: inTime.UTC()},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc attendanceDocument
	if err := a.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, mapAttendanceError("failed to clock in", err)
	}

	return doc.toRecord(a.loc)
}

// ClockOut implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ClockOut(ctx context.Context, id string, outTime time.Time, hours float64) (attendance.Record, error) {
	filter := bson.D{
		idFilter(id),
		{Key: "in_time", Value: bson.D{{Key: "$ne", Value: nil}}},
		{Key: "out_time", Value: nil},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "out_time", Value: formatTimestamp(outTime)},
			{Key: "hours_worked", Value: hours},
			{Key: "updated_at", Value: outTime.UTC()},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc attendanceDocument
	if err := a.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Record{}, attendance.ErrTransitionRejected
		}
		return attendance.Record{}, mapAttendanceError("failed to clock out", err)
	}

	return doc.toRecord(a.loc)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	filter := bson.D{
		{Key: "employee_id", Value: employeeID},
		{Key: "date", Value: attendance.FormatDate(date)},
	}

	var doc attendanceDocument
	if err := a.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapAttendanceError("failed to get attendance", err)
	}

	rec, err := doc.toRecord(a.loc)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID int64, r attendance.DateRange) ([]attendance.Record, error) {
	filter := rangeFilter(r, bson.D{{Key: "employee_id", Value: employeeID}})
	return a.list(ctx, filter)
}

// ListByRange implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByRange(ctx context.Context, r attendance.DateRange) ([]attendance.Record, error) {
	return a.list(ctx, rangeFilter(r, bson.D{}))
}

func (a *attendanceRepositoryImpl) list(ctx context.Context, filter bson.D) ([]attendance.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "employee_id", Value: 1}})

	cursor, err := a.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapAttendanceError("failed to list attendance", err)
	}
	defer cursor.Close(ctx)

	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapAttendanceError("failed to decode attendance", err)
	}

	records := make([]attendance.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toRecord(a.loc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := a.coll.DeleteOne(ctx, bson.D{idFilter(id)})
	if err != nil {
		return mapAttendanceError("failed to delete attendance", err)
	}
	if res.DeletedCount == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// DeleteByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) DeleteByEmployeeAndRange(ctx context.Context, employeeID int64, r attendance.DateRange) (int64, error) {
	filter := rangeFilter(r, bson.D{{Key: "employee_id", Value: employeeID}})

	res, err := a.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, mapAttendanceError("failed to delete attendance", err)
	}
	return res.DeletedCount, nil
}

// rangeFilter adds half-open bounds on the "YYYY-MM-DD" date string, which sorts chronologically.
func rangeFilter(r attendance.DateRange, filter bson.D) bson.D {
	if r.IsUnbounded() {
		return filter
	}
	return append(filter, bson.E{Key: "date", Value: bson.D{
		{Key: "$gte", Value: attendance.FormatDate(r.Start)},
		{Key: "$lt", Value: attendance.FormatDate(r.End)},
	}})
}

func mapAttendanceError(msg string, err error) error {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.HasErrorCode(writeConflictCode) || serverErr.HasErrorLabel("TransientTransactionError") {
			return fmt.Errorf("%s: %w", msg, attendance.ErrStorageConflict)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
