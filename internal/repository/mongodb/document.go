package mongodb

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// localTimestampLayout is the offset-less ISO form older writers used for in_time and out_time.
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// attendanceDocument is the stored shape of an attendance record. New writes use string ids and
// RFC 3339 timestamps; older documents may carry ObjectIDs, BSON datetimes or offset-less strings,
// so those fields are decoded raw and interpreted in toRecord.
type attendanceDocument struct {
	ID          bson.RawValue `bson:"_id"`
	EmployeeID  int64         `bson:"employee_id"`
	Date        string        `bson:"date"`
	InTime      bson.RawValue `bson:"in_time"`
	OutTime     bson.RawValue `bson:"out_time"`
	HoursWorked float64       `bson:"hours_worked"`
	Status      string        `bson:"status"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// toRecord maps a document onto the domain record. Unreadable timestamps are treated as absent
// and flagged so reports show the row without inventing hours. Offset-less timestamps are read in loc.
func (d attendanceDocument) toRecord(loc *time.Location) (attendance.Record, error) {
	id := documentID(d.ID)

	date, err := attendance.ParseDate(d.Date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("attendance %s has malformed date %q: %w", id, d.Date, err)
	}

	var flag string
	in, ok := parseTimestamp(d.InTime, loc)
	if !ok {
		flag = attendance.DataQualityMalformedInTime
	}
	out, ok := parseTimestamp(d.OutTime, loc)
	if !ok && flag == "" {
		flag = attendance.DataQualityMalformedOutTime
	}

	hours := d.HoursWorked
	state, quality := attendance.StateFromColumns(in, out, &hours)
	if flag == "" {
		flag = quality
	}

	status := attendance.Status(d.Status)
	if status == "" {
		status = attendance.StatusAbsent
		if in != nil {
			status = attendance.StatusPresent
		}
	}

	return attendance.Record{
		ID:          id,
		EmployeeID:  d.EmployeeID,
		Date:        date,
		State:       state,
		Status:      status,
		DataQuality: flag,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// documentID renders _id as the record id: ObjectIDs as hex, strings as-is.
func documentID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	return v.String()
}

// idFilter matches a record id against both id shapes the collection holds.
func idFilter(id string) bson.E {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, id}}}}
	}
	return bson.E{Key: "_id", Value: id}
}

// parseTimestamp returns nil, true for an absent value and nil, false for a malformed one.
func parseTimestamp(v bson.RawValue, loc *time.Location) (*time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch v.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return nil, true
	case bson.TypeDateTime:
		t := v.Time().UTC()
		return &t, true
	case bson.TypeString:
		s := v.StringValue()
		if s == "" {
			return nil, true
		}
		if t, ok := validator.IsValidDateTime(s); ok {
			t = t.UTC()
			return &t, true
		}
		t, err := time.ParseInLocation(localTimestampLayout, s, loc)
		if err != nil {
			return nil, false
		}
		t = t.UTC()
		return &t, true
	default:
		return nil, false
	}
}
