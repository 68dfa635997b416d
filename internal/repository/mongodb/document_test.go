package mongodb

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decodeDocument round-trips fields through BSON the way a cursor hands them to the repository.
func decodeDocument(t *testing.T, fields bson.D) attendanceDocument {
	t.Helper()
	raw, err := bson.Marshal(fields)
	require.NoError(t, err)

	var doc attendanceDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func baseFields(extra ...bson.E) bson.D {
	d := bson.D{
		{Key: "_id", Value: "a"},
		{Key: "employee_id", Value: int64(1)},
		{Key: "date", Value: "2024-03-04"},
	}
	return append(d, extra...)
}

func TestAttendanceDocument_ToRecord(t *testing.T) {
	in := time.Date(2024, 3, 4, 3, 30, 0, 0, time.UTC)
	out := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		fields      bson.D
		wantPhase   attendance.Phase
		wantQuality string
		wantHours   float64
	}{
		{
			name:      "pending",
			fields:    baseFields(),
			wantPhase: attendance.PhasePending,
		},
		{
			name:      "clocked in",
			fields:    baseFields(bson.E{Key: "in_time", Value: formatTimestamp(in)}, bson.E{Key: "status", Value: "present"}),
			wantPhase: attendance.PhaseClockedIn,
		},
		{
			name: "completed",
			fields: baseFields(
				bson.E{Key: "in_time", Value: formatTimestamp(in)},
				bson.E{Key: "out_time", Value: formatTimestamp(out)},
				bson.E{Key: "hours_worked", Value: 8.5},
				bson.E{Key: "status", Value: "present"},
			),
			wantPhase: attendance.PhaseCompleted,
			wantHours: 8.5,
		},
		{
			name: "bson datetimes",
			fields: baseFields(
				bson.E{Key: "in_time", Value: primitive.NewDateTimeFromTime(in)},
				bson.E{Key: "out_time", Value: primitive.NewDateTimeFromTime(out)},
			),
			wantPhase: attendance.PhaseCompleted,
			wantHours: 8.5,
		},
		{
			name:      "null out time",
			fields:    baseFields(bson.E{Key: "in_time", Value: formatTimestamp(in)}, bson.E{Key: "out_time", Value: nil}),
			wantPhase: attendance.PhaseClockedIn,
		},
		{
			name:        "malformed in time",
			fields:      baseFields(bson.E{Key: "in_time", Value: "09:00"}),
			wantPhase:   attendance.PhasePending,
			wantQuality: attendance.DataQualityMalformedInTime,
		},
		{
			name: "malformed out time",
			fields: baseFields(
				bson.E{Key: "in_time", Value: formatTimestamp(in)},
				bson.E{Key: "out_time", Value: "yesterday"},
				bson.E{Key: "hours_worked", Value: 3.0},
			),
			wantPhase:   attendance.PhaseClockedIn,
			wantQuality: attendance.DataQualityMalformedOutTime,
		},
		{
			name: "datetime in with numeric out",
			fields: baseFields(
				bson.E{Key: "in_time", Value: primitive.NewDateTimeFromTime(in)},
				bson.E{Key: "out_time", Value: int32(1700)},
			),
			wantPhase:   attendance.PhaseClockedIn,
			wantQuality: attendance.DataQualityMalformedOutTime,
		},
		{
			name: "out before in",
			fields: baseFields(
				bson.E{Key: "in_time", Value: formatTimestamp(out)},
				bson.E{Key: "out_time", Value: formatTimestamp(in)},
				bson.E{Key: "hours_worked", Value: 4.0},
			),
			wantPhase:   attendance.PhaseCompleted,
			wantQuality: attendance.DataQualityOutBeforeIn,
		},
		{
			name:        "out without in",
			fields:      baseFields(bson.E{Key: "out_time", Value: formatTimestamp(out)}),
			wantPhase:   attendance.PhasePending,
			wantQuality: attendance.DataQualityOutWithoutIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeDocument(t, tt.fields).toRecord(time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhase, rec.Phase())
			assert.Equal(t, tt.wantQuality, rec.DataQuality)
			assert.Equal(t, tt.wantHours, rec.Hours())
			assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), rec.Date)
		})
	}
}

func TestAttendanceDocument_ToRecordOffsetLessTimestamps(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	oid := primitive.NewObjectID()

	doc := decodeDocument(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "employee_id", Value: int32(7)},
		{Key: "date", Value: "2024-03-15"},
		{Key: "in_time", Value: "2024-03-15T09:00:00.123456"},
		{Key: "out_time", Value: "2024-03-15T17:30:00.123456"},
		{Key: "status", Value: "present"},
	})

	rec, err := doc.toRecord(ist)
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), rec.ID)
	assert.Equal(t, int64(7), rec.EmployeeID)
	assert.Equal(t, attendance.PhaseCompleted, rec.Phase())
	assert.Empty(t, rec.DataQuality)
	assert.Equal(t, 8.5, rec.Hours())
	require.NotNil(t, rec.InTime())
	assert.Equal(t, time.Date(2024, 3, 15, 3, 30, 0, 123456000, time.UTC), *rec.InTime())
}

func TestAttendanceDocument_ToRecordDefaultsStatus(t *testing.T) {
	rec, err := decodeDocument(t, baseFields()).toRecord(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)

	rec, err = decodeDocument(t, baseFields(bson.E{Key: "in_time", Value: "2024-03-04T03:30:00Z"})).toRecord(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestAttendanceDocument_ToRecordRejectsBadDate(t *testing.T) {
	doc := decodeDocument(t, bson.D{{Key: "_id", Value: "a"}, {Key: "date", Value: "04/03/2024"}})
	_, err := doc.toRecord(time.UTC)
	assert.Error(t, err)
}

func TestIDFilter(t *testing.T) {
	uuidID := "018e1f3a-7c2b-7d41-9a55-3b6f0c1d2e4f"
	assert.Equal(t, bson.E{Key: "_id", Value: uuidID}, idFilter(uuidID))

	oid := primitive.NewObjectID()
	f := idFilter(oid.Hex())
	assert.Equal(t, "_id", f.Key)
	assert.Equal(t, bson.D{{Key: "$in", Value: bson.A{oid, oid.Hex()}}}, f.Value)
}

func TestRangeFilter(t *testing.T) {
	assert.Empty(t, rangeFilter(attendance.UnboundedRange(), nil))

	r := attendance.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		attendance.PresetMonth,
	)
	f := rangeFilter(r, nil)
	require.Len(t, f, 1)
	assert.Equal(t, "date", f[0].Key)
}
