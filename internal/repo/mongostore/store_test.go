package mongostore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rawOf(t *testing.T, v any) bson.RawValue {
	t.Helper()
	typ, b, err := bson.MarshalValue(v)
	require.NoError(t, err)
	return bson.RawValue{Type: typ, Value: b}
}

func TestDecimalFromRaw(t *testing.T) {
	d128, err := primitive.ParseDecimal128("19.99")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"decimal128", d128, "19.99"},
		{"double", 10.5, "10.5"},
		{"int32", int32(7), "7"},
		{"int64", int64(12), "12"},
		{"string", "3.25", "3.25"},
		{"bad string", "abc", "0"},
		{"bool", true, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := decimalFromRaw(rawOf(t, c.in))
			assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "got %s", got)
		})
	}
}

func TestToDecimal128RoundTrip(t *testing.T) {
	d := decimal.RequireFromString("1234.56")
	got := decimalFromRaw(rawOf(t, toDecimal128(d)))
	assert.True(t, got.Equal(d))
}

func TestObjectIDHelpers(t *testing.T) {
	id := primitive.NewObjectID()
	o, ok := oid(id.Hex())
	assert.True(t, ok)
	assert.Equal(t, id, o)

	_, ok = oid("not-hex")
	assert.False(t, ok)

	assert.Len(t, oids([]string{id.Hex(), "bad", primitive.NewObjectID().Hex()}), 2)

	fresh, err := newID("")
	require.NoError(t, err)
	assert.False(t, fresh.IsZero())
	_, err = newID("zzz")
	assert.Error(t, err)
}

func TestAddressPushPipeline(t *testing.T) {
	p := addressPushPipeline(addressDoc{Name: "home", IsDefault: true})
	require.Len(t, p, 1)

	b, err := bson.MarshalExtJSON(bson.M{"p": p}, false, false)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"$concatArrays"`)
	assert.Contains(t, s, `"$mergeObjects"`)
	assert.Contains(t, s, `"is_default":false`)
	assert.Contains(t, s, `"$literal":{"name":"home"`)
}

func TestCountMatching(t *testing.T) {
	items := []cartLineDoc{{ProductID: "a"}, {ProductID: "b"}, {ProductID: "c"}}
	assert.EqualValues(t, 2, countMatching(items, []string{"a", "c", "z"}))
	assert.EqualValues(t, 0, countMatching(nil, []string{"a"}))
}

func TestDocTimeDecodesLegacyStrings(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"bson date", want, want},
		{"isoformat", "2024-01-02T03:04:05", want},
		{"isoformat micros", "2024-01-02T03:04:05.123456", want.Add(123456 * time.Microsecond)},
		{"rfc3339", "2024-01-02T11:04:05+08:00", want},
		{"message layout", "2024-01-02 03:04:05", want},
		{"null", nil, time.Time{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"created_at": c.in})
			require.NoError(t, err)
			var d struct {
				CreatedAt docTime `bson:"created_at"`
			}
			require.NoError(t, bson.Unmarshal(raw, &d))
			assert.True(t, c.want.Equal(d.CreatedAt.Time), "got %s", d.CreatedAt.Time)
		})
	}

	raw, err := bson.Marshal(bson.M{"created_at": "yesterday"})
	require.NoError(t, err)
	var d struct {
		CreatedAt docTime `bson:"created_at"`
	}
	assert.Error(t, bson.Unmarshal(raw, &d))
}

func TestDocTimeEncodesAsDate(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	raw, err := bson.Marshal(messageDoc{Sender: "user", Content: "hi", Timestamp: docTime{ts}})
	require.NoError(t, err)
	v := bson.Raw(raw).Lookup("timestamp")
	assert.Equal(t, bsontype.DateTime, v.Type)
	assert.True(t, ts.Equal(v.Time()))
}
