package preprocess

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
	"github.com/OldStager01/mlops-scoring/internal/manifest"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const sampleCSV = `id,transaction_time,amount,gender,lat,lon,merchant_lat,merchant_lon
t1,2024-03-02 14:05:00,10,F,0,0,0,1
t2,2024-03-04T08:30:00Z,,M,0,0,0,0
t3,not a time,30,,,0,0,1
t4,2024-03-03,20, F ,0,0,0,1
`

func decode(t *testing.T, input string) *dataset.RawTable {
	t.Helper()
	table, err := dataset.DecodeRaw(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	return table
}

func mustManifest(t *testing.T, features ...string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.New(features)
	require.NoError(t, err)
	return m
}

func valuesAt(records []models.ProcessedRecord, j int) []models.FeatureValue {
	out := make([]models.FeatureValue, len(records))
	for i, r := range records {
		out[i] = r.Values[j]
	}
	return out
}

func nums(vs ...float64) []models.FeatureValue {
	out := make([]models.FeatureValue, len(vs))
	for i, v := range vs {
		out[i] = models.NumericValue(v)
	}
	return out
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 111.19, Haversine(0, 0, 0, 1), 0.01)
	assert.Equal(t, 0.0, Haversine(51.5, -0.12, 51.5, -0.12))
	assert.InDelta(t, math.Pi*earthRadiusKm, Haversine(0, 0, 0, 180), 1e-6)
}

func TestHaversine_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("symmetric and bounded", prop.ForAll(
		func(lat1, lon1, lat2, lon2 float64) bool {
			d := Haversine(lat1, lon1, lat2, lon2)
			back := Haversine(lat2, lon2, lat1, lon1)
			return d >= 0 && d <= math.Pi*earthRadiusKm+1e-6 && math.Abs(d-back) < 1e-6
		},
		gen.Float64Range(-90, 90),
		gen.Float64Range(-180, 180),
		gen.Float64Range(-90, 90),
		gen.Float64Range(-180, 180),
	))

	properties.TestingRun(t)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		hour  int
		ok    bool
	}{
		{input: "2024-03-02 14:05:00", hour: 14, ok: true},
		{input: "2024-03-02 14:05:00.250", hour: 14, ok: true},
		{input: "2024-03-02T23:59:59", hour: 23, ok: true},
		{input: "2024-03-02T07:00:00+05:00", hour: 7, ok: true},
		{input: "2024-03-02 14:05:00+00:00", hour: 14, ok: true},
		{input: "2024-03-02 14:05:00.123456+00:00", hour: 14, ok: true},
		{input: "2024-03-02 22:30:00-05:00", hour: 22, ok: true},
		{input: "2024-03-02 14:05:00+0100", hour: 14, ok: true},
		{input: "2024-03-02 06:15", hour: 6, ok: true},
		{input: "2024-03-02", hour: 0, ok: true},
		{input: " 2024-03-02 09:00:00 ", hour: 9, ok: true},
		{input: "", ok: false},
		{input: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.hour, ts.Hour())
			}
		})
	}
}

func TestMedian(t *testing.T) {
	_, ok := median(nil)
	assert.False(t, ok)

	v, ok := median([]float64{3, 1, 2})
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, _ = median([]float64{10, 40, 20, 30})
	assert.Equal(t, 25.0, v)
}

func TestRun_DerivedFeatures(t *testing.T) {
	p := New(Config{})
	m := mustManifest(t, "hour", "dow", "is_weekend", "dist_km")

	records, err := p.Run(context.Background(), decode(t, sampleCSV), m)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"t1", "t2", "t3", "t4"},
		[]string{records[0].ID, records[1].ID, records[2].ID, records[3].ID})

	assert.Equal(t, nums(14, 8, -1, 0), valuesAt(records, 0))
	// 2024-03-02 is a Saturday, 2024-03-04 a Monday
	assert.Equal(t, nums(5, 0, -1, 6), valuesAt(records, 1))
	assert.Equal(t, nums(1, 0, 0, 1), valuesAt(records, 2))

	dist := valuesAt(records, 3)
	assert.InDelta(t, 111.19, dist[0].Num, 0.01)
	assert.Equal(t, 0.0, dist[1].Num)
	// t3 has no lat so it takes the median of the parsed distances
	assert.InDelta(t, dist[0].Num, dist[2].Num, 1e-9)
	assert.InDelta(t, 111.19, dist[3].Num, 0.01)
}

func TestRun_ZoneAwareTimestamps(t *testing.T) {
	input := `id,transaction_time,lat,lon,merchant_lat,merchant_lon
a,2024-03-02 14:05:00+00:00,0,0,0,1
d,2024-03-02T14:05:00Z,0,0,0,1
`
	m := mustManifest(t, "hour", "dow", "is_weekend")

	records, err := New(Config{}).Run(context.Background(), decode(t, input), m)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.Equal(t, nums(14, 5, 1), r.Values, r.ID)
	}
}

func TestRun_HourCyclicalEncoding(t *testing.T) {
	p := New(Config{})
	m := mustManifest(t, "hour_sin", "hour_cos")

	records, err := p.Run(context.Background(), decode(t, sampleCSV), m)
	require.NoError(t, err)

	assert.InDelta(t, math.Sin(2*math.Pi*14/24), records[0].Values[0].Num, 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*14/24), records[0].Values[1].Num, 1e-12)
	assert.Equal(t, 0.0, records[2].Values[0].Num)
	assert.Equal(t, 0.0, records[2].Values[1].Num)
}

func TestRun_PassThroughAndImputation(t *testing.T) {
	p := New(Config{})
	m := mustManifest(t, "gender", "amount")

	records, err := p.Run(context.Background(), decode(t, sampleCSV), m)
	require.NoError(t, err)

	assert.Equal(t, []models.FeatureValue{
		models.CategoricalValue("F"),
		models.CategoricalValue("M"),
		models.CategoricalValue("na"),
		models.CategoricalValue("F"),
	}, valuesAt(records, 0))

	// median of 10, 30, 20
	assert.Equal(t, nums(10, 20, 30, 20), valuesAt(records, 1))
}

func TestRun_PunctuatedColumnNames(t *testing.T) {
	input := "id,city-pop,amt.log\na,1200,2.5\nb,,3\n"
	m := mustManifest(t, "amt.log", "city-pop")

	records, err := New(Config{}).Run(context.Background(), decode(t, input), m)
	require.NoError(t, err)

	assert.Equal(t, nums(2.5, 3), valuesAt(records, 0))
	assert.Equal(t, nums(1200, 1200), valuesAt(records, 1))
}

func TestRun_EmptyNumericColumnFallsBackToZero(t *testing.T) {
	input := "id,amount\na,\nb,x\n"
	records, err := New(Config{}).Run(context.Background(), decode(t, input), mustManifest(t, "amount"))
	require.NoError(t, err)
	assert.Equal(t, nums(0, 0), valuesAt(records, 0))
}

func TestRun_MissingColumns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		features []string
		missing  string
	}{
		{
			name:     "passthrough feature",
			input:    "id,amount\n1,2\n",
			features: []string{"amount", "city_pop"},
			missing:  "city_pop",
		},
		{
			name:     "derived source",
			input:    "id,lat,lon\n1,0,0\n",
			features: []string{"hour", "dist_km"},
			missing:  "transaction_time, merchant_lat, merchant_lon",
		},
		{
			name:     "identifier",
			input:    "amount\n2\n",
			features: []string{"amount"},
			missing:  "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{}).Run(context.Background(), decode(t, tt.input), mustManifest(t, tt.features...))
			require.ErrorIs(t, err, ErrMissingColumn)
			assert.True(t, strings.HasSuffix(err.Error(), tt.missing), err.Error())
		})
	}
}

func TestSchema(t *testing.T) {
	p := New(Config{CategoricalColumns: []string{"merchant"}})
	schema := p.Schema(mustManifest(t, "merchant", "hour", "gender"))

	assert.Equal(t, []string{"id", "merchant", "hour", "gender"}, schema.Header())
	assert.Equal(t, []models.FeatureKind{
		models.FeatureCategorical, models.FeatureNumeric, models.FeatureNumeric,
	}, schema.Kinds)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).Run(ctx, decode(t, sampleCSV), mustManifest(t, "amount"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ShapeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	features := []string{"dist_km", "amount", "hour", "gender", "is_weekend"}
	m, err := manifest.New(features)
	require.NoError(t, err)
	p := New(Config{})

	properties.Property("one row per input row, manifest columns in order", prop.ForAll(
		func(rows int, seed float64) bool {
			var b strings.Builder
			b.WriteString("id,transaction_time,amount,gender,lat,lon,merchant_lat,merchant_lon\n")
			for i := 0; i < rows; i++ {
				fmt.Fprintf(&b, "r%d,2024-01-%02d %02d:00:00,%g,F,%g,0,1,1\n",
					i, i%28+1, i%24, seed*float64(i), seed)
			}

			table, err := dataset.DecodeRaw(context.Background(), strings.NewReader(b.String()))
			if err != nil {
				return false
			}
			records, err := p.Run(context.Background(), table, m)
			if err != nil || len(records) != rows {
				return false
			}
			for i, r := range records {
				if r.ID != fmt.Sprintf("r%d", i) || len(r.Values) != len(features) {
					return false
				}
				if !r.Values[3].IsCategorical() || r.Values[0].IsCategorical() {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 300),
		gen.Float64Range(-50, 50),
	))

	properties.TestingRun(t)
}
