package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/secret"
)

func TestSortedPoints(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	series := gateway.MetricSeries{
		{Timestamp: base.Add(10 * time.Minute), Value: 3},
		{Timestamp: base, Value: 1},
		{Timestamp: base.Add(5 * time.Minute), Value: 2},
	}

	sorted := SortedPoints(series)

	require.Len(t, sorted, 3)
	for i := 1; i < len(sorted); i++ {
		assert.False(t, sorted[i].Timestamp.Before(sorted[i-1].Timestamp))
	}
	assert.Equal(t, []float64{1, 2, 3}, []float64{sorted[0].Value, sorted[1].Value, sorted[2].Value})
	// input untouched
	assert.Equal(t, float64(3), series[0].Value)
}

func TestCPUChartEmptySeries(t *testing.T) {
	reply, err := CPUChart(nil, "caption")
	require.NoError(t, err)
	assert.Equal(t, replies.Text{Body: "No data available for the selected period."}, reply)
}

func TestCPUChartEncodesPNG(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	series := gateway.MetricSeries{
		{Timestamp: base.Add(5 * time.Minute), Value: 42},
		{Timestamp: base, Value: 7.5},
	}

	reply, err := CPUChart(series, WindowCaption(time.Hour))
	require.NoError(t, err)

	img, ok := reply.(replies.Image)
	require.True(t, ok, "expected image reply, got %T", reply)
	assert.Equal(t, "CPU Utilization for the last hour", img.Caption)

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Positive(t, decoded.Bounds().Dx())
}

func TestCPUChartSinglePoint(t *testing.T) {
	reply, err := CPUChart(gateway.MetricSeries{{Timestamp: time.Unix(1700000000, 0), Value: 5}}, "c")
	require.NoError(t, err)
	assert.Equal(t, replies.KindImage, reply.Kind())
}

func TestWindowCaption(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Hour, "CPU Utilization for the last hour"},
		{10 * time.Minute, "CPU Utilization for the last 10 minutes"},
		{3 * time.Hour, "CPU Utilization for the last 3 hours"},
		{time.Minute, "CPU Utilization for the last minute"},
		{90 * time.Second, "CPU Utilization for the last 1m30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WindowCaption(tt.d))
	}
}

func TestSSHHint(t *testing.T) {
	assert.Equal(t,
		"Connect to your instance via SSH:\nssh -i <your-key>.pem ec2-user@ec2-1.compute.amazonaws.com",
		SSHHint("ec2-user", "ec2-1.compute.amazonaws.com"))
}

func TestKeyFile(t *testing.T) {
	buf, err := secret.NewFromBytes([]byte("PEM"))
	require.NoError(t, err)
	material := &gateway.KeyMaterial{KeyName: "deploy", Private: buf}

	file := KeyFile(material)
	assert.Equal(t, "deploy.pem", file.Name)
	assert.Equal(t, []byte("PEM"), file.Data.Bytes())

	require.NoError(t, replies.Release(file))
	assert.True(t, buf.Closed())

	assert.Equal(t, `Key pair "deploy" created and downloaded.`, KeyCreatedText("deploy"))
}
