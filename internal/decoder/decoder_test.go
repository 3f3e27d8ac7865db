package decoder

import (
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
	"github.com/coral-mesh/qrscan/internal/testutil"
)

func TestQR_DecodeFound(t *testing.T) {
	dec := New(Options{TryHarder: true})
	img := testutil.NewQRImage(t, "https://example.com/menu", 300)

	res := dec.Decode(scan.Frame{Image: img, Seq: 1})

	require.Equal(t, scan.OutcomeFound, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "https://example.com/menu", res.Text)
	assert.GreaterOrEqual(t, len(res.Points), 3)

	record, ok := scan.NewRecord(res, 10)
	require.True(t, ok)
	assert.Equal(t, content.URL, record.Type)
	assert.Greater(t, record.Box.Width, 0)
	assert.Greater(t, record.Box.Height, 0)
	assert.LessOrEqual(t, record.Box.X+record.Box.Width, 300+20)
}

func TestQR_DecodeNotFound(t *testing.T) {
	dec := New(Options{})

	res := dec.Decode(scan.Frame{Image: testutil.NewBlankImage(200, 200)})

	assert.Equal(t, scan.OutcomeNotFound, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestQR_DecodeMissingImage(t *testing.T) {
	dec := New(Options{})

	res := dec.Decode(scan.Frame{})
	assert.Equal(t, scan.OutcomeError, res.Outcome)
	assert.Error(t, res.Err)

	res = dec.DecodeImage(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, scan.OutcomeError, res.Outcome)
}

func TestQR_DecodeIndependentCalls(t *testing.T) {
	dec := New(Options{TryHarder: true})
	symbol := testutil.NewQRImage(t, "WIFI:T:WPA;S:Home;P:secret;;", 240)
	blank := testutil.NewBlankImage(240, 240)

	assert.Equal(t, scan.OutcomeFound, dec.DecodeImage(symbol).Outcome)
	assert.Equal(t, scan.OutcomeNotFound, dec.DecodeImage(blank).Outcome)
	assert.Equal(t, scan.OutcomeFound, dec.DecodeImage(symbol).Outcome)
}

func TestQR_DecodeConcurrent(t *testing.T) {
	dec := New(Options{})
	img := testutil.NewQRImage(t, "tel:+1-555-0100", 200)

	var wg sync.WaitGroup
	results := make([]scan.DecodeResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = dec.DecodeImage(img)
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, "tel:+1-555-0100", res.Text)
	}
}
