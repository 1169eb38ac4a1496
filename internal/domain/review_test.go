package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterPhotos_KeepsFirstFive(t *testing.T) {
	photos := make([]string, 7)
	for i := range photos {
		photos[i] = "data:image/png;base64,AAA"
	}

	kept := FilterPhotos(photos)
	assert.Len(t, kept, MaxPhotosPerReview)
}

func TestFilterPhotos_DropsInvalidPrefix(t *testing.T) {
	photos := []string{
		"data:image/jpeg;base64,AAA",
		"https://example.com/pic.jpg",
		"data:text/plain;base64,AAA",
		"data:image/png;base64,BBB",
	}

	kept := FilterPhotos(photos)
	assert.Equal(t, []string{"data:image/jpeg;base64,AAA", "data:image/png;base64,BBB"}, kept)
}

func TestFilterPhotos_DropsOversized(t *testing.T) {
	big := "data:image/png;base64," + strings.Repeat("A", MaxPhotoEncodedBytes)
	photos := []string{big, "data:image/png;base64,AAA"}

	kept := FilterPhotos(photos)
	assert.Equal(t, []string{"data:image/png;base64,AAA"}, kept)
}

func TestFilterPhotos_Empty(t *testing.T) {
	assert.Empty(t, FilterPhotos(nil))
	assert.Empty(t, FilterPhotos([]string{}))
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "0.0", FormatAverage(0, 0))
	assert.Equal(t, "4.2", FormatAverage(4.2, 10))
	assert.Equal(t, "5.0", FormatAverage(5, 3))
	assert.Equal(t, "3.7", FormatAverage(3.666, 3))
}

func TestNumericProductID(t *testing.T) {
	assert.Equal(t, "123456", NumericProductID("gid://shopify/Product/123456"))
	assert.Equal(t, "123456", NumericProductID("123456"))
}

func TestProductGID(t *testing.T) {
	assert.Equal(t, "gid://shopify/Product/123456", ProductGID("123456"))
	assert.Equal(t, "gid://shopify/Product/123456", ProductGID("gid://shopify/Product/123456"))
}

func TestProductIDForms(t *testing.T) {
	bare, gid := ProductIDForms("gid://shopify/Product/42")
	assert.Equal(t, "42", bare)
	assert.Equal(t, "gid://shopify/Product/42", gid)

	bare, gid = ProductIDForms("42")
	assert.Equal(t, "42", bare)
	assert.Equal(t, "gid://shopify/Product/42", gid)
}

func TestZeroFilledSeries(t *testing.T) {
	end := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	counts := map[string]int{
		"2024-06-30": 3,
		"2024-06-15": 1,
	}

	series := ZeroFilledSeries(counts, end, DashboardTrendDays)
	assert.Len(t, series, 30)
	assert.Equal(t, "2024-06-01", series[0].Date)
	assert.Equal(t, 0, series[0].Count)
	assert.Equal(t, "2024-06-15", series[14].Date)
	assert.Equal(t, 1, series[14].Count)
	assert.Equal(t, "2024-06-30", series[29].Date)
	assert.Equal(t, 3, series[29].Count)
}
