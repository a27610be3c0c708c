package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMajorUnits(t *testing.T) {
	assert.Equal(t, "0.00", FormatMajorUnits(0))
	assert.Equal(t, "0.05", FormatMajorUnits(5))
	assert.Equal(t, "0.50", FormatMajorUnits(50))
	assert.Equal(t, "1.00", FormatMajorUnits(100))
	assert.Equal(t, "1500.00", FormatMajorUnits(150000))
	assert.Equal(t, "499.99", FormatMajorUnits(49999))
	assert.Equal(t, "-12.34", FormatMajorUnits(-1234))
	assert.Equal(t, "92233720368547758.07", FormatMajorUnits(9223372036854775807))
}
