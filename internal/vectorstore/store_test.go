package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", FormatVector(nil))
	assert.Equal(t, "[0.5]", FormatVector([]float32{0.5}))
	assert.Equal(t, "[0.1,-0.25,3]", FormatVector([]float32{0.1, -0.25, 3}))
}

func TestNullableStrings(t *testing.T) {
	assert.Nil(t, nullableStrings(nil))
	assert.Nil(t, nullableStrings([]string{}))
	assert.Equal(t, []string{"devops"}, nullableStrings([]string{"devops"}))
}

func TestLimitOrDefault(t *testing.T) {
	assert.Equal(t, DefaultLimit, limitOrDefault(0))
	assert.Equal(t, DefaultLimit, limitOrDefault(-3))
	assert.Equal(t, 10, limitOrDefault(10))
}
