package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	t.Run("valid US number", func(t *testing.T) {
		result, err := ValidatePhone("(202) 555-0172", "US")
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Equal(t, "+12025550172", result.E164Format)
		assert.Equal(t, "US", result.CountryCode)
	})

	t.Run("empty number", func(t *testing.T) {
		_, err := ValidatePhone("", "US")
		assert.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ValidatePhone("not a number", "US")
		assert.Error(t, err)
	})
}

func TestNormalizePhone(t *testing.T) {
	e164, err := NormalizePhone("020 7946 0958", "GB")
	require.NoError(t, err)
	assert.Equal(t, "+442079460958", e164)

	_, err = NormalizePhone("12345", "US")
	assert.Error(t, err)
}

func TestNormalizeOrKeep(t *testing.T) {
	assert.Equal(t, "+12025550172", NormalizeOrKeep("202-555-0172", "US"))
	assert.Equal(t, "12345", NormalizeOrKeep("12345", "US"))
	assert.Equal(t, "", NormalizeOrKeep("", "US"))
}
