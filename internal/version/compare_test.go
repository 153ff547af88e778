package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

func TestCheckSchemaCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		stored        string
		expectError   bool
		errorContains string
		code          errors.ErrorCode
	}{
		{name: "exact match", current: "1.2.0", stored: "1.2.0"},
		{name: "current patch higher", current: "1.2.1", stored: "1.2.0"},
		{name: "stored patch higher", current: "1.2.0", stored: "1.2.5"},
		{name: "v prefix", current: "v1.2.0", stored: "1.2.3"},
		{name: "dev build current", current: "main", stored: "1.2.0"},
		{name: "dev build stored", current: "1.2.0", stored: "main"},
		{
			name:          "minor differs",
			current:       "1.3.0",
			stored:        "1.2.0",
			expectError:   true,
			errorContains: "minor version mismatch",
			code:          errors.ErrCodeCacheSchemaVersion,
		},
		{
			name:          "major differs",
			current:       "2.0.0",
			stored:        "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
			code:          errors.ErrCodeCacheSchemaVersion,
		},
		{
			name:          "invalid stored",
			current:       "1.2.0",
			stored:        "not-a-version",
			expectError:   true,
			errorContains: "invalid stored version",
			code:          errors.ErrCodeInvalidVersion,
		},
		{
			name:          "invalid current",
			current:       "x.y",
			stored:        "1.2.0",
			expectError:   true,
			errorContains: "invalid current version",
			code:          errors.ErrCodeInvalidVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchemaCompatibility(tt.current, tt.stored)
			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
