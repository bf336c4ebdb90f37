package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unit-scripts/cobc/pkg/preprocessor"
)

func sampleMap() *preprocessor.SourceMap {
	sm := preprocessor.NewSourceMap()
	sm.Mappings = append(sm.Mappings,
		preprocessor.Mapping{GeneratedLine: 1, GeneratedColumn: 0, SourceFile: "u.bos", OriginalLine: 1, OriginalColumn: 0, Length: 5},
		preprocessor.Mapping{GeneratedLine: 2, GeneratedColumn: 0, SourceFile: "u.bos", OriginalLine: 3, OriginalColumn: 0, Length: 7},
	)
	return sm
}

func TestNewValidatorDefaultsToNonStrict(t *testing.T) {
	v := NewValidator(sampleMap())
	assert.False(t, v.strict)
}

func TestSetStrictTogglesWarningsIntoErrors(t *testing.T) {
	sm := preprocessor.NewSourceMap()
	sm.Mappings = append(sm.Mappings, preprocessor.Mapping{GeneratedLine: 1, OriginalLine: 1, Length: 0})
	v := NewValidator(sm)
	v.SetStrict(true)

	result := v.Validate()
	assert.False(t, result.Valid)
	assert.Empty(t, result.Warnings)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateAcceptsWellFormedMap(t *testing.T) {
	v := NewValidator(sampleMap())
	result := v.Validate()
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.TotalMappings)
}

func TestValidateRejectsInvalidLineNumbers(t *testing.T) {
	sm := preprocessor.NewSourceMap()
	sm.Mappings = append(sm.Mappings, preprocessor.Mapping{GeneratedLine: 0, OriginalLine: 1, SourceFile: "u.bos", Length: 3})
	v := NewValidator(sm)
	result := v.Validate()
	assert.False(t, result.Valid)
}

func TestValidateJSONRoundTrips(t *testing.T) {
	sm := sampleMap()
	data, err := sm.ToJSON()
	require.NoError(t, err)

	result, err := ValidateJSON(data)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateJSONRejectsGarbage(t *testing.T) {
	result, err := ValidateJSON([]byte("not json"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
