package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unit-scripts/cobc/pkg/preprocessor"
)

func TestGenerateProducesV3Document(t *testing.T) {
	sm := preprocessor.NewSourceMap()
	sm.Mappings = append(sm.Mappings,
		preprocessor.Mapping{GeneratedLine: 1, GeneratedColumn: 0, SourceFile: "u.bos", OriginalLine: 1, OriginalColumn: 0, Length: 5},
		preprocessor.Mapping{GeneratedLine: 2, GeneratedColumn: 3, SourceFile: "u.bos", OriginalLine: 4, OriginalColumn: 2, Length: 6},
	)

	g := NewGenerator("unit.cob.s", sm)
	data, err := g.Generate()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 3`)
	assert.Contains(t, string(data), "u.bos")
}

func TestGenerateThenConsumeRoundTrips(t *testing.T) {
	sm := preprocessor.NewSourceMap()
	sm.Mappings = append(sm.Mappings,
		preprocessor.Mapping{GeneratedLine: 1, GeneratedColumn: 0, SourceFile: "u.bos", OriginalLine: 1, OriginalColumn: 0, Length: 5},
		preprocessor.Mapping{GeneratedLine: 3, GeneratedColumn: 2, SourceFile: "u.bos", OriginalLine: 7, OriginalColumn: 1, Length: 4},
	)

	g := NewGenerator("unit.cob.s", sm)
	data, err := g.Generate()
	require.NoError(t, err)

	c, err := NewConsumer(data)
	require.NoError(t, err)

	file, line, col, ok := c.Source(3, 2)
	require.True(t, ok)
	assert.Equal(t, "u.bos", file)
	assert.Equal(t, 7, line)
	assert.Equal(t, 1, col)
}

func TestGenerateInlineProducesDataURLComment(t *testing.T) {
	sm := preprocessor.NewSourceMap()
	g := NewGenerator("unit.cob.s", sm)
	comment, err := g.GenerateInline()
	require.NoError(t, err)
	assert.Contains(t, comment, "//# sourceMappingURL=data:application/json;base64,")
}
