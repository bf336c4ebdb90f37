package objectfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *File {
	return &File{
		StaticVarCount: 2,
		Code:           []uint32{0x10021001, 42, 0x10065000},
		FunctionNames:  []string{"Create", "Destroy"},
		FunctionPtrs:   []uint32{0, 3},
		PieceNames:     []string{"base", "turret"},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := sample()

	data, err := f.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, f.StaticVarCount, decoded.StaticVarCount)
	assert.Equal(t, f.Code, decoded.Code)
	assert.Equal(t, f.FunctionNames, decoded.FunctionNames)
	assert.Equal(t, f.FunctionPtrs, decoded.FunctionPtrs)
	assert.Equal(t, f.PieceNames, decoded.PieceNames)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	f := sample()
	data, err := f.Encode()
	require.NoError(t, err)

	// version is the first header word, little-endian.
	data[0] = 3

	_, err = Decode(data)
	assert.Error(t, err)
}

func TestFunctionLengthUsesNextFunctionStart(t *testing.T) {
	f := sample()
	assert.Equal(t, 3, f.FunctionLength(0))
	assert.Equal(t, 0, f.FunctionLength(1))
}

func TestFunctionCodeLooksUpByName(t *testing.T) {
	f := sample()
	code, err := f.FunctionCode("Create")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x10021001, 42, 0x10065000}, code)

	_, err = f.FunctionCode("Nope")
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
