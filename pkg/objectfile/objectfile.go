// Package objectfile implements the binary container format produced by
// the compiler: a fixed 11-word header, a flat code segment, three pointer
// tables, and a trailing NUL-terminated string pool.
package objectfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Version is the only header version this codec understands.
const Version = 4

const headerWords = 11
const headerSize = headerWords * 4

// File is the decoded, in-memory form of an object file.
type File struct {
	StaticVarCount uint32
	Code           []uint32

	// FunctionNames and FunctionPtrs are parallel slices: FunctionPtrs[i]
	// is the word offset into Code where FunctionNames[i] begins.
	FunctionNames []string
	FunctionPtrs  []uint32

	PieceNames []string
}

// FunctionLength returns the number of code words belonging to the i'th
// function, derived from the gap to the next function's start (or the end
// of the code segment for the last function).
func (f *File) FunctionLength(i int) int {
	start := int(f.FunctionPtrs[i])
	end := len(f.Code)
	if i+1 < len(f.FunctionPtrs) {
		end = int(f.FunctionPtrs[i+1])
	}
	return end - start
}

// FunctionCode returns the code words belonging to the named function.
func (f *File) FunctionCode(name string) ([]uint32, error) {
	for i, n := range f.FunctionNames {
		if n == name {
			start := f.FunctionPtrs[i]
			return f.Code[start : int(start)+f.FunctionLength(i)], nil
		}
	}
	return nil, fmt.Errorf("function %q not found in object file", name)
}

// Encode serializes f into the on-disk byte layout.
func (f *File) Encode() ([]byte, error) {
	functionCount := uint32(len(f.FunctionNames))
	if len(f.FunctionPtrs) != len(f.FunctionNames) {
		return nil, fmt.Errorf("objectfile: %d function names but %d function ptrs", len(f.FunctionNames), len(f.FunctionPtrs))
	}
	pieceCount := uint32(len(f.PieceNames))
	codeLenWords := uint32(len(f.Code))
	codeLenBytes := codeLenWords * 4

	codePtr := uint32(headerSize)
	functionCodePtrsPtr := codePtr + codeLenBytes
	functionNamesPtrsPtr := functionCodePtrsPtr + functionCount*4
	pieceNamesPtrsPtr := functionNamesPtrsPtr + functionCount*4
	stringsPtr := pieceNamesPtrsPtr + pieceCount*4

	var buf bytes.Buffer

	header := [headerWords]uint32{
		Version,
		functionCount,
		pieceCount,
		codeLenWords,
		f.StaticVarCount,
		0,
		functionCodePtrsPtr,
		functionNamesPtrsPtr,
		pieceNamesPtrsPtr,
		codePtr,
		stringsPtr,
	}
	for _, w := range header {
		if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
			return nil, err
		}
	}

	for _, w := range f.Code {
		if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
			return nil, err
		}
	}

	for _, ptr := range f.FunctionPtrs {
		if err := binary.Write(&buf, binary.LittleEndian, ptr); err != nil {
			return nil, err
		}
	}

	// String pool layout: all function names' NUL-terminated bytes first,
	// then all piece names', in declaration order — pointer tables are
	// written before the pool itself but must know its final offsets, so
	// offsets are computed in a first pass below.
	var functionNameBlob, pieceNameBlob bytes.Buffer
	functionNameOffsets := make([]uint32, len(f.FunctionNames))
	for i, name := range f.FunctionNames {
		functionNameOffsets[i] = uint32(functionNameBlob.Len())
		functionNameBlob.WriteString(name)
		functionNameBlob.WriteByte(0)
	}
	pieceNameOffsets := make([]uint32, len(f.PieceNames))
	for i, name := range f.PieceNames {
		pieceNameOffsets[i] = uint32(pieceNameBlob.Len())
		pieceNameBlob.WriteString(name)
		pieceNameBlob.WriteByte(0)
	}

	for _, off := range functionNameOffsets {
		if err := binary.Write(&buf, binary.LittleEndian, stringsPtr+off); err != nil {
			return nil, err
		}
	}
	pieceNameBase := stringsPtr + uint32(functionNameBlob.Len())
	for _, off := range pieceNameOffsets {
		if err := binary.Write(&buf, binary.LittleEndian, pieceNameBase+off); err != nil {
			return nil, err
		}
	}

	buf.Write(functionNameBlob.Bytes())
	buf.Write(pieceNameBlob.Bytes())

	return buf.Bytes(), nil
}

// Decode parses the on-disk byte layout into a File.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("objectfile: data too short for header: %d bytes", len(data))
	}

	var header [headerWords]uint32
	r := bytes.NewReader(data)
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("objectfile: reading header: %w", err)
		}
	}

	version := header[0]
	functionCount := header[1]
	pieceCount := header[2]
	codeLenWords := header[3]
	staticVarCount := header[4]
	functionCodePtrsPtr := header[6]
	functionNamesPtrsPtr := header[7]
	pieceNamesPtrsPtr := header[8]
	codePtr := header[9]

	if version != Version {
		return nil, fmt.Errorf("objectfile: unsupported version %d, only %d is supported", version, Version)
	}

	code, err := readWords(data, codePtr, int(codeLenWords))
	if err != nil {
		return nil, fmt.Errorf("objectfile: reading code segment: %w", err)
	}

	functionPtrs, err := readWords(data, functionCodePtrsPtr, int(functionCount))
	if err != nil {
		return nil, fmt.Errorf("objectfile: reading function pointer table: %w", err)
	}

	functionNames, err := readStrings(data, functionNamesPtrsPtr, int(functionCount))
	if err != nil {
		return nil, fmt.Errorf("objectfile: reading function names: %w", err)
	}

	pieceNames, err := readStrings(data, pieceNamesPtrsPtr, int(pieceCount))
	if err != nil {
		return nil, fmt.Errorf("objectfile: reading piece names: %w", err)
	}

	return &File{
		StaticVarCount: staticVarCount,
		Code:           code,
		FunctionNames:  functionNames,
		FunctionPtrs:   functionPtrs,
		PieceNames:     pieceNames,
	}, nil
}

func readWords(data []byte, ptr uint32, count int) ([]uint32, error) {
	end := int(ptr) + count*4
	if end > len(data) {
		return nil, fmt.Errorf("word table at offset %d (count %d) exceeds data length %d", ptr, count, len(data))
	}
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		out[i] = binary.LittleEndian.Uint32(data[int(ptr)+i*4:])
	}
	return out, nil
}

func readStrings(data []byte, tablePtr uint32, count int) ([]string, error) {
	ptrs, err := readWords(data, tablePtr, count)
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i, p := range ptrs {
		if int(p) > len(data) {
			return nil, fmt.Errorf("string pointer %d out of range (data length %d)", p, len(data))
		}
		end := bytes.IndexByte(data[p:], 0)
		if end < 0 {
			return nil, fmt.Errorf("unterminated string at offset %d", p)
		}
		out[i] = string(data[p : int(p)+end])
	}
	return out, nil
}
