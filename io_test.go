package smartbuf

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf)
	s.writer.ForPlatform(LE64)
}

func (s *WriterTestSuite) TestConstructors() {
	_, err := NewWriter(nil)
	s.Assert().ErrorIs(err, ErrNilIO)

	wrapped, err := NewWriter(s.writer)
	s.Require().NoError(err)
	s.Assert().Equal(LE64, wrapped.Platform(), "wrapping a Writer keeps its platform")

	plain, err := NewWriter(io.Discard)
	s.Require().NoError(err)
	s.Assert().Equal(Native(), plain.Platform())
}

func (s *WriterTestSuite) TestTypedWrites() {
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.ForPlatform(BE64).WriteUint64(0x0102030405060708)
	s.writer.WriteString("hi")
	s.writer.WriteZeros(2)

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(4+8+2+2, n)

	expected := []byte{
		0x00, 0xFF, 0xEE, 0xDD,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		'h', 'i',
		0, 0,
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestWritePointer() {
	s.writer.WritePointer(0x10)
	s.writer.ForPlatform(BE32).WritePointer(0x20)
	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(12, n)
	s.Assert().Equal([]byte{0x10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x20}, s.buf.Bytes())

	s.writer.WritePointer(1 << 32)
	s.Assert().ErrorIs(s.writer.Err(), ErrOverflow)
	s.Assert().Equal(12, s.buf.Len())
}

func (s *WriterTestSuite) TestAlignPointer() {
	s.writer.WriteString("x")
	s.writer.AlignPointer()
	s.writer.AlignPointer()
	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(8, n)

	s.writer.ForPlatform(LE32)
	s.writer.WriteString("abcde")
	s.writer.AlignPointer()
	n, err = s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(16, n)
}

func (s *WriterTestSuite) TestWriteLine() {
	s.writer.WriteLine("a")
	s.writer.WriteLine("")
	_, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().Equal("a\n\n", s.buf.String())
}

func (s *WriterTestSuite) TestLargeZeros() {
	s.writer.WriteZeros(BUFFER_SIZE*2 + 3)
	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(BUFFER_SIZE*2+3, n)
	s.Assert().Equal(make([]byte, BUFFER_SIZE*2+3), s.buf.Bytes())
}

func (s *WriterTestSuite) TestErrorHandling() {
	s.T().Run("ShortBufferError", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))
		writer.ForPlatform(LE64)

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)

		_, err := writer.Result()
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})

	s.T().Run("WriteAfterErrorIsNoOp", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))
		writer.ForPlatform(LE64)

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)
		firstErr := writer.Err()
		require.ErrorIs(t, firstErr, io.ErrShortWrite)

		writer.WriteLine("late")
		writer.Flush()
		assert.Equal(t, firstErr, writer.Err(), "The latched error should not change")
		assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xDD}, fixedBuf)
	})
}

func (s *WriterTestSuite) TestBufferedFlush() {
	var sink struct{ bytes.Buffer }
	writer, _ := NewWriterSize(&sink, 128)
	writer.WriteString("a")

	s.Assert().True(writer.w.(bufferedStream).Buffered() > 0)
	s.Assert().Zero(sink.Len())

	s.Require().NoError(writer.Flush())
	s.Assert().Equal(1, sink.Len())
}

func TestBytesWriter(t *testing.T) {
	data := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	w := NewBytesWriter(data)

	_, err := w.Write([]byte{1, 2})
	require.NoError(t, err)
	require.NoError(t, w.SeekForward(5))
	assert.Equal(t, []byte{1, 2, 0, 0, 0}, w.Bytes())
	assert.Equal(t, 3, w.Available())

	assert.ErrorIs(t, w.SeekForward(4), ErrInvalidSeek)

	n, err := w.WriteString("abcd")
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.ErrorIs(t, w.SeekForward(9), io.ErrShortWrite)
	assert.Equal(t, 8, w.Len())
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // uint8
		0xCC, 0xBB, // uint16
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0x11, 0x22, 0x33, // raw bytes
	}
	r := NewReader(data, binary.LittleEndian)

	var v8 uint8
	var v16 uint16
	var v32 uint32
	var v64 uint64
	r.ReadUint8(&v8)
	r.ReadUint16(&v16)
	r.ReadUint32(&v32)
	r.ReadUint64(&v64)
	read := r.ReadBytes(3)

	s.Require().NoError(r.Err())
	s.Assert().Equal(uint8(0xAA), v8)
	s.Assert().Equal(uint16(0xBBCC), v16)
	s.Assert().Equal(uint32(0xDDEEFF00), v32)
	s.Assert().Equal(uint64(0x0102030405060708), v64)
	s.Assert().Equal([]byte{0x11, 0x22, 0x33}, read)

	// The next read should result in a clean EOF.
	var extra uint8
	r.ReadUint8(&extra)
	s.Assert().ErrorIs(r.Err(), io.EOF)
	s.Assert().True(r.IsEOF())
}

func (s *ReaderTestSuite) TestErrorHandling() {
	s.T().Run("ReadPastEOF", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02, 0x03}, binary.LittleEndian)
		var v32 uint32
		r.ReadUint32(&v32)

		assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
		assert.False(t, r.IsEOF(), "ErrUnexpectedEOF should not be considered a clean EOF")
	})

	s.T().Run("ReadAfterErrorIsNoOp", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02, 0x03}, binary.LittleEndian)
		var v32 uint32
		var v8 uint8

		r.ReadUint32(&v32)
		firstErr := r.Err()
		require.Error(t, firstErr)

		r.ReadUint8(&v8)
		assert.Equal(t, firstErr, r.Err(), "The latched error should not change")
		assert.Equal(t, uint8(0), v8, "Destination variable should be unchanged after an error")
	})

	s.T().Run("UnterminatedString", func(t *testing.T) {
		r := NewReader([]byte("abc"), binary.LittleEndian)
		var str string
		r.ReadString(&str)
		assert.ErrorIs(t, r.Err(), ErrTruncatedData)
		assert.Empty(t, str)
	})

	s.T().Run("BadPointerWidth", func(t *testing.T) {
		r := NewReader(make([]byte, 8), binary.LittleEndian)
		var v uint64
		r.ReadPointer(2, &v)
		assert.ErrorIs(t, r.Err(), ErrBadPointerWidth)
	})
}

func (s *ReaderTestSuite) TestPointers() {
	data := []byte{0, 0, 0x10, 0x00, 0, 0, 0, 0, 0, 0, 0, 0x20}
	r := NewReader(data, binary.BigEndian)
	var p32, p64 uint64
	r.ReadPointer(4, &p32)
	r.ReadPointer(8, &p64)
	s.Require().NoError(r.Err())
	s.Assert().EqualValues(0x1000, p32)
	s.Assert().EqualValues(0x20, p64)
}

func (s *ReaderTestSuite) TestSeekBehavior() {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := NewReader(data, binary.LittleEndian)

	pos, err := r.Seek(3, io.SeekStart)
	s.Require().NoError(err)
	s.Assert().EqualValues(3, pos)
	var b uint8
	r.ReadUint8(&b)
	s.Assert().EqualValues(0x04, b)

	pos, err = r.Seek(-2, io.SeekEnd)
	s.Require().NoError(err)
	s.Assert().EqualValues(6, pos)
	s.Assert().Equal(2, r.Available())

	pos, err = r.Seek(1, io.SeekCurrent)
	s.Require().NoError(err)
	s.Assert().EqualValues(7, pos)

	_, err = r.Seek(-1, io.SeekStart)
	s.Assert().ErrorIs(err, ErrInvalidSeek)
	_, err = r.Seek(0, 42)
	s.Assert().ErrorIs(err, ErrInvalidWhence)

	// Seeking back clears a clean EOF.
	r.ReadBytes(8)
	s.Require().Error(r.Err())
	r.SeekTo(0)
	s.Assert().NoError(r.Err())
	s.Assert().Equal(data, r.ReadBytes(8))
}

func (s *ReaderTestSuite) TestRead() {
	r := NewReader([]byte("abcdef"), binary.LittleEndian)
	out, err := io.ReadAll(r)
	s.Require().NoError(err)
	s.Assert().Equal("abcdef", string(out))
	s.Assert().EqualValues(6, r.Count())
}

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}
