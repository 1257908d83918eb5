package recordset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/aalemi-dev/kafka-gateway/avro"
)

const (
	defaultBufferSize = 4096

	// MaxElementSize bounds a single string or record element.
	MaxElementSize = 16 << 20
)

// Header is the identity and schema selection shared by every record in a set.
// ProjectID and UserID are nil when the client omitted them.
type Header struct {
	KeyVersion   int
	ValueVersion int
	ProjectID    *string
	UserID       *string
	SourceID     string
}

// Decoder reads record sets. It is not safe for concurrent use.
type Decoder struct {
	r       *bufio.Reader
	scratch []byte

	valueID    int
	valueCodec *avro.Codec
	aliasing   bool

	headerRead bool
	records    *Records
}

// NewDecoder returns a decoder with an empty read buffer.
func NewDecoder() *Decoder {
	return &Decoder{r: bufio.NewReaderSize(nil, defaultBufferSize), valueID: -1}
}

// Reset discards any partially read record set and reads from r next.
func (d *Decoder) Reset(r io.Reader) {
	d.r.Reset(r)
	d.headerRead = false
	d.records = nil
}

// Decode resets the decoder onto r and reads the record set header.
func (d *Decoder) Decode(r io.Reader) (*Header, error) {
	d.Reset(r)

	keyVersion, err := d.readInt()
	if err != nil {
		return nil, fmt.Errorf("key version: %w", err)
	}
	valueVersion, err := d.readInt()
	if err != nil {
		return nil, fmt.Errorf("value version: %w", err)
	}
	projectID, err := d.readOptionalString()
	if err != nil {
		return nil, fmt.Errorf("project id: %w", err)
	}
	userID, err := d.readOptionalString()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	sourceID, err := d.readString()
	if err != nil {
		return nil, fmt.Errorf("source id: %w", err)
	}

	d.headerRead = true
	return &Header{
		KeyVersion:   int(keyVersion),
		ValueVersion: int(valueVersion),
		ProjectID:    projectID,
		UserID:       userID,
		SourceID:     sourceID,
	}, nil
}

// Records starts reading the record array, decoding each element with codec.
// valueID identifies the schema of codec; the decoder keeps its current codec
// while the id is unchanged. Records may be called once per Decode.
func (d *Decoder) Records(valueID int, codec *avro.Codec) (*Records, error) {
	if !d.headerRead {
		return nil, ErrHeaderNotRead
	}
	if d.records != nil {
		return nil, malformedContent("Cannot read decoded record data twice.")
	}
	if valueID != d.valueID || d.valueCodec == nil {
		d.valueID = valueID
		d.valueCodec = codec
		d.aliasing = containsBytes(codec.Schema(), map[*avro.Schema]bool{})
	}

	count, err := d.readBlockCount()
	if err != nil {
		return nil, fmt.Errorf("record count: %w", err)
	}
	d.records = &Records{d: d, remaining: count}
	return d.records, nil
}

// Records is a single-pass iterator over the values of a record set.
type Records struct {
	d         *Decoder
	remaining int64
	read      int
}

// More reports whether another value can be read.
func (rs *Records) More() bool {
	return rs.remaining > 0
}

// Read returns the number of values read so far.
func (rs *Records) Read() int {
	return rs.read
}

// Next decodes the next value. Reading beyond the declared count fails.
func (rs *Records) Next() (interface{}, error) {
	if rs.remaining <= 0 {
		return nil, malformedContent("No more records in data.")
	}
	v, err := rs.d.decodeValue()
	if err != nil {
		return nil, err
	}
	rs.remaining--
	rs.read++
	if rs.remaining == 0 {
		count, err := rs.d.readBlockCount()
		if err != nil {
			return nil, malformedRecord(err)
		}
		rs.remaining = count
	}
	return v, nil
}

func (d *Decoder) decodeValue() (interface{}, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, malformedRecord(err)
	}

	var buf []byte
	if d.aliasing {
		// goavro slices bytes and fixed values out of its input
		buf = make([]byte, n)
	} else {
		if cap(d.scratch) < n {
			d.scratch = make([]byte, n)
		}
		buf = d.scratch[:n]
	}
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, malformedRecord(fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	native, _, err := d.valueCodec.Decode(buf)
	if err != nil {
		return nil, malformedRecord(err)
	}
	if native == nil {
		return nil, malformedContent("No record in data")
	}
	return native, nil
}

func (d *Decoder) readLong() (int64, error) {
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}

func (d *Decoder) readInt() (int32, error) {
	v, err := d.readLong()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: int %d out of range", ErrMalformed, v)
	}
	return int32(v), nil
}

func (d *Decoder) readLength() (int, error) {
	n, err := d.readLong()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > MaxElementSize {
		return 0, fmt.Errorf("%w: invalid length %d", ErrMalformed, n)
	}
	return int(n), nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readLength()
	if err != nil {
		return "", err
	}
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	buf := d.scratch[:n]
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return string(buf), nil
}

func (d *Decoder) readOptionalString() (*string, error) {
	index, err := d.readLong()
	if err != nil {
		return nil, err
	}
	switch index {
	case 0:
		return nil, nil
	case 1:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: invalid union index %d", ErrMalformed, index)
	}
}

// readBlockCount reads an array block header. A negative count is followed by
// the block size in bytes, which is not needed here.
func (d *Decoder) readBlockCount() (int64, error) {
	count, err := d.readLong()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		if count == math.MinInt64 {
			return 0, fmt.Errorf("%w: invalid block count", ErrMalformed)
		}
		count = -count
		if _, err := d.readLong(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func containsBytes(s *avro.Schema, seen map[*avro.Schema]bool) bool {
	if s == nil || seen[s] {
		return false
	}
	seen[s] = true
	switch s.Type {
	case avro.Bytes, avro.Fixed:
		return true
	case avro.Array:
		return containsBytes(s.Items, seen)
	case avro.Map:
		return containsBytes(s.Values, seen)
	case avro.Record:
		for _, f := range s.Fields {
			if containsBytes(f.Schema, seen) {
				return true
			}
		}
	case avro.Union:
		for _, t := range s.Types {
			if containsBytes(t, seen) {
				return true
			}
		}
	}
	return false
}
