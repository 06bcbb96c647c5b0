package page

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
)

// Record encoding, in schema column order:
//
//	null bitmap: (numColumns+7)/8 bytes, bit i set = column i is NULL
//	then one field per non-NULL column:
//	  boolean    1 byte
//	  long       8 bytes little-endian
//	  double     8 bytes little-endian IEEE-754 bits
//	  timestamp  8 bytes unix seconds + 4 bytes nanoseconds
//	  string     uvarint byte length + bytes
//	  json       uvarint byte length + raw document bytes
//
// Records are written and read strictly sequentially, so no per-record
// offset table is kept. This is an in-memory layout, not a wire format.

// encodeRecord appends the encoding of row to dst and returns the
// extended slice. Every cell of row must be set (non-nil Value).
func encodeRecord(dst []byte, cols []schema.Column, row []common.Value) []byte {
	bitmapLen := (len(cols) + 7) / 8
	bitmapStart := len(dst)
	for i := 0; i < bitmapLen; i++ {
		dst = append(dst, 0)
	}
	for i := range row {
		if row[i].IsNull() {
			dst[bitmapStart+i/8] |= 1 << (i % 8)
		}
	}

	for i, col := range cols {
		v := row[i]
		if v.IsNull() {
			continue
		}
		switch col.Type() {
		case common.BooleanType:
			if v.BooleanValue() {
				dst = append(dst, 1)
			} else {
				dst = append(dst, 0)
			}
		case common.LongType:
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v.LongValue()))
		case common.DoubleType:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.DoubleValue()))
		case common.TimestampType:
			ts := v.TimestampValue()
			dst = binary.LittleEndian.AppendUint64(dst, uint64(ts.Unix()))
			dst = binary.LittleEndian.AppendUint32(dst, uint32(ts.Nanosecond()))
		case common.StringType:
			s := v.StringValue()
			dst = binary.AppendUvarint(dst, uint64(len(s)))
			dst = append(dst, s...)
		case common.JSONType:
			doc := v.JSONValue()
			dst = binary.AppendUvarint(dst, uint64(len(doc)))
			dst = append(dst, doc...)
		default:
			common.Assert(false, "unhandled column type %s", col.Type())
		}
	}
	return dst
}

// decodeRecord reads one record starting at buf[off] into row and
// returns the offset just past it. A malformed buffer means the page
// was encoded against a different schema, which is a precondition
// violation.
func decodeRecord(buf []byte, off int, cols []schema.Column, row []common.Value) int {
	bitmapLen := (len(cols) + 7) / 8
	common.Assert(off+bitmapLen <= len(buf), "record null bitmap past end of page")
	bitmap := buf[off : off+bitmapLen]
	off += bitmapLen

	for i, col := range cols {
		if bitmap[i/8]&(1<<(i%8)) != 0 {
			row[i] = common.NewNull(col.Type())
			continue
		}
		switch col.Type() {
		case common.BooleanType:
			row[i] = common.NewBooleanValue(buf[off] != 0)
			off++
		case common.LongType:
			row[i] = common.NewLongValue(int64(binary.LittleEndian.Uint64(buf[off:])))
			off += 8
		case common.DoubleType:
			row[i] = common.NewDoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(buf[off:])))
			off += 8
		case common.TimestampType:
			sec := int64(binary.LittleEndian.Uint64(buf[off:]))
			nsec := int64(binary.LittleEndian.Uint32(buf[off+8:]))
			row[i] = common.NewTimestampValue(time.Unix(sec, nsec).UTC())
			off += 12
		case common.StringType:
			length, n := binary.Uvarint(buf[off:])
			common.Assert(n > 0, "malformed string length in page")
			off += n
			common.Assert(off+int(length) <= len(buf), "string field past end of page")
			row[i] = common.NewStringValue(string(buf[off : off+int(length)]))
			off += int(length)
		case common.JSONType:
			length, n := binary.Uvarint(buf[off:])
			common.Assert(n > 0, "malformed json length in page")
			off += n
			common.Assert(off+int(length) <= len(buf), "json field past end of page")
			row[i] = common.NewJSONValue(json.RawMessage(buf[off : off+int(length)]))
			off += int(length)
		default:
			common.Assert(false, "unhandled column type %s", col.Type())
		}
	}
	return off
}
