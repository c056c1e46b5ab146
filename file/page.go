package file

import (
	"encoding/binary"
	"errors"
	"time"
	"unicode/utf8"
)

// IntSize is the number of bytes a page uses to encode an integer or a
// length prefix. The original SimpleDB lineage of this storage engine
// fixes this at 4 bytes; some rewrites instead let it track the host's
// native int width (4 or 8 bytes depending on architecture), which
// makes the on-disk format depend on what machine wrote it. This
// implementation always uses 4, independent of GOARCH.
const IntSize = 4

// Page is a mutable, fixed-size byte buffer the size of one disk block.
// It never grows or shrinks after construction; every accessor is
// bounds-checked against that fixed capacity by the runtime slice
// machinery, so a caller cannot silently write past the block boundary.
type Page struct {
	buffer []byte
}

// NewPage allocates a zeroed page with the given block size.
func NewPage(blockSize int) *Page {
	return &Page{buffer: make([]byte, blockSize)}
}

// NewPageFromBytes wraps an existing byte slice as a page, without
// copying. It is used to build scratch pages for log records, whose
// size is computed ahead of time from the record's contents.
func NewPageFromBytes(bytes []byte) *Page {
	return &Page{buffer: bytes}
}

// GetInt reads a big-endian 4-byte integer at offset.
func (p *Page) GetInt(offset int) int {
	return int(int32(binary.BigEndian.Uint32(p.buffer[offset : offset+IntSize])))
}

// SetInt writes n as a big-endian 4-byte integer at offset.
func (p *Page) SetInt(offset int, n int) {
	binary.BigEndian.PutUint32(p.buffer[offset:offset+IntSize], uint32(int32(n)))
}

// GetBytes reads a length-prefixed byte blob: a 4-byte length followed
// by that many bytes.
func (p *Page) GetBytes(offset int) []byte {
	length := p.GetInt(offset)
	start := offset + IntSize
	end := start + length
	b := make([]byte, length)
	copy(b, p.buffer[start:end])
	return b
}

// SetBytes writes b as a length-prefixed blob at offset.
func (p *Page) SetBytes(offset int, b []byte) {
	p.SetInt(offset, len(b))
	copy(p.buffer[offset+IntSize:], b)
}

// GetString reads a length-prefixed UTF-8 string.
func (p *Page) GetString(offset int) (string, error) {
	b := p.GetBytes(offset)
	if !utf8.Valid(b) {
		return "", errors.New("file: invalid UTF-8 encoding in page")
	}
	return string(b), nil
}

// SetString writes s as a length-prefixed UTF-8 string at offset.
func (p *Page) SetString(offset int, s string) error {
	if !utf8.ValidString(s) {
		return errors.New("file: string contains invalid UTF-8 characters")
	}
	p.SetBytes(offset, []byte(s))
	return nil
}

// GetShort reads a big-endian 2-byte integer at offset.
func (p *Page) GetShort(offset int) int16 {
	return int16(binary.BigEndian.Uint16(p.buffer[offset : offset+2]))
}

// SetShort writes n as a big-endian 2-byte integer at offset.
func (p *Page) SetShort(offset int, n int16) {
	binary.BigEndian.PutUint16(p.buffer[offset:offset+2], uint16(n))
}

// GetBool reads a single-byte boolean at offset (zero is false).
func (p *Page) GetBool(offset int) bool {
	return p.buffer[offset] != 0
}

// SetBool writes a single-byte boolean at offset.
func (p *Page) SetBool(offset int, b bool) {
	if b {
		p.buffer[offset] = 1
	} else {
		p.buffer[offset] = 0
	}
}

// GetDate reads an 8-byte Unix timestamp (seconds) at offset.
func (p *Page) GetDate(offset int) time.Time {
	return time.Unix(int64(binary.BigEndian.Uint64(p.buffer[offset:offset+8])), 0).UTC()
}

// SetDate writes t as an 8-byte Unix timestamp (seconds) at offset.
func (p *Page) SetDate(offset int, t time.Time) {
	binary.BigEndian.PutUint64(p.buffer[offset:offset+8], uint64(t.Unix()))
}

// MaxLength returns the number of bytes SetString needs to store a
// string whose UTF-8 encoding is strlen bytes long (len(s)): the length
// prefix plus the bytes themselves. Callers that size a scratch page
// ahead of time (the log record encoders in package tx) use this.
func MaxLength(strlen int) int {
	return IntSize + strlen
}

// Contents returns the page's backing buffer. The file manager reads
// and writes this slice directly; callers must not resize it.
func (p *Page) Contents() []byte {
	return p.buffer
}
