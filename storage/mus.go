package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/dualstore/core"
)

// MUS serializers for the binary records stored in badger. Rows and
// chunk records are small, fixed-shape structures, so the serializers
// are assembled by hand from mus-go primitives rather than generated.

var (
	cellsMUS  = ord.NewSliceSer[string](ord.String)
	vectorMUS = ord.NewSliceSer[float32](raw.Float32)
)

// idMUS serializes a core.ID as a varint.
type idMUS struct{}

// IDMUS is the serializer for core.ID values.
var IDMUS = idMUS{}

func (idMUS) Marshal(id core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id core.ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// rowMUS serializes one table row (an ordered cell slice).
type rowMUS struct{}

// RowMUS is the serializer for table rows.
var RowMUS = rowMUS{}

func (rowMUS) Marshal(row []string, bs []byte) (n int) {
	return cellsMUS.Marshal(row, bs)
}

func (rowMUS) Unmarshal(bs []byte) (row []string, n int, err error) {
	return cellsMUS.Unmarshal(bs)
}

func (rowMUS) Size(row []string) int {
	return cellsMUS.Size(row)
}

func (rowMUS) Skip(bs []byte) (n int, err error) {
	return cellsMUS.Skip(bs)
}

// chunkMUS serializes a full chunk record, including the fields that
// never enter the state document (vector, link method, timestamps).
type chunkMUS struct{}

// ChunkMUS is the serializer for chunk records.
var ChunkMUS = chunkMUS{}

func (chunkMUS) Marshal(c core.Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.SourceFile, bs[n:])
	n += ord.String.Marshal(c.Section, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += ord.String.Marshal(c.LinkedTable, bs[n:])
	n += cellsMUS.Marshal(c.LinkedIDs, bs[n:])
	n += ord.String.Marshal(string(c.LinkType), bs[n:])
	n += varint.Int.Marshal(int(c.Method), bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += varint.Int64.Marshal(timeToMicro(c.InsertedAt), bs[n:])
	n += varint.Int64.Marshal(timeToMicro(c.UpdatedAt), bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var (
		n1 int
		id uint64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Id = core.ID(id)

	c.SourceFile, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Section, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.LinkedTable, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.LinkedIDs, n1, err = cellsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var linkType string
	linkType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.LinkType = core.LinkType(linkType)

	var method int
	method, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Method = core.LinkMethod(method)

	c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.InsertedAt = microToTime(micros)

	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt = microToTime(micros)
	return c, n, nil
}

func (chunkMUS) Size(c core.Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.SourceFile)
	size += ord.String.Size(c.Section)
	size += ord.String.Size(c.Content)
	size += ord.String.Size(c.LinkedTable)
	size += cellsMUS.Size(c.LinkedIDs)
	size += ord.String.Size(string(c.LinkType))
	size += varint.Int.Size(int(c.Method))
	size += vectorMUS.Size(c.Vector)
	size += varint.Int64.Size(timeToMicro(c.InsertedAt))
	size += varint.Int64.Size(timeToMicro(c.UpdatedAt))
	return size
}

func (chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = cellsMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		n1, err = varint.Int64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return n, nil
}

// timeToMicro maps the zero time to 0 so it survives a roundtrip intact.
func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(micros int64) time.Time {
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}
