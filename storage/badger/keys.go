package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/dualstore/core"
)

// Key prefixes for different data types
const (
	tableColumnsPrefix = "tabcol"
	tableRowPrefix     = "tabrow"
	chunkRecordPrefix  = "chkrec"
	chunkSourcePrefix  = "chksrc"
	stateDocKey        = "ingstate"
)

// makeTableColumnsKey generates the key holding a table's column order.
func makeTableColumnsKey(table string) []byte {
	return []byte(fmt.Sprintf("%s:%s", tableColumnsPrefix, table))
}

// makeTableRowKey generates a composite key for one table row.
// Format: prefix:table:rowIndex, with the index in BigEndian order so
// lexicographic iteration preserves insertion order.
func makeTableRowKey(table string, row int) []byte {
	prefix := fmt.Sprintf("%s:%s:", tableRowPrefix, table)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(row))
	return buf
}

// makeTableRowPrefix generates the iteration prefix for a table's rows.
func makeTableRowPrefix(table string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", tableRowPrefix, table))
}

// makeChunkKey generates the key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:sourceFile:id. The source file is length-prefixed so a
// file name that prefixes another cannot alias its index entries.
func makeChunkSourceKey(sourceFile string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%04d:%s:", chunkSourcePrefix, len(sourceFile), sourceFile)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkSourcePrefix generates the iteration prefix for a source's chunks.
func makeChunkSourcePrefix(sourceFile string) []byte {
	return []byte(fmt.Sprintf("%s:%04d:%s:", chunkSourcePrefix, len(sourceFile), sourceFile))
}
