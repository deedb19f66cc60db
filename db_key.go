package xdiskv

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/weedge/pkg/utils"
)

func (db *DB) checkKeyFrame(buf []byte) (int, error) {
	prefixKeyLen := len(db.store.prefixKey)
	dbIndexLen := len(db.indexVarBuf)
	l := prefixKeyLen + dbIndexLen
	if len(buf) < l {
		return 0, fmt.Errorf("key is too small")
	}
	if !bytes.Equal(db.store.prefixKey, buf[0:prefixKeyLen]) {
		return 0, fmt.Errorf("invalid prefix key")
	}
	if !bytes.Equal(db.indexVarBuf, buf[prefixKeyLen:l]) {
		return 0, fmt.Errorf("invalid db index")
	}

	return l, nil
}

// --- prefix key ---

func encodePrefixKey(prefix string) []byte {
	if len(prefix) == 0 {
		return []byte{}
	}
	buf := make([]byte, 2+len(prefix))
	idx := 0
	binary.BigEndian.PutUint16(buf[idx:], uint16(len(prefix)))
	idx += 2
	copy(buf[idx:], utils.String2Bytes(prefix))

	return buf
}

// --- db index ---

func encodeIndex(index int) []byte {
	// the most size for varint is 10 bytes
	ebuf := make([]byte, 10)
	n := binary.PutUvarint(ebuf, uint64(index))

	buf := make([]byte, 2+n)
	binary.BigEndian.PutUint16(buf[0:], uint16(n))
	copy(buf[2:], ebuf[0:n])

	return buf
}

// --- data key ---

// (len(prefixKey)(2) | prefixKey) | (len(dbIndex)(2) | dbIndex) | dataType(1) | key
func (db *DB) encodeDataKey(key []byte) Key {
	ek := make(Key, len(key)+1+len(db.indexVarBuf)+len(db.store.prefixKey))
	pos := copy(ek, db.store.prefixKey)
	n := copy(ek[pos:], db.indexVarBuf)
	pos += n
	ek[pos] = DataType
	pos++
	copy(ek[pos:], key)
	return ek
}

func (db *DB) decodeDataKey(ek []byte) ([]byte, error) {
	pos, err := db.checkKeyFrame(ek)
	if err != nil {
		return nil, err
	}
	if pos+1 > len(ek) || ek[pos] != DataType {
		return nil, fmt.Errorf("invalid data key")
	}

	pos++

	return ek[pos:], nil
}

// dataKeyPrefix is the frame every data key of this db starts with.
func (db *DB) dataKeyPrefix() Key {
	return db.encodeDataKey(nil)
}
