package memorydb

import (
	"bytes"
	"errors"
	"sort"

	"github.com/celer-network/go-eosdeploy/db"
)

var errInvalidIterator = errors.New("iterator is invalid")

// Iterator walks a snapshot of the keys taken when it was created.
type Iterator struct {
	namespace []byte
	keys      []string
	cursor    int
	db        *DB
}

func (mdb *DB) Iterator(namespace []byte, prefix []byte, reverse bool) db.Iterator {
	mdb.lock.Lock()
	defer mdb.lock.Unlock()

	full := db.PrependNamespace(namespace, prefix)

	var keys sort.StringSlice
	for key := range mdb.db {
		if bytes.HasPrefix([]byte(key), full) {
			keys = append(keys, key)
		}
	}
	if reverse {
		sort.Sort(sort.Reverse(keys))
	} else {
		sort.Strings(keys)
	}

	return &Iterator{
		namespace: namespace,
		keys:      keys,
		db:        mdb,
	}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return errInvalidIterator
	}
	iter.cursor++
	return nil
}

func (iter *Iterator) Valid() bool {
	return 0 <= iter.cursor && iter.cursor < len(iter.keys)
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, errInvalidIterator
	}
	return db.StripNamespace(iter.namespace, []byte(iter.keys[iter.cursor])), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, errInvalidIterator
	}
	value, _, err := iter.db.Get(nil, []byte(iter.keys[iter.cursor]))
	return value, err
}

func (iter *Iterator) Close() {
	iter.keys = nil
}
