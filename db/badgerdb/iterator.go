package badgerdb

import (
	"errors"

	"github.com/celer-network/go-eosdeploy/db"
	"github.com/dgraph-io/badger/v2"
)

var errInvalidIterator = errors.New("iterator is invalid")

type Iterator struct {
	namespace []byte
	prefix    []byte
	txn       *badger.Txn
	iter      *badger.Iterator
}

func (bdb *DB) Iterator(namespace []byte, prefix []byte, reverse bool) db.Iterator {
	full := db.PrependNamespace(namespace, prefix)
	txn := bdb.db.NewTransaction(false)

	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	opt.Reverse = reverse
	opt.Prefix = full

	iter := txn.NewIterator(opt)
	if reverse {
		// seek past every key carrying the prefix
		iter.Seek(append(append([]byte{}, full...), 0xFF))
	} else {
		iter.Seek(full)
	}

	return &Iterator{
		namespace: namespace,
		prefix:    full,
		txn:       txn,
		iter:      iter,
	}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return errInvalidIterator
	}
	iter.iter.Next()
	return nil
}

func (iter *Iterator) Valid() bool {
	return iter.iter.ValidForPrefix(iter.prefix)
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, errInvalidIterator
	}
	key := iter.iter.Item().KeyCopy(nil)
	return db.StripNamespace(iter.namespace, key), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, errInvalidIterator
	}
	return iter.iter.Item().ValueCopy(nil)
}

func (iter *Iterator) Close() {
	iter.iter.Close()
	iter.txn.Discard()
}
