package db

// DB is a namespaced key value store.
type DB interface {
	Type() string
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Get(namespace []byte, key []byte) ([]byte, bool, error)
	Exist(namespace []byte, key []byte) (bool, error)
	// Iterator walks every key in namespace starting with prefix. Keys are
	// returned without the namespace, in ascending order unless reverse is set.
	Iterator(namespace []byte, prefix []byte, reverse bool) Iterator
	NewTx() Transaction
	Close() error
}

// Transaction batches writes that must land together.
type Transaction interface {
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Commit() error
	Discard()
}

// Iterator navigates a key range. Callers must Close it.
type Iterator interface {
	Next() error
	Valid() bool
	Key() ([]byte, error)
	Value() ([]byte, error)
	Close()
}
