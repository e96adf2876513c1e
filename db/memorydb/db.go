package memorydb

import (
	"container/list"
	"sync"

	eosdb "github.com/celer-network/go-eosdeploy/db"
)

func NewDB() *DB {
	return &DB{
		db: make(map[string][]byte),
	}
}

// Enforce database and transaction implements interfaces
var _ eosdb.DB = (*DB)(nil)

type DB struct {
	lock sync.Mutex
	db   map[string][]byte
}

func (db *DB) Type() string {
	return "memorydb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = eosdb.PrependNamespace(namespace, key)
	value = append([]byte{}, eosdb.ConvNilToBytes(value)...)

	db.db[string(key)] = value
	return nil
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = eosdb.PrependNamespace(namespace, key)

	delete(db.db, string(key))
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = eosdb.PrependNamespace(namespace, key)

	value, exists := db.db[string(key)]
	if !exists {
		return nil, false, nil
	}
	return append([]byte{}, value...), true, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = eosdb.PrependNamespace(namespace, key)

	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) NewTx() eosdb.Transaction {
	return &Transaction{
		db:     db,
		opList: list.New(),
	}
}
