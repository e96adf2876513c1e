package publisher

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/celer-network/go-eosdeploy/db"
	"github.com/celer-network/go-eosdeploy/types"
)

var currentKey = []byte("current")

// Listener is notified after an interface is stored for account.
type Listener func(account string, published *types.PublishedInterface)

// Store keeps the latest published interface of each account and the
// account the last deployment targeted.
type Store struct {
	db        db.DB
	lock      sync.RWMutex
	listeners []Listener
}

func NewStore(database db.DB) *Store {
	return &Store{db: database}
}

// Subscribe registers fn for every later update.
func (s *Store) Subscribe(fn Listener) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Set overwrites the interface of account and marks it as the deployment target.
func (s *Store) Set(account string, published *types.PublishedInterface) error {
	encoded, err := json.Marshal(published)
	if err != nil {
		return fmt.Errorf("encode published interface: %w", err)
	}

	tx := s.db.NewTx()
	if err := tx.Set(db.NamespacePublishedInterface, []byte(account), encoded); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Set(db.NamespaceDeployedAccount, currentKey, []byte(account)); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store published interface: %w", err)
	}

	s.lock.RLock()
	listeners := append([]Listener{}, s.listeners...)
	s.lock.RUnlock()
	for _, fn := range listeners {
		fn(account, published)
	}
	return nil
}

func (s *Store) Get(account string) (*types.PublishedInterface, bool, error) {
	value, exists, err := s.db.Get(db.NamespacePublishedInterface, []byte(account))
	if err != nil || !exists {
		return nil, false, err
	}
	var published types.PublishedInterface
	if err := json.Unmarshal(value, &published); err != nil {
		return nil, false, fmt.Errorf("decode published interface: %w", err)
	}
	return &published, true, nil
}

// DeployedTo returns the account of the most recent publication.
func (s *Store) DeployedTo() (string, bool, error) {
	value, exists, err := s.db.Get(db.NamespaceDeployedAccount, currentKey)
	if err != nil || !exists {
		return "", false, err
	}
	return string(value), true, nil
}
