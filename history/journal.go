// Package history journals deployment attempts per account.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/celer-network/go-eosdeploy/db"
	"github.com/celer-network/go-eosdeploy/types"
	"github.com/google/uuid"
)

type Journal struct {
	db  db.DB
	now func() time.Time
}

func NewJournal(database db.DB) *Journal {
	return &Journal{db: database, now: time.Now}
}

func accountPrefix(account string) []byte {
	return append([]byte(account), db.Separator...)
}

// recordKey orders records of an account by time.
func recordKey(account string, at time.Time, id string) []byte {
	key := accountPrefix(account)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	key = append(key, ts[:]...)
	return append(key, id...)
}

// Record assigns an id and timestamp when missing and stores rec.
func (j *Journal) Record(rec *types.DeploymentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Time.IsZero() {
		rec.Time = j.now().UTC()
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode deployment record: %w", err)
	}

	tx := j.db.NewTx()
	if err := tx.Set(db.NamespaceDeploymentRecord, recordKey(rec.Account, rec.Time, rec.ID), encoded); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Set(db.NamespaceLatestDeployment, []byte(rec.Account), encoded); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// List returns up to limit records of account, newest first. A zero limit
// returns all of them.
func (j *Journal) List(account string, limit int) ([]*types.DeploymentRecord, error) {
	iter := j.db.Iterator(db.NamespaceDeploymentRecord, accountPrefix(account), true)
	defer iter.Close()

	var records []*types.DeploymentRecord
	for ; iter.Valid(); iter.Next() {
		if limit > 0 && len(records) >= limit {
			break
		}
		value, err := iter.Value()
		if err != nil {
			return nil, err
		}
		var rec types.DeploymentRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("decode deployment record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Latest returns the most recent record of account.
func (j *Journal) Latest(account string) (*types.DeploymentRecord, bool, error) {
	value, exists, err := j.db.Get(db.NamespaceLatestDeployment, []byte(account))
	if err != nil || !exists {
		return nil, false, err
	}
	var rec types.DeploymentRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, false, fmt.Errorf("decode deployment record: %w", err)
	}
	return &rec, true, nil
}
