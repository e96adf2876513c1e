package simulated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

// Session is an identity bound to a simulated chain.
type Session struct {
	chain    *Chain
	id       types.Identity
	lock     sync.RWMutex
	loggedIn bool
}

var (
	_ session.Session = (*Session)(nil)
	_ session.Loginer = (*Session)(nil)
)

// Session returns a logged in session for actor@active.
func (c *Chain) Session(actor string) *Session {
	return &Session{chain: c, id: types.NewIdentity(actor, types.ActivePermission), loggedIn: true}
}

func (s *Session) Actor() (types.Identity, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.id, s.loggedIn
}

func (s *Session) Login(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.loggedIn = true
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.loggedIn = false
	return nil
}

func (s *Session) Query(ctx context.Context, name eos.AccountName) (*types.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrQueryFailed, err)
	}
	c := s.chain
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.queryErr != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, c.queryErr)
	}
	acc, err := c.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, err)
	}
	info := acc.clone().info
	return &info, nil
}

func (s *Session) FetchCode(ctx context.Context, name eos.AccountName) (*types.DeployedCode, error) {
	c := s.chain
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.fetchErr != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, c.fetchErr)
	}
	acc, err := c.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, err)
	}
	return &types.DeployedCode{
		Code: append(types.Code{}, acc.code...),
		ABI:  append([]byte{}, acc.abi...),
	}, nil
}

func (s *Session) FetchInterface(ctx context.Context, name eos.AccountName) (*eos.ABI, error) {
	deployed, err := s.FetchCode(ctx, name)
	if err != nil {
		return nil, err
	}
	var abi eos.ABI
	if len(deployed.ABI) == 0 {
		return &abi, nil
	}
	if err := eos.UnmarshalBinary(deployed.ABI, &abi); err != nil {
		return nil, fmt.Errorf("%w: decode abi: %v", types.ErrQueryFailed, err)
	}
	return &abi, nil
}

func (s *Session) Submit(ctx context.Context, actions []*eos.Action) (*session.Receipt, error) {
	id, ok := s.Actor()
	if !ok {
		return nil, types.ErrNoSession
	}
	c := s.chain
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.submitErr != nil {
		return nil, c.submitErr
	}
	txID, err := c.apply(id, actions)
	if err != nil {
		var chainErr *types.ChainError
		if errors.As(err, &chainErr) {
			return nil, fmt.Errorf("%w: %w", types.ErrSubmissionRejected, chainErr)
		}
		return nil, err
	}
	return &session.Receipt{TxID: txID, BlockNum: c.blockNum}, nil
}

// TableRows returns the rows set with SetRows. Key bounds are not applied.
func (s *Session) TableRows(ctx context.Context, query session.TableQuery) (json.RawMessage, error) {
	c := s.chain
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.queryErr != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, c.queryErr)
	}
	acc, err := c.lookup(query.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrQueryFailed, err)
	}
	rows := acc.rows[query.Table]
	if query.Limit > 0 && int(query.Limit) < len(rows) {
		rows = rows[:query.Limit]
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return json.Marshal(rows)
}
