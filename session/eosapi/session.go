// Package eosapi implements session.Session against an EOSIO node through
// eos-go. Transactions are signed with keys held in an in-process key bag.
package eosapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/celer-network/go-eosdeploy/log"
	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

var logger = log.NewLogger("eosapi")

type Config struct {
	Endpoint   string
	Account    string
	Permission string
	// Key is the WIF private key for Account@Permission.
	Key     string
	Timeout time.Duration
}

type Session struct {
	api      *eos.API
	cfg      Config
	lock     sync.RWMutex
	id       types.Identity
	loggedIn bool
}

var (
	_ session.Session = (*Session)(nil)
	_ session.Loginer = (*Session)(nil)
)

// New connects to cfg.Endpoint and restores the configured identity.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("chain endpoint required")
	}
	if cfg.Account == "" {
		return nil, errors.New("account required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	api := eos.New(cfg.Endpoint)
	api.HttpClient = &http.Client{Timeout: timeout}

	s := &Session{
		api: api,
		cfg: cfg,
		id:  types.NewIdentity(cfg.Account, cfg.Permission),
	}
	if err := s.Login(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Login imports the configured key. Without a key the session stays
// read-only and Actor reports false.
func (s *Session) Login(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cfg.Key == "" {
		logger.Warn().Str("account", s.id.String()).Msg("no signing key configured, session is read only")
		return nil
	}
	keyBag := eos.NewKeyBag()
	if err := keyBag.ImportPrivateKey(ctx, s.cfg.Key); err != nil {
		return fmt.Errorf("import key for %s: %w", s.id, err)
	}
	s.api.SetSigner(keyBag)
	s.loggedIn = true
	logger.Info().Str("account", s.id.String()).Msg("session restored")
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.api.SetSigner(eos.NewKeyBag())
	s.loggedIn = false
	return nil
}

func (s *Session) Actor() (types.Identity, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.id, s.loggedIn
}

func (s *Session) Query(ctx context.Context, account eos.AccountName) (*types.AccountInfo, error) {
	resp, err := s.api.GetAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: get_account %s: %w", types.ErrQueryFailed, account, translateError(err))
	}
	return toAccountInfo(resp), nil
}

func toAccountInfo(resp *eos.AccountResp) *types.AccountInfo {
	info := &types.AccountInfo{
		Name:           resp.AccountName,
		RAMQuota:       int64(resp.RAMQuota),
		RAMUsage:       int64(resp.RAMUsage),
		LastCodeUpdate: resp.LastCodeUpdate.Time,
	}
	for _, perm := range resp.Permissions {
		info.Permissions = append(info.Permissions, types.Permission{
			Name:   string(perm.PermName),
			Parent: string(perm.Parent),
			Auth:   perm.RequiredAuth,
		})
	}
	return info
}

func (s *Session) FetchCode(ctx context.Context, account eos.AccountName) (*types.DeployedCode, error) {
	resp, err := s.api.GetRawCodeAndABI(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: get_raw_code_and_abi %s: %w", types.ErrQueryFailed, account, translateError(err))
	}
	code, err := base64.StdEncoding.DecodeString(resp.WASMasBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode wasm: %v", types.ErrQueryFailed, err)
	}
	abi, err := base64.StdEncoding.DecodeString(resp.ABIasBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode abi: %v", types.ErrQueryFailed, err)
	}
	return &types.DeployedCode{Code: code, ABI: abi}, nil
}

func (s *Session) FetchInterface(ctx context.Context, account eos.AccountName) (*eos.ABI, error) {
	resp, err := s.api.GetABI(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: get_abi %s: %w", types.ErrQueryFailed, account, translateError(err))
	}
	return &resp.ABI, nil
}

func (s *Session) Submit(ctx context.Context, actions []*eos.Action) (*session.Receipt, error) {
	if _, ok := s.Actor(); !ok {
		return nil, types.ErrNoSession
	}
	resp, err := s.api.SignPushActions(ctx, actions...)
	if err != nil {
		translated := translateError(err)
		var chainErr *types.ChainError
		if errors.As(translated, &chainErr) {
			return nil, fmt.Errorf("%w: %w", types.ErrSubmissionRejected, chainErr)
		}
		return nil, fmt.Errorf("push transaction: %w", err)
	}
	return &session.Receipt{TxID: resp.TransactionID}, nil
}

func (s *Session) TableRows(ctx context.Context, query session.TableQuery) (json.RawMessage, error) {
	resp, err := s.api.GetTableRows(ctx, eos.GetTableRowsRequest{
		JSON:       true,
		Code:       string(query.Code),
		Scope:      query.Scope,
		Table:      query.Table,
		LowerBound: query.LowerBound,
		UpperBound: query.UpperBound,
		Limit:      query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get_table_rows %s: %w", types.ErrQueryFailed, query.Table, translateError(err))
	}
	return resp.Rows, nil
}
