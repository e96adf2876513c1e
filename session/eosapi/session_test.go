package eosapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountJSON = `{
  "account_name": "alice",
  "last_code_update": "2024-05-01T10:00:00.000",
  "created": "2024-01-01T00:00:00.000",
  "ram_quota": 5000,
  "ram_usage": 3000,
  "permissions": [
    {"perm_name": "active", "parent": "owner", "required_auth": {
      "threshold": 1, "keys": [], "waits": [],
      "accounts": [{"permission": {"actor": "alice", "permission": "eosio.code"}, "weight": 1}]
    }},
    {"perm_name": "owner", "parent": "", "required_auth": {"threshold": 1, "keys": [], "accounts": [], "waits": []}}
  ]
}`

func newTestSession(t *testing.T, routes map[string]string) *Session {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":500,"message":"Internal Service Error","error":{"code":3060003,"name":"contract_table_query_exception","what":"Contract Table Query Exception","details":[]}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	s, err := New(context.Background(), Config{Endpoint: server.URL, Account: "alice"})
	require.NoError(t, err)
	return s
}

func TestNewRequiresEndpointAndAccount(t *testing.T) {
	_, err := New(context.Background(), Config{Account: "alice"})
	assert.Error(t, err)
	_, err = New(context.Background(), Config{Endpoint: "http://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestReadOnlyWithoutKey(t *testing.T) {
	s := newTestSession(t, nil)
	id, ok := s.Actor()
	assert.False(t, ok)
	assert.Equal(t, "alice@active", id.String())

	_, err := s.Submit(context.Background(), nil)
	assert.True(t, errors.Is(err, types.ErrNoSession))
}

func TestQueryTranslatesAccount(t *testing.T) {
	s := newTestSession(t, map[string]string{"/v1/chain/get_account": accountJSON})

	info, err := s.Query(context.Background(), eos.AN("alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), info.RAMQuota)
	assert.Equal(t, int64(3000), info.RAMUsage)
	assert.Equal(t, int64(2000), info.FreeRAM())
	assert.True(t, info.HasCode())

	active, ok := info.Permission(types.ActivePermission)
	require.True(t, ok)
	assert.Equal(t, "owner", active.Parent)
	require.Len(t, active.Auth.Accounts, 1)
	assert.Equal(t, eos.PN(types.CodePermission), active.Auth.Accounts[0].Permission.Permission)
}

func TestQueryFailure(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.Query(context.Background(), eos.AN("alice"))
	assert.True(t, errors.Is(err, types.ErrQueryFailed))
}

func TestFetchCodeDecodesBase64(t *testing.T) {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01}
	abi := []byte{0x0e, 'e', 'o', 's'}
	s := newTestSession(t, map[string]string{
		"/v1/chain/get_raw_code_and_abi": fmt.Sprintf(`{"account_name":"alice","wasm":"%s","abi":"%s"}`,
			base64.StdEncoding.EncodeToString(wasm), base64.StdEncoding.EncodeToString(abi)),
	})

	deployed, err := s.FetchCode(context.Background(), eos.AN("alice"))
	require.NoError(t, err)
	assert.Equal(t, types.Code(wasm), deployed.Code)
	assert.Equal(t, abi, deployed.ABI)
}

func TestTableRows(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"/v1/chain/get_table_rows": `{"rows":[{"vaulta_account":"bob","is_admin":0}],"more":false}`,
	})
	rows, err := s.TableRows(context.Background(), sessionQuery("users"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"vaulta_account":"bob","is_admin":0}]`, string(rows))
}

func TestTranslateError(t *testing.T) {
	var apiErr eos.APIError
	apiErr.Code = 500
	apiErr.Message = "Internal Service Error"
	apiErr.ErrorStruct.Code = types.ChainCodeSetExactCode
	apiErr.ErrorStruct.Name = "set_exact_code"
	apiErr.ErrorStruct.What = "Contract is already running this version of code"
	apiErr.ErrorStruct.Details = []eos.APIErrorDetail{{Message: "contract is already running this version of code"}}

	var chainErr *types.ChainError
	require.True(t, errors.As(translateError(apiErr), &chainErr))
	assert.Equal(t, types.ChainCodeSetExactCode, chainErr.Code)
	assert.Equal(t, "set_exact_code", chainErr.Name)
	assert.Equal(t, 500, chainErr.Status)
	assert.Equal(t, "contract is already running this version of code", chainErr.Message)

	plain := errors.New("dial tcp: connection refused")
	assert.Equal(t, plain, translateError(plain))
}

func sessionQuery(table string) session.TableQuery {
	return session.TableQuery{Code: eos.AN("alice"), Scope: "alice", Table: table, Limit: 10}
}

// devKey is the well known eosio development key.
const devKey = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"

const infoJSON = `{
  "server_version": "d1bc8d3",
  "chain_id": "cf057bbfb72640471fd910bcb67639c22df9f92470936cddc1ade0e2f2e7dc4f",
  "head_block_num": 100,
  "last_irreversible_block_num": 99,
  "last_irreversible_block_id": "0000006313b2eaa2b8a8ae8e0c6ac0a9a5c8e2d8a1b3b2a1c0d0e0f001020304",
  "head_block_id": "00000064f3b2eaa2b8a8ae8e0c6ac0a9a5c8e2d8a1b3b2a1c0d0e0f001020304",
  "head_block_time": "2024-05-01T10:00:00.000",
  "head_block_producer": "eosio"
}`

const setExactCodeJSON = `{"code":500,"message":"Internal Service Error","error":{"code":3160008,"name":"set_exact_code","what":"Contract is already running this version of code","details":[{"message":"contract is already running this version of code","file":"wasm_interface.cpp","line_number":596,"method":"setcode"}]}}`

// newSigningSession serves a node that signs through the session key bag and
// answers push_transaction with pushStatus and pushBody.
func newSigningSession(t *testing.T, pushStatus int, pushBody string) *Session {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/chain/get_info":
			fmt.Fprint(w, infoJSON)
		case "/v1/chain/get_required_keys":
			var req struct {
				AvailableKeys []string `json:"available_keys"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			out, _ := json.Marshal(map[string][]string{"required_keys": req.AvailableKeys})
			w.Write(out)
		case "/v1/chain/push_transaction":
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(pushStatus)
			fmt.Fprint(w, pushBody)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":404,"message":"Not Found","error":{"code":0,"name":"","what":"unknown endpoint","details":[]}}`)
		}
	}))
	t.Cleanup(server.Close)

	s, err := New(context.Background(), Config{Endpoint: server.URL, Account: "alice", Key: devKey})
	require.NoError(t, err)
	return s
}

func setCodeAction() *eos.Action {
	return &eos.Action{
		Account:       eos.AN("eosio"),
		Name:          eos.ActN("setcode"),
		Authorization: []eos.PermissionLevel{{Actor: "alice", Permission: "active"}},
		ActionData: eos.NewActionData(system.SetCode{
			Account: "alice",
			Code:    eos.HexBytes{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		}),
	}
}

func TestSubmitSetExactCodeRejection(t *testing.T) {
	s := newSigningSession(t, http.StatusInternalServerError, setExactCodeJSON)
	_, ok := s.Actor()
	require.True(t, ok)

	_, err := s.Submit(context.Background(), []*eos.Action{setCodeAction()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSubmissionRejected))

	var chainErr *types.ChainError
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, types.ChainCodeSetExactCode, chainErr.Code)
	assert.Equal(t, "set_exact_code", chainErr.Name)
	assert.Equal(t, http.StatusInternalServerError, chainErr.Status)
}

func TestSubmitAccepted(t *testing.T) {
	s := newSigningSession(t, http.StatusAccepted, `{"transaction_id":"6b0f7b2ce2e9d1b8ce1e1a7c1a8e1f1d0c7b2e4f3a5d6c7b8a9e0f1d2c3b4a59"}`)

	receipt, err := s.Submit(context.Background(), []*eos.Action{setCodeAction()})
	require.NoError(t, err)
	assert.Equal(t, "6b0f7b2ce2e9d1b8ce1e1a7c1a8e1f1d0c7b2e4f3a5d6c7b8a9e0f1d2c3b4a59", receipt.TxID)
}
