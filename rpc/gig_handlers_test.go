package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gigchain/core"
	"gigchain/core/genesis"
	"gigchain/storage"
)

const testToken = "test-token"

var (
	testClient = testAddr(0x11)
	testArtist = testAddr(0x22)
)

func testAddr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func newTestServer(t *testing.T) (*Server, *core.Node) {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), testAddr(0x44), testAddr(0x55))
	require.NoError(t, err)
	require.NoError(t, node.ApplyGenesis([]genesis.Entry{
		{Address: testClient, Balance: big.NewInt(10_000_000)},
	}))
	return &Server{node: node, authToken: testToken}, node
}

type rpcResult struct {
	status int
	body   RPCResponse
	raw    json.RawMessage
}

func call(t *testing.T, s *Server, token, method string, params interface{}) rpcResult {
	t.Helper()
	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		reqBody["params"] = []interface{}{params}
	}
	encoded, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(encoded))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp struct {
		RPCResponse
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rpcResult{status: rec.Code, body: resp.RPCResponse, raw: resp.Result}
}

func mustCreateGig(t *testing.T, s *Server) uint64 {
	t.Helper()
	res := call(t, s, testToken, "gig_create", gigCreateParams{
		Caller: formatAddress(testClient),
		To:     formatAddress(testArtist),
		Amount: "1000",
		Job:    "cover art",
		Period: 2016,
	})
	require.Nil(t, res.body.Error)
	var created gigCreateResult
	require.NoError(t, json.Unmarshal(res.raw, &created))
	return created.ID
}

func TestGigCreateAndGet(t *testing.T) {
	s, _ := newTestServer(t)
	id := mustCreateGig(t, s)
	require.Equal(t, uint64(1), id)

	res := call(t, s, "", "gig_get", gigIDParams{ID: id})
	require.Equal(t, http.StatusOK, res.status)
	require.Nil(t, res.body.Error)
	var gig gigJSON
	require.NoError(t, json.Unmarshal(res.raw, &gig))
	require.Equal(t, "975", gig.Amount)
	require.Equal(t, "pending", gig.Status)
	require.Equal(t, "initialized", gig.Satisfaction)
	require.Equal(t, formatAddress(testClient), gig.From)
	require.Equal(t, formatAddress(testArtist), gig.To)
	require.False(t, gig.CompletelyPaid)
}

func TestGigGetMissingReturnsNull(t *testing.T) {
	s, _ := newTestServer(t)
	res := call(t, s, "", "gig_get", gigIDParams{ID: 99})
	require.Equal(t, http.StatusOK, res.status)
	require.Nil(t, res.body.Error)
	require.Equal(t, "null", string(res.raw))
}

func TestMutatingMethodsRequireAuth(t *testing.T) {
	s, _ := newTestServer(t)
	res := call(t, s, "", "gig_create", gigCreateParams{
		Caller: formatAddress(testClient),
		To:     formatAddress(testArtist),
		Amount: "1000",
		Period: 2016,
	})
	require.Equal(t, http.StatusUnauthorized, res.status)
	require.NotNil(t, res.body.Error)
	require.Equal(t, codeUnauthorized, res.body.Error.Code)

	res = call(t, s, "wrong-token", "gig_advanceHeight", nil)
	require.Equal(t, http.StatusUnauthorized, res.status)
}

func TestEngineErrorsKeepStableCodes(t *testing.T) {
	s, _ := newTestServer(t)
	id := mustCreateGig(t, s)

	// Missing record.
	res := call(t, s, testToken, "gig_accept", gigActorParams{Caller: formatAddress(testArtist), ID: id + 1})
	require.Equal(t, http.StatusNotFound, res.status)
	require.Equal(t, 404, res.body.Error.Code)

	// Wrong principal.
	res = call(t, s, testToken, "gig_accept", gigActorParams{Caller: formatAddress(testClient), ID: id})
	require.Equal(t, http.StatusForbidden, res.status)
	require.Equal(t, 405, res.body.Error.Code)

	// Wrong status.
	res = call(t, s, testToken, "gig_daoVote", gigVoteParams{Caller: formatAddress(testAddr(0x55)), ID: id, Vote: "agree"})
	require.Equal(t, http.StatusConflict, res.status)
	require.Equal(t, 415, res.body.Error.Code)
}

func TestFullLifecycleOverRPC(t *testing.T) {
	s, _ := newTestServer(t)
	id := mustCreateGig(t, s)

	res := call(t, s, testToken, "gig_accept", gigActorParams{Caller: formatAddress(testArtist), ID: id})
	require.Nil(t, res.body.Error)

	res = call(t, s, testToken, "gig_clientVote", gigVoteParams{Caller: formatAddress(testClient), ID: id, Vote: "strongly-agree"})
	require.Nil(t, res.body.Error)
	var ok gigBoolResult
	require.NoError(t, json.Unmarshal(res.raw, &ok))
	require.True(t, ok.OK)

	res = call(t, s, "", "gig_balance", gigBalanceParams{Address: formatAddress(testArtist)})
	require.Nil(t, res.body.Error)
	var balance gigBalanceResult
	require.NoError(t, json.Unmarshal(res.raw, &balance))
	require.Equal(t, "975", balance.Balance)

	res = call(t, s, "", "gig_get", gigIDParams{ID: id})
	var gig gigJSON
	require.NoError(t, json.Unmarshal(res.raw, &gig))
	require.Equal(t, "completed", gig.Status)
	require.True(t, gig.CompletelyPaid)
}

func TestHeightEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	res := call(t, s, "", "gig_height", nil)
	require.Nil(t, res.body.Error)
	var height gigHeightResult
	require.NoError(t, json.Unmarshal(res.raw, &height))
	require.Zero(t, height.Height)

	res = call(t, s, testToken, "gig_advanceHeight", nil)
	require.Nil(t, res.body.Error)
	require.NoError(t, json.Unmarshal(res.raw, &height))
	require.Equal(t, uint64(1), height.Height)
}

func TestEventsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	mustCreateGig(t, s)

	res := call(t, s, "", "gig_events", gigEventsParams{After: 0})
	require.Nil(t, res.body.Error)
	var records []gigEventJSON
	require.NoError(t, json.Unmarshal(res.raw, &records))
	require.Len(t, records, 1)
	require.Equal(t, "gigs.created", records[0].Type)
	require.Equal(t, uint64(1), records[0].Sequence)

	res = call(t, s, "", "gig_events", gigEventsParams{After: 1})
	require.NoError(t, json.Unmarshal(res.raw, &records))
	require.Empty(t, records)
}

func TestInvalidRequests(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "", "gig_unknown", nil)
	require.Equal(t, http.StatusNotFound, res.status)
	require.Equal(t, codeMethodNotFound, res.body.Error.Code)

	res = call(t, s, "", "gig_get", map[string]interface{}{"id": "not-a-number"})
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Equal(t, codeInvalidParams, res.body.Error.Code)

	res = call(t, s, "", "gig_balance", gigBalanceParams{Address: "not-an-address"})
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Equal(t, codeInvalidParams, res.body.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
