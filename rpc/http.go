package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gigchain/core"
	"gigchain/crypto"
	"gigchain/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the gig marketplace over JSON-RPC 2.0. Mutating methods
// require the bearer token configured through GIG_RPC_TOKEN; read-only
// methods are open.
type Server struct {
	node      *core.Node
	authToken string
}

// NewServer builds an RPC server bound to the node.
func NewServer(node *core.Node) *Server {
	token := strings.TrimSpace(os.Getenv("GIG_RPC_TOKEN"))
	return &Server{node: node, authToken: token}
}

// Handler assembles the HTTP routes: the JSON-RPC endpoint, the websocket
// event stream and the prometheus scrape target.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.HandleFunc("/ws/gigs", s.handleGigEventsWS)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves the RPC surface on addr until the listener fails.
func (s *Server) Start(addr string) error {
	fmt.Printf("Starting JSON-RPC server on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

type authError struct {
	Code    int
	Message string
	Data    interface{}
}

func (s *Server) requireAuth(r *http.Request) *authError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &authError{Code: codeUnauthorized, Message: "unauthorized", Data: "bearer token required"}
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) != 1 {
		return &authError{Code: codeUnauthorized, Message: "unauthorized", Data: "invalid token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "invalid_request", "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse_error", err.Error())
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse_error", err.Error())
		return
	}
	if req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid_request", "jsonrpc must be 2.0")
		return
	}
	w.Header().Set("Content-Type", "application/json")

	started := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.dispatch(recorder, r, &req)
	metrics := observability.ModuleMetrics()
	outcome := "ok"
	if recorder.status >= http.StatusBadRequest {
		outcome = "error"
	}
	metrics.RecordRequest(req.Method, outcome)
	metrics.ObserveLatency(req.Method, time.Since(started))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	switch req.Method {
	case "gig_create":
		s.handleGigCreate(w, r, req)
	case "gig_accept":
		s.handleGigAccept(w, r, req)
	case "gig_decline":
		s.handleGigDecline(w, r, req)
	case "gig_get":
		s.handleGigGet(w, r, req)
	case "gig_clientVote":
		s.handleGigClientVote(w, r, req)
	case "gig_artistAcceptance":
		s.handleGigArtistAcceptance(w, r, req)
	case "gig_daoVote":
		s.handleGigDaoVote(w, r, req)
	case "gig_sendToDispute":
		s.handleGigSendToDispute(w, r, req)
	case "gig_sendToDisputePassedTimeAcceptance":
		s.handleGigSendToDisputePassedTimeAcceptance(w, r, req)
	case "gig_checkIsExpired":
		s.handleGigCheckIsExpired(w, r, req)
	case "gig_canRedeem":
		s.handleGigCanRedeem(w, r, req)
	case "gig_redeemBack":
		s.handleGigRedeemBack(w, r, req)
	case "gig_events":
		s.handleGigEvents(w, r, req)
	case "gig_height":
		s.handleGigHeight(w, r, req)
	case "gig_advanceHeight":
		s.handleGigAdvanceHeight(w, r, req)
	case "gig_balance":
		s.handleGigBalance(w, r, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method_not_found", req.Method)
	}
}

func parseAddress(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return [20]byte{}, fmt.Errorf("address required")
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

func formatAddress(addr [20]byte) string {
	formatted, err := crypto.NewAddress(addr[:])
	if err != nil {
		return ""
	}
	return formatted.String()
}
