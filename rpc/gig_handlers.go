package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"gigchain/native/gigs"
	"gigchain/observability"
)

type gigCreateParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Job    string `json:"job"`
	Period uint64 `json:"period"`
}

type gigIDParams struct {
	ID uint64 `json:"id"`
}

type gigActorParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
}

type gigVoteParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	Vote   string `json:"vote"`
}

type gigAcceptanceParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	Accept bool   `json:"accept"`
}

type gigCanRedeemParams struct {
	ID        uint64 `json:"id"`
	Principal string `json:"principal"`
}

type gigEventsParams struct {
	After uint64 `json:"after"`
}

type gigBalanceParams struct {
	Address string `json:"address"`
}

type gigCreateResult struct {
	ID uint64 `json:"id"`
}

type gigIDResult struct {
	ID uint64 `json:"id"`
}

type gigBoolResult struct {
	OK bool `json:"ok"`
}

type gigHeightResult struct {
	Height uint64 `json:"height"`
}

type gigBalanceResult struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type gigEventJSON struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// gigJSON mirrors the original marketplace record projection field for field.
type gigJSON struct {
	ID                   uint64 `json:"id"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	Amount               string `json:"amount"`
	Job                  string `json:"job"`
	Period               uint64 `json:"period"`
	Status               string `json:"status"`
	Satisfaction         string `json:"satisfaction"`
	SatisfactionDisputed string `json:"satisfaction-disputed"`
	BlockCreated         uint64 `json:"block-created"`
	BlockAccepted        uint64 `json:"block-accepted"`
	BlockDisputed        uint64 `json:"block-disputed"`
	CompletelyPaid       bool   `json:"completely-paid"`
}

func formatGigJSON(g *gigs.Gig) gigJSON {
	amount := "0"
	if g.Amount != nil {
		amount = g.Amount.String()
	}
	return gigJSON{
		ID:                   g.ID,
		From:                 formatAddress(g.From),
		To:                   formatAddress(g.To),
		Amount:               amount,
		Job:                  g.Job,
		Period:               g.Period,
		Status:               g.Status.String(),
		Satisfaction:         g.Satisfaction.String(),
		SatisfactionDisputed: g.SatisfactionDisputed.String(),
		BlockCreated:         g.BlockCreated,
		BlockAccepted:        g.BlockAccepted,
		BlockDisputed:        g.BlockDisputed,
		CompletelyPaid:       g.CompletelyPaid,
	}
}

// writeGigError maps engine sentinels onto their stable numeric codes so
// clients can switch on error codes across transports. Errors outside the
// public failure contract surface as generic server errors.
func writeGigError(w http.ResponseWriter, id interface{}, method string, err error) {
	if code, ok := gigs.Code(err); ok {
		status := http.StatusConflict
		switch code {
		case 404:
			status = http.StatusNotFound
		case 405, 406, 407, 408:
			status = http.StatusForbidden
		}
		observability.ModuleMetrics().RecordError(method, strconv.Itoa(code))
		writeError(w, status, id, code, err.Error(), nil)
		return
	}
	observability.ModuleMetrics().RecordError(method, "internal")
	writeError(w, http.StatusInternalServerError, id, codeServerError, "internal_error", err.Error())
}

func decodeSingleParam(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "exactly one parameter object expected")
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return false
	}
	return true
}

func (s *Server) handleGigCreate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigCreateParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	to, err := parseAddress(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, ok := new(big.Int).SetString(params.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "amount must be a positive integer")
		return
	}
	if params.Period == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "period must be positive")
		return
	}
	if len(params.Job) > gigs.MaxJobLength {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "job label too long")
		return
	}
	id, err := s.node.GigCreate(caller, to, amount, params.Job, params.Period)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigCreateResult{ID: id})
}

func (s *Server) handleGigAccept(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigActorParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := s.node.GigAccept(caller, params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigIDResult{ID: id})
}

func (s *Server) handleGigDecline(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigActorParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := s.node.GigDecline(caller, params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigIDResult{ID: id})
}

func (s *Server) handleGigGet(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params gigIDParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	gig, ok, err := s.node.GigGet(params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	if !ok {
		writeResult(w, req.ID, nil)
		return
	}
	writeResult(w, req.ID, formatGigJSON(gig))
}

func (s *Server) handleGigClientVote(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigVoteParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	vote, err := gigs.ParseSatisfaction(params.Vote)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	ok, err := s.node.GigClientVote(caller, params.ID, vote)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigArtistAcceptance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigAcceptanceParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	ok, err := s.node.GigArtistAcceptance(caller, params.ID, params.Accept)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigDaoVote(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigVoteParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	vote, err := gigs.ParseSatisfaction(params.Vote)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	ok, err := s.node.GigDaoVote(caller, params.ID, vote)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigSendToDispute(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigActorParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	ok, err := s.node.GigSendToDispute(caller, params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigSendToDisputePassedTimeAcceptance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigActorParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	ok, err := s.node.GigSendToDisputePassedTimeAcceptance(caller, params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigCheckIsExpired(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params gigIDParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	expired, err := s.node.GigCheckIsExpired(params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: expired})
}

func (s *Server) handleGigCanRedeem(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params gigCanRedeemParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	principal, err := parseAddress(params.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	redeemable, err := s.node.GigCanRedeem(params.ID, principal)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: redeemable})
}

func (s *Server) handleGigRedeemBack(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gigActorParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	ok, err := s.node.GigRedeemBack(caller, params.ID)
	if err != nil {
		writeGigError(w, req.ID, req.Method, err)
		return
	}
	writeResult(w, req.ID, gigBoolResult{OK: ok})
}

func (s *Server) handleGigEvents(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	params := gigEventsParams{}
	if len(req.Params) > 0 && !decodeSingleParam(w, req, &params) {
		return
	}
	records := s.node.Events(params.After)
	out := make([]gigEventJSON, 0, len(records))
	for _, record := range records {
		out = append(out, gigEventJSON{Sequence: record.Sequence, Type: record.Type, Attributes: record.Attributes})
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleGigHeight(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, gigHeightResult{Height: s.node.CurrentHeight()})
}

func (s *Server) handleGigAdvanceHeight(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	height, err := s.node.AdvanceHeight()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "internal_error", err.Error())
		return
	}
	writeResult(w, req.ID, gigHeightResult{Height: height})
}

func (s *Server) handleGigBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params gigBalanceParams
	if !decodeSingleParam(w, req, &params) {
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := s.node.GetAccount(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "internal_error", err.Error())
		return
	}
	writeResult(w, req.ID, gigBalanceResult{
		Address: params.Address,
		Balance: account.Balance.String(),
		Nonce:   account.Nonce,
	})
}
