package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gigchain/crypto"
)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	endpoint string
	token    string
	http     *http.Client
}

func newClient(endpoint, token string) *client {
	return &client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *client) call(method string, params interface{}) (json.RawMessage, error) {
	reqBody := rpcRequest{JSONRPC: "2.0", Method: method, Params: []interface{}{params}, ID: 1}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var decoded rpcResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	return decoded.Result, nil
}

func printResult(result json.RawMessage) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gig-cli [flags] <command> [args]

Commands:
  create --caller A --to A --amount N --job S --period N
  accept --caller A --id N
  decline --caller A --id N
  get --id N
  vote --caller A --id N --vote V
  artist-accept --caller A --id N [--reject]
  dao-vote --caller A --id N --vote V
  dispute --caller A --id N
  dispute-timeout --caller A --id N
  expired --id N
  can-redeem --id N --principal A
  redeem --caller A --id N
  events [--after N]
  height
  advance-height
  balance --address A
  gen-key

Votes: strongly-agree | agree | somewhat-agree | disagree
Global flags: --rpc URL (default http://127.0.0.1:8545), token via GIG_RPC_TOKEN
`)
	os.Exit(2)
}

func main() {
	endpoint := flag.String("rpc", "http://127.0.0.1:8545", "JSON-RPC endpoint")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	if command == "gen-key" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			fatal(err)
		}
		fmt.Println(key.Address().String())
		return
	}

	rpcClient := newClient(*endpoint, strings.TrimSpace(os.Getenv("GIG_RPC_TOKEN")))

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	caller := fs.String("caller", "", "caller principal (bech32)")
	to := fs.String("to", "", "artist principal (bech32)")
	principal := fs.String("principal", "", "principal to query (bech32)")
	address := fs.String("address", "", "account address (bech32)")
	amount := fs.String("amount", "", "gross price in base units")
	job := fs.String("job", "", "job label")
	vote := fs.String("vote", "", "satisfaction vote")
	id := fs.Uint64("id", 0, "gig id")
	period := fs.Uint64("period", 0, "work period in blocks")
	after := fs.Uint64("after", 0, "replay events after this sequence")
	reject := fs.Bool("reject", false, "reject the client vote instead of accepting it")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	var (
		result json.RawMessage
		err    error
	)
	switch command {
	case "create":
		result, err = rpcClient.call("gig_create", map[string]interface{}{
			"caller": *caller, "to": *to, "amount": *amount, "job": *job, "period": *period,
		})
	case "accept":
		result, err = rpcClient.call("gig_accept", map[string]interface{}{"caller": *caller, "id": *id})
	case "decline":
		result, err = rpcClient.call("gig_decline", map[string]interface{}{"caller": *caller, "id": *id})
	case "get":
		result, err = rpcClient.call("gig_get", map[string]interface{}{"id": *id})
	case "vote":
		result, err = rpcClient.call("gig_clientVote", map[string]interface{}{"caller": *caller, "id": *id, "vote": *vote})
	case "artist-accept":
		result, err = rpcClient.call("gig_artistAcceptance", map[string]interface{}{"caller": *caller, "id": *id, "accept": !*reject})
	case "dao-vote":
		result, err = rpcClient.call("gig_daoVote", map[string]interface{}{"caller": *caller, "id": *id, "vote": *vote})
	case "dispute":
		result, err = rpcClient.call("gig_sendToDispute", map[string]interface{}{"caller": *caller, "id": *id})
	case "dispute-timeout":
		result, err = rpcClient.call("gig_sendToDisputePassedTimeAcceptance", map[string]interface{}{"caller": *caller, "id": *id})
	case "expired":
		result, err = rpcClient.call("gig_checkIsExpired", map[string]interface{}{"id": *id})
	case "can-redeem":
		result, err = rpcClient.call("gig_canRedeem", map[string]interface{}{"id": *id, "principal": *principal})
	case "redeem":
		result, err = rpcClient.call("gig_redeemBack", map[string]interface{}{"caller": *caller, "id": *id})
	case "events":
		result, err = rpcClient.call("gig_events", map[string]interface{}{"after": *after})
	case "height":
		result, err = rpcClient.call("gig_height", map[string]interface{}{})
	case "advance-height":
		result, err = rpcClient.call("gig_advanceHeight", map[string]interface{}{})
	case "balance":
		result, err = rpcClient.call("gig_balance", map[string]interface{}{"address": *address})
	default:
		usage()
	}
	if err != nil {
		fatal(err)
	}
	printResult(result)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "gig-cli: %v\n", err)
	os.Exit(1)
}
