package etherman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
	"github.com/0xPolygon/ethtx-gateway/log"
	localTypes "github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	blockLatest  = "latest"
	blockPending = "pending"
)

var (
	// ErrNotFound is used when the object is not found
	ErrNotFound = ethereum.NotFound
	// ErrPrivateKeyNotFound used when the provided sender does not have a private key registered to be used
	ErrPrivateKeyNotFound = errors.New("can't find sender private key to sign tx")
	// ErrGasPrice is returned when the node reports a zero gas price
	ErrGasPrice = errors.New("failed to get the suggested gas price")
	// ErrHashMismatch is returned when the node acknowledges a different hash than the one broadcast
	ErrHashMismatch = fmt.Errorf("%w: node returned an unexpected transaction hash", localTypes.ErrProtocol)
)

// RPCClient is the subset of the gateway used by the etherman
type RPCClient interface {
	CallFor(ctx context.Context, out interface{}, method string, params ...interface{}) error
	GetLogs(ctx context.Context, filter interface{}) ([]types.Log, error)
	Health(ctx context.Context) (jsonrpc.Health, error)
}

// Client is a typed chain client built on top of the rpc gateway
type Client struct {
	RPC     RPCClient
	cfg     Config
	chainID *big.Int
}

// NewClient creates a new etherman, the chain id is fetched from the node
// when it isn't configured
func NewClient(cfg Config) (*Client, error) {
	gateway, err := jsonrpc.NewGateway(cfg.RPC)
	if err != nil {
		return nil, err
	}
	return NewClientWithRPC(context.Background(), cfg, gateway)
}

// NewClientWithRPC creates a new etherman over an existing rpc client
func NewClientWithRPC(ctx context.Context, cfg Config, rpc RPCClient) (*Client, error) {
	c := &Client{RPC: rpc, cfg: cfg}
	if cfg.ChainID != 0 {
		c.chainID = new(big.Int).SetUint64(cfg.ChainID)
		return c, nil
	}

	var chainID hexutil.Big
	if err := rpc.CallFor(ctx, &chainID, "eth_chainId"); err != nil {
		log.Errorf("failed to fetch chain ID from node: %v", err)
		return nil, err
	}
	c.chainID = chainID.ToInt()
	c.cfg.ChainID = c.chainID.Uint64()
	log.Infof("etherman ChainID set to %d from node", c.cfg.ChainID)
	return c, nil
}

// ChainID returns the chain id the client was configured with or discovered
func (etherMan *Client) ChainID(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(etherMan.chainID), nil
}

// RemoteChainID asks the node for its chain id
func (etherMan *Client) RemoteChainID(ctx context.Context) (*big.Int, error) {
	var chainID hexutil.Big
	if err := etherMan.RPC.CallFor(ctx, &chainID, "eth_chainId"); err != nil {
		return nil, err
	}
	return chainID.ToInt(), nil
}

// GetLatestBlockNumber gets the latest block number from the ethereum
func (etherMan *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	var number hexutil.Uint64
	if err := etherMan.RPC.CallFor(ctx, &number, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(number), nil
}

// GetBaseFee returns the base fee of the latest block, nil before London
func (etherMan *Client) GetBaseFee(ctx context.Context) (*big.Int, error) {
	var header struct {
		BaseFee *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := etherMan.RPC.CallFor(ctx, &header, "eth_getBlockByNumber", blockLatest, false); err != nil {
		return nil, err
	}
	if header.BaseFee == nil {
		return nil, nil
	}
	return header.BaseFee.ToInt(), nil
}

// CurrentNonce returns the current nonce for the provided account
func (etherMan *Client) CurrentNonce(ctx context.Context, account common.Address) (uint64, error) {
	return etherMan.nonceAt(ctx, account, blockLatest)
}

// PendingNonce returns the pending nonce for the provided account
func (etherMan *Client) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	return etherMan.nonceAt(ctx, account, blockPending)
}

func (etherMan *Client) nonceAt(ctx context.Context, account common.Address, block string) (uint64, error) {
	var nonce hexutil.Uint64
	if err := etherMan.RPC.CallFor(ctx, &nonce, "eth_getTransactionCount", account, block); err != nil {
		return 0, err
	}
	return uint64(nonce), nil
}

// SuggestedGasPrice returns the legacy gas price suggested by the network
func (etherMan *Client) SuggestedGasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := etherMan.RPC.CallFor(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	if price.ToInt().Sign() <= 0 {
		return nil, ErrGasPrice
	}
	log.Debug("gasPrice chose: ", price.ToInt())
	return price.ToInt(), nil
}

// EstimateGas returns the estimated gas for the tx
func (etherMan *Client) EstimateGas(
	ctx context.Context,
	from common.Address,
	to *common.Address,
	value *big.Int,
	data []byte,
) (uint64, error) {
	var gas hexutil.Uint64
	if err := etherMan.RPC.CallFor(ctx, &gas, "eth_estimateGas", toCallArg(from, to, value, data)); err != nil {
		return 0, err
	}
	return uint64(gas), nil
}

// CallContract executes a read only call, blockNumber nil means latest
func (etherMan *Client) CallContract(
	ctx context.Context,
	from *common.Address,
	to common.Address,
	data []byte,
	blockNumber *big.Int,
) ([]byte, error) {
	var sender common.Address
	if from != nil {
		sender = *from
	}
	var result hexutil.Bytes
	err := etherMan.RPC.CallFor(ctx, &result, "eth_call", toCallArg(sender, &to, nil, data), toBlockNumArg(blockNumber))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SendTx broadcasts a signed tx with eth_sendRawTransaction
func (etherMan *Client) SendTx(ctx context.Context, tx *types.Transaction) error {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return err
	}
	var hash common.Hash
	if err := etherMan.RPC.CallFor(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return err
	}
	if hash != tx.Hash() {
		return fmt.Errorf("%w: sent %s, got %s", ErrHashMismatch, tx.Hash().String(), hash.String())
	}
	return nil
}

// GetTx function get ethereum tx
func (etherMan *Client) GetTx(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	var raw json.RawMessage
	if err := etherMan.RPC.CallFor(ctx, &raw, "eth_getTransactionByHash", txHash); err != nil {
		return nil, false, translateError(err)
	}
	if isNull(raw) {
		return nil, false, ethereum.NotFound
	}

	var rpcTx rpcTransaction
	if err := json.Unmarshal(raw, &rpcTx); err != nil {
		return nil, false, err
	}
	return rpcTx.tx, rpcTx.BlockNumber == nil, nil
}

// GetTxReceipt function gets ethereum tx receipt
func (etherMan *Client) GetTxReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var raw json.RawMessage
	if err := etherMan.RPC.CallFor(ctx, &raw, "eth_getTransactionReceipt", txHash); err != nil {
		return nil, translateError(err)
	}
	if isNull(raw) {
		return nil, ethereum.NotFound
	}

	var receipt types.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CheckTxWasMined check if a tx was already mined
func (etherMan *Client) CheckTxWasMined(ctx context.Context, txHash common.Hash) (bool, *types.Receipt, error) {
	receipt, err := etherMan.GetTxReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return false, nil, nil
	} else if err != nil {
		return false, nil, err
	}
	return true, receipt, nil
}

// WaitTxReceipt polls the receipt until it is available or the timeout expires
func (etherMan *Client) WaitTxReceipt(
	ctx context.Context,
	txHash common.Hash,
	timeout, interval time.Duration,
) (*types.Receipt, error) {
	return WaitTxReceipt(ctx, txHash, timeout, interval, etherMan)
}

// GetLogs returns the logs matching the eth_getLogs filter object
func (etherMan *Client) GetLogs(ctx context.Context, filter interface{}) ([]types.Log, error) {
	return etherMan.RPC.GetLogs(ctx, filter)
}

// Health returns the chain id and head block of the node pool
func (etherMan *Client) Health(ctx context.Context) (jsonrpc.Health, error) {
	return etherMan.RPC.Health(ctx)
}

// GetRevertMessage tries to get a revert message of a mined transaction
func (etherMan *Client) GetRevertMessage(ctx context.Context, tx *types.Transaction) (string, error) {
	if tx == nil {
		return "", nil
	}

	receipt, err := etherMan.GetTxReceipt(ctx, tx.Hash())
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusFailed {
		return "", nil
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return "", err
	}
	to := tx.To()
	if to == nil {
		return "", nil
	}
	_, err = etherMan.CallContract(ctx, &from, *to, tx.Data(), receipt.BlockNumber)
	if err == nil {
		return "", nil
	}
	return RevertReason(err)
}

// RevertReason extracts the Error(string) message carried by a call error
func RevertReason(err error) (string, error) {
	var dataErr interface{ ErrorData() interface{} }
	if !errors.As(err, &dataErr) {
		return "", err
	}
	data, ok := dataErr.ErrorData().(string)
	if !ok {
		return "", err
	}
	payload, decodeErr := hexutil.Decode(data)
	if decodeErr != nil {
		return "", err
	}
	reason, unpackErr := abi.UnpackRevert(payload)
	if unpackErr != nil {
		log.Warnf("failed to get the revert message: %v", unpackErr)
		return "", errors.New("execution reverted")
	}
	return reason, nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if err.Error() == ethereum.NotFound.Error() {
		return ethereum.NotFound
	}
	return err
}

type rpcTransaction struct {
	tx *types.Transaction
	txExtraInfo
}

type txExtraInfo struct {
	BlockNumber *string         `json:"blockNumber,omitempty"`
	BlockHash   *common.Hash    `json:"blockHash,omitempty"`
	From        *common.Address `json:"from,omitempty"`
}

func (tx *rpcTransaction) UnmarshalJSON(msg []byte) error {
	if err := json.Unmarshal(msg, &tx.tx); err != nil {
		return err
	}
	return json.Unmarshal(msg, &tx.txExtraInfo)
}

func toCallArg(from common.Address, to *common.Address, value *big.Int, data []byte) map[string]interface{} {
	arg := map[string]interface{}{
		"from": from,
	}
	if to != nil {
		arg["to"] = to
	}
	if len(data) > 0 {
		arg["data"] = hexutil.Bytes(data)
	}
	if value != nil {
		arg["value"] = (*hexutil.Big)(value)
	}
	return arg
}

func toBlockNumArg(number *big.Int) string {
	if number == nil {
		return blockLatest
	}
	return hexutil.EncodeBig(number)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
