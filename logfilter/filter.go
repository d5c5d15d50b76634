// Package logfilter builds eth_getLogs filters, fetches logs in bounded block
// ranges and decodes them against a contract ABI.
package logfilter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MaxTopics is the number of topic slots of a log
	MaxTopics = 4
	// DefaultMaxChunk is the default block span of a chunked request
	DefaultMaxChunk = 5000
)

var (
	// ErrInvalidBlock is returned for a block bound that is neither a tag nor a number
	ErrInvalidBlock = errors.New("invalid block")
	// ErrInvalidTopic is returned for a topic index out of range or a value that isn't 32 bytes
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrBlockHashWithRange is returned when a block hash is combined with a block range
	ErrBlockHashWithRange = errors.New("blockHash can't be combined with fromBlock/toBlock")
)

var blockTags = map[string]struct{}{
	"latest":    {},
	"earliest":  {},
	"pending":   {},
	"safe":      {},
	"finalized": {},
}

// LogsGetter runs an eth_getLogs request
type LogsGetter interface {
	GetLogs(ctx context.Context, filter interface{}) ([]types.Log, error)
}

// Filter is the eth_getLogs filter object. Every topic is either nil
// (wildcard), a single hash or a list of alternatives.
type Filter struct {
	FromBlock string           `json:"fromBlock,omitempty"`
	ToBlock   string           `json:"toBlock,omitempty"`
	BlockHash *common.Hash     `json:"blockHash,omitempty"`
	Address   []common.Address `json:"address,omitempty"`
	Topics    []interface{}    `json:"topics,omitempty"`
}

// Builder accumulates filter criteria, errors are reported by Build
type Builder struct {
	getter    LogsGetter
	fromBlock string
	toBlock   string
	blockHash *common.Hash
	addresses []common.Address
	topics    [MaxTopics][]common.Hash
	err       error
}

// NewBuilder creates a builder fetching through getter
func NewBuilder(getter LogsGetter) *Builder {
	return &Builder{getter: getter}
}

// FromBlock sets the first block, see ToBlock for the accepted values
func (b *Builder) FromBlock(block interface{}) *Builder {
	v, err := blockArg(block)
	b.setErr(err)
	b.fromBlock = v
	return b
}

// ToBlock sets the last block. Accepts uint64, int, *big.Int, a block tag,
// a decimal string or a 0x prefixed hex string.
func (b *Builder) ToBlock(block interface{}) *Builder {
	v, err := blockArg(block)
	b.setErr(err)
	b.toBlock = v
	return b
}

// BlockHash restricts the filter to a single block
func (b *Builder) BlockHash(hash common.Hash) *Builder {
	b.blockHash = &hash
	return b
}

// Address adds contract addresses, logs of any of them match
func (b *Builder) Address(addrs ...common.Address) *Builder {
	b.addresses = append(b.addresses, addrs...)
	return b
}

// Topic requires an exact value at position i
func (b *Builder) Topic(i int, value interface{}) *Builder {
	return b.TopicAny(i, value)
}

// TopicAny accepts any of the values at position i
func (b *Builder) TopicAny(i int, values ...interface{}) *Builder {
	if !b.checkIndex(i) {
		return b
	}
	hashes := make([]common.Hash, 0, len(values))
	for _, v := range values {
		h, err := topicValue(v)
		if err != nil {
			b.setErr(err)
			return b
		}
		hashes = append(hashes, h)
	}
	b.topics[i] = hashes
	return b
}

// TopicWildcard matches anything at position i
func (b *Builder) TopicWildcard(i int) *Builder {
	if b.checkIndex(i) {
		b.topics[i] = nil
	}
	return b
}

// Event sets topic 0 to the hash of the event signature, ex: Transfer(address,address,uint256)
func (b *Builder) Event(signature string) *Builder {
	b.topics[0] = []common.Hash{crypto.Keccak256Hash([]byte(strings.ReplaceAll(signature, " ", "")))}
	return b
}

// EventByABI sets topic 0 to the id of the named event of the ABI
func (b *Builder) EventByABI(contractABI abi.ABI, name string) *Builder {
	event, found := contractABI.Events[name]
	if !found {
		b.setErr(fmt.Errorf("%w: %s", ErrEventNotFound, name))
		return b
	}
	b.topics[0] = []common.Hash{event.ID}
	return b
}

// Build validates the criteria and returns the filter, trailing wildcard
// topics are dropped
func (b *Builder) Build() (Filter, error) {
	if b.err != nil {
		return Filter{}, b.err
	}
	if b.blockHash != nil && (b.fromBlock != "" || b.toBlock != "") {
		return Filter{}, ErrBlockHashWithRange
	}

	f := Filter{
		FromBlock: b.fromBlock,
		ToBlock:   b.toBlock,
		BlockHash: b.blockHash,
	}
	if len(b.addresses) > 0 {
		f.Address = append([]common.Address{}, b.addresses...)
	}

	last := -1
	for i := range b.topics {
		if len(b.topics[i]) > 0 {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		switch len(b.topics[i]) {
		case 0:
			f.Topics = append(f.Topics, nil)
		case 1:
			f.Topics = append(f.Topics, b.topics[i][0])
		default:
			f.Topics = append(f.Topics, append([]common.Hash{}, b.topics[i]...))
		}
	}
	return f, nil
}

// Get fetches the logs in a single request
func (b *Builder) Get(ctx context.Context) ([]types.Log, error) {
	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.getter.GetLogs(ctx, f)
}

// Chunked splits a numeric block range in requests spanning at most
// maxChunk+1 blocks. Ranges bounded by tags are fetched at once.
func (b *Builder) Chunked(ctx context.Context, maxChunk uint64) ([]types.Log, error) {
	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	if maxChunk == 0 {
		maxChunk = DefaultMaxChunk
	}

	from, fromErr := hexutil.DecodeUint64(f.FromBlock)
	to, toErr := hexutil.DecodeUint64(f.ToBlock)
	if fromErr != nil || toErr != nil || f.BlockHash != nil {
		return b.getter.GetLogs(ctx, f)
	}

	res := []types.Log{}
	if to < from {
		return res, nil
	}
	for start := from; start <= to; {
		end := to
		if to-start > maxChunk {
			end = start + maxChunk
		}
		chunk := f
		chunk.FromBlock = hexutil.EncodeUint64(start)
		chunk.ToBlock = hexutil.EncodeUint64(end)

		logs, err := b.getter.GetLogs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to get logs of blocks %d-%d: %w", start, end, err)
		}
		log.Debugf("got %d logs from blocks %d-%d", len(logs), start, end)
		res = append(res, logs...)

		if end == to {
			break
		}
		start = end + 1
	}
	return res, nil
}

func (b *Builder) checkIndex(i int) bool {
	if i < 0 || i >= MaxTopics {
		b.setErr(fmt.Errorf("%w: index %d out of [0,%d]", ErrInvalidTopic, i, MaxTopics-1))
		return false
	}
	return true
}

func (b *Builder) setErr(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// PadAddress returns the address left padded to 32 bytes, as stored in topics
func PadAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func blockArg(block interface{}) (string, error) {
	switch v := block.(type) {
	case uint64:
		return hexutil.EncodeUint64(v), nil
	case int:
		if v < 0 {
			return "", fmt.Errorf("%w: %d", ErrInvalidBlock, v)
		}
		return hexutil.EncodeUint64(uint64(v)), nil
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			return "", fmt.Errorf("%w: %v", ErrInvalidBlock, v)
		}
		return hexutil.EncodeBig(v), nil
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if _, found := blockTags[s]; found {
			return s, nil
		}
		if strings.HasPrefix(s, "0x") {
			// nodes and explorers hand out zero padded numbers that hexutil rejects
			n, ok := new(big.Int).SetString(s[2:], 16)
			if !ok || n.Sign() < 0 {
				return "", fmt.Errorf("%w: %q", ErrInvalidBlock, v)
			}
			return hexutil.EncodeBig(n), nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidBlock, v)
		}
		return hexutil.EncodeUint64(n), nil
	}
	return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidBlock, block)
}

func topicValue(v interface{}) (common.Hash, error) {
	switch t := v.(type) {
	case common.Hash:
		return t, nil
	case common.Address:
		return PadAddress(t), nil
	case *big.Int:
		if t == nil || t.Sign() < 0 || t.BitLen() > 256 {
			return common.Hash{}, fmt.Errorf("%w: %v", ErrInvalidTopic, t)
		}
		return common.BigToHash(t), nil
	case uint64:
		return common.BigToHash(new(big.Int).SetUint64(t)), nil
	case []byte:
		if len(t) > common.HashLength {
			return common.Hash{}, fmt.Errorf("%w: %d bytes", ErrInvalidTopic, len(t))
		}
		return common.BytesToHash(t), nil
	case string:
		b, err := hexutil.Decode(t)
		if err != nil || len(b) > common.HashLength {
			return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidTopic, t)
		}
		return common.BytesToHash(b), nil
	}
	return common.Hash{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTopic, v)
}
