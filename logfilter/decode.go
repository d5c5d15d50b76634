package logfilter

import (
	"fmt"

	"github.com/0xPolygon/ethtx-gateway/abicodec"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrEventNotFound is returned when no event of the ABI matches the log
var ErrEventNotFound = abicodec.ErrEventNotFound

// MatchEvent returns the event of the ABI whose id is the first topic of the log
func MatchEvent(contractABI abi.ABI, l types.Log) (abi.Event, error) {
	if len(l.Topics) == 0 {
		return abi.Event{}, fmt.Errorf("%w: log without topics", ErrEventNotFound)
	}
	for _, event := range contractABI.Events {
		if !event.Anonymous && event.ID == l.Topics[0] {
			return event, nil
		}
	}
	return abi.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, l.Topics[0].String())
}

// DecodeEvent decodes the arguments of the log. Indexed arguments come from
// the topics, indexed strings and bytes are only available as their hash.
// Unnamed arguments are keyed by their position as argN.
func DecodeEvent(contractABI abi.ABI, l types.Log) (map[string]interface{}, error) {
	event, err := MatchEvent(contractABI, l)
	if err != nil {
		return nil, err
	}

	res := make(map[string]interface{}, len(event.Inputs))
	topic := 1
	var dataNames, dataTypes []string
	for i, input := range event.Inputs {
		name := input.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		typeName := input.Type.String()

		if !input.Indexed {
			dataNames = append(dataNames, name)
			dataTypes = append(dataTypes, typeName)
			continue
		}

		if topic >= len(l.Topics) {
			return nil, fmt.Errorf("%w: missing topic for %s", abicodec.ErrInvalidResult, name)
		}
		if abicodec.IsDynamicType(typeName) {
			res[name] = l.Topics[topic]
		} else {
			v, err := abicodec.DecodeStaticSlot(typeName, l.Topics[topic].Bytes())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			res[name] = v
		}
		topic++
	}

	values, err := abicodec.DecodeArguments(dataTypes, l.Data)
	if err != nil {
		return nil, fmt.Errorf("%s data: %w", event.Name, err)
	}
	for i, v := range values {
		res[dataNames[i]] = v
	}
	return res, nil
}
