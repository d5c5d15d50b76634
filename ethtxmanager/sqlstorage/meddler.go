package sqlstorage

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

// timeLayout is RFC3339 with a fixed microsecond fraction
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func initMeddler() {
	meddler.Default = meddler.SQLite
	meddler.Register("address", AddressMeddler{})
	meddler.Register("bigInt", BigIntMeddler{})
	meddler.Register("hash", HashMeddler{})
	meddler.Register("timeRFC3339", TimeRFC3339Meddler{})
}

// AddressMeddler encodes or decodes an address to or from its hex string,
// a nil *common.Address is stored as NULL
type AddressMeddler struct{}

// PreRead is called before a Scan operation for fields that have the AddressMeddler
func (m AddressMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the AddressMeddler
func (m AddressMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	nullStr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}

	switch addr := fieldPtr.(type) {
	case *common.Address:
		if addr == nil {
			return errors.New("AddressMeddler.PostRead: fieldPtr is nil *common.Address")
		}
		*addr = common.Address{}
		if nullStr.Valid {
			*addr = common.HexToAddress(nullStr.String)
		}
	case **common.Address:
		*addr = nil
		if nullStr.Valid {
			a := common.HexToAddress(nullStr.String)
			*addr = &a
		}
	default:
		return errors.New("fieldPtr is neither *common.Address nor **common.Address")
	}
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the AddressMeddler
func (m AddressMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	switch addr := fieldPtr.(type) {
	case common.Address:
		return addr.Hex(), nil
	case *common.Address:
		if addr == nil {
			return nil, nil
		}
		return addr.Hex(), nil
	default:
		return nil, errors.New("fieldPtr is neither common.Address nor *common.Address")
	}
}

// BigIntMeddler stores a *big.Int as its decimal string, reading accepts
// decimal and 0x prefixed hex values
type BigIntMeddler struct{}

// PreRead is called before a Scan operation for fields that have the BigIntMeddler
func (m BigIntMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the BigIntMeddler
func (m BigIntMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	nullStr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(**big.Int)
	if !ok {
		return errors.New("fieldPtr is not **big.Int")
	}

	if !nullStr.Valid {
		*field = nil
		return nil
	}
	parsedInt, ok := new(big.Int).SetString(nullStr.String, 0)
	if !ok {
		return fmt.Errorf("big.Int.SetString failed on value \"%v\"", nullStr.String)
	}
	*field = parsedInt
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the BigIntMeddler
func (m BigIntMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(*big.Int)
	if !ok {
		return nil, errors.New("fieldPtr is not *big.Int")
	}
	if field == nil {
		return nil, nil
	}
	return field.String(), nil
}

// HashMeddler encodes or decodes the field value to or from string,
// a nil *common.Hash is stored as NULL
type HashMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashMeddler
func (m HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the HashMeddler
func (m HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	nullStr, ok := scanTarget.(*sql.NullString)
	if !ok || nullStr == nil {
		return errors.New("scanTarget is not *sql.NullString")
	}

	switch field := fieldPtr.(type) {
	case *common.Hash:
		if !nullStr.Valid {
			*field = common.Hash{}
			return nil
		}
		*field = common.HexToHash(nullStr.String)
		return nil
	case **common.Hash:
		return m.postReadDoublePtr(field, nullStr)
	default:
		return errors.New("fieldPtr is neither *common.Hash nor **common.Hash")
	}
}

func (m HashMeddler) postReadDoublePtr(field **common.Hash, nullStr *sql.NullString) error {
	if field == nil || nullStr == nil {
		return errors.New("HashMeddler.PostRead: nil pointer")
	}
	if !nullStr.Valid {
		*field = nil
		return nil
	}
	h := common.HexToHash(nullStr.String)
	*field = &h
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the HashMeddler
func (m HashMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	switch field := fieldPtr.(type) {
	case common.Hash:
		return field.Hex(), nil
	case *common.Hash:
		if field == nil {
			return nil, nil
		}
		return field.Hex(), nil
	default:
		return nil, errors.New("fieldPtr is neither common.Hash nor *common.Hash")
	}
}

// TimeRFC3339Meddler stores time.Time as a fixed width RFC3339 UTC string,
// the zero time is stored as NULL
type TimeRFC3339Meddler struct{}

// PreRead is called before a Scan operation for fields that have the TimeRFC3339Meddler
func (m TimeRFC3339Meddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the TimeRFC3339Meddler
func (m TimeRFC3339Meddler) PostRead(fieldPtr, scanTarget interface{}) error {
	nullStr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(*time.Time)
	if !ok {
		return errors.New("fieldPtr is not *time.Time")
	}

	if !nullStr.Valid || nullStr.String == "" {
		*field = time.Time{}
		return nil
	}
	parsedTime, err := time.Parse(time.RFC3339, nullStr.String)
	if err != nil {
		return fmt.Errorf("failed to parse time in RFC3339 format: %w", err)
	}
	*field = parsedTime
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the TimeRFC3339Meddler
func (m TimeRFC3339Meddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(time.Time)
	if !ok {
		return nil, errors.New("fieldPtr is not time.Time")
	}
	if field.IsZero() {
		return nil, nil
	}
	// fixed width so that the text columns sort chronologically
	return field.UTC().Format(timeLayout), nil
}
