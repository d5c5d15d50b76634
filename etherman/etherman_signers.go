package etherman

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xPolygon/ethtx-gateway/log"
	localTypes "github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const privateKeyHexLength = 64

// KeySigner signs digests with an in memory secp256k1 key
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner loads a 0x prefixed hex private key
func NewKeySigner(hexKey string) (*KeySigner, error) {
	k := strings.TrimSpace(hexKey)
	if !strings.HasPrefix(k, "0x") || len(k) != privateKeyHexLength+2 {
		return nil, fmt.Errorf("%w: private key must be 0x followed by %d hex characters", localTypes.ErrSigning, privateKeyHexLength)
	}
	key, err := crypto.HexToECDSA(k[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localTypes.ErrSigning, err)
	}
	return newKeySigner(key), nil
}

// NewKeySignerFromKeystore decrypts a keystore file
func NewKeySignerFromKeystore(path, password string) (*KeySigner, error) {
	log.Infof("reading key from: %v", path)
	keystoreEncrypted, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	log.Infof("decrypting key from: %v", path)
	key, err := keystore.DecryptKey(keystoreEncrypted, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localTypes.ErrSigning, err)
	}
	return newKeySigner(key.PrivateKey), nil
}

// GenerateKey creates a random key and returns its hex form and address
func GenerateKey() (string, common.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", common.Address{}, err
	}
	return hexutil.Encode(crypto.FromECDSA(key)), crypto.PubkeyToAddress(key.PublicKey), nil
}

func newKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Address returns the account of the key
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignHash signs the digest, the signature is [R || S || V] with V in {0, 1}
func (s *KeySigner) SignHash(digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localTypes.ErrSigning, err)
	}
	return sig, nil
}

// SignTx signs an EIP-1559 transaction with the signer of the sender
func SignTx(signer localTypes.Signer, tx *types.Transaction) (*types.Transaction, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: no signer", localTypes.ErrSigning)
	}
	txSigner := types.LatestSignerForChainID(tx.ChainId())
	sig, err := signer.SignHash(txSigner.Hash(tx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localTypes.ErrSigning, err)
	}
	signed, err := tx.WithSignature(txSigner, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localTypes.ErrSigning, err)
	}
	return signed, nil
}

// Signers holds the signers of every configured account
type Signers struct {
	mu      sync.RWMutex
	signers map[common.Address]localTypes.Signer
}

// NewSigners loads every configured key
func NewSigners(cfg SignersConfig) (*Signers, error) {
	res := &Signers{signers: make(map[common.Address]localTypes.Signer)}
	for _, ks := range cfg.PrivateKeys {
		if ks.Path == "" && ks.Password == "" {
			continue
		}
		s, err := NewKeySignerFromKeystore(ks.Path, ks.Password)
		if err != nil {
			return nil, err
		}
		if err := res.Add(s); err != nil {
			return nil, err
		}
	}
	for _, k := range cfg.HexKeys {
		s, err := NewKeySigner(k)
		if err != nil {
			return nil, err
		}
		if err := res.Add(s); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Add registers a signer, an address can only have one signer
func (s *Signers) Add(signer localTypes.Signer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := signer.Address()
	if _, found := s.signers[addr]; found {
		return fmt.Errorf("multiple signers for address %s", addr.Hex())
	}
	log.Infof("added signer for address: %v", addr.String())
	s.signers[addr] = signer
	return nil
}

// Get returns the signer of the address
func (s *Signers) Get(addr common.Address) (localTypes.Signer, error) {
	if s == nil {
		return nil, ErrPrivateKeyNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	signer, found := s.signers[addr]
	if !found {
		return nil, ErrPrivateKeyNotFound
	}
	return signer, nil
}

// PublicAddress returns the public addresses of the signers
func (s *Signers) PublicAddress() []common.Address {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]common.Address, 0, len(s.signers))
	for addr := range s.signers {
		res = append(res, addr)
	}
	return res
}

// SignTx tries to sign a transaction accordingly to the provided sender
func (s *Signers) SignTx(sender common.Address, tx *types.Transaction) (*types.Transaction, error) {
	signer, err := s.Get(sender)
	if err != nil {
		return nil, err
	}
	return SignTx(signer, tx)
}
