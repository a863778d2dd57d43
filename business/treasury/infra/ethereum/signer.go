// Package ethereum provides the Ethereum infrastructure adapters for the treasury context.
package ethereum

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/fd1az/treasury-bot/internal/apperror"
)

// SigningIdentity is the treasury's signing key, derived once from the
// configured secret and immutable for the process lifetime.
type SigningIdentity struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	signer     types.Signer
}

// NewSigningIdentity derives an identity from a hex-encoded private key,
// bound to the given chain id for replay protection.
func NewSigningIdentity(privateKeyHex string, chainID uint64) (*SigningIdentity, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, apperror.New(apperror.CodeSignerError,
			apperror.WithCause(err),
			apperror.WithContext("failed to parse treasury private key"))
	}

	return &SigningIdentity{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		signer:     types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)),
	}, nil
}

// Address returns the treasury address derived from the key.
func (s *SigningIdentity) Address() common.Address {
	return s.address
}

// SignTx signs tx with the identity's key and chain-bound signer.
func (s *SigningIdentity) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, s.signer, s.privateKey)
	if err != nil {
		return nil, apperror.New(apperror.CodeSignerError,
			apperror.WithCause(err),
			apperror.WithContext("failed to sign transaction"))
	}
	return signed, nil
}
