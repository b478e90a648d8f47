package enrichment

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sthamann/AXP/pkg/canonicalize"
)

// ProofSigner signs the canonical form of a credential document and
// names the proof field the signature belongs in.
type ProofSigner interface {
	// Type is the proof type recorded in the credential.
	Type() string
	// Sign returns the proof field name and the encoded signature for
	// the canonical payload.
	Sign(payload []byte) (field, value string, err error)
}

// signingPayload canonicalizes a credential with the signature fields
// stripped from its proof. Signer and verifier must agree on this form.
func signingPayload(vc map[string]interface{}) ([]byte, error) {
	doc := make(map[string]interface{}, len(vc))
	for k, v := range vc {
		doc[k] = v
	}
	if proof, ok := vc["proof"].(map[string]interface{}); ok {
		bare := make(map[string]interface{}, len(proof))
		for k, v := range proof {
			if k == "proofValue" || k == "jws" {
				continue
			}
			bare[k] = v
		}
		doc["proof"] = bare
	}
	return canonicalize.JCS(doc)
}

// Ed25519Signer produces Ed25519Signature2020 proofs with a raw
// base64url proofValue.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519Signer generates a fresh keypair.
func NewEd25519Signer() (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &Ed25519Signer{priv: priv, pub: pub}, nil
}

// NewEd25519SignerFromKey wraps an existing private key.
func NewEd25519SignerFromKey(priv ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}
}

func (s *Ed25519Signer) Type() string { return "Ed25519Signature2020" }

func (s *Ed25519Signer) Sign(payload []byte) (string, string, error) {
	sig := ed25519.Sign(s.priv, payload)
	return "proofValue", base64.RawURLEncoding.EncodeToString(sig), nil
}

// PublicKey returns the verification key.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey { return s.pub }

// Verify checks the proofValue of a credential against the signer's
// public key. It matches the trust verifier's proof hook signature.
func (s *Ed25519Signer) Verify(vc map[string]interface{}) bool {
	proof, ok := vc["proof"].(map[string]interface{})
	if !ok {
		return false
	}
	encoded, ok := proof["proofValue"].(string)
	if !ok {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	payload, err := signingPayload(vc)
	if err != nil {
		return false
	}
	return ed25519.Verify(s.pub, payload, sig)
}

// JWSSigner produces JsonWebSignature2020 proofs: an EdDSA JWT whose
// claims bind the canonical payload hash.
type JWSSigner struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	iss  string
	now  func() time.Time
}

// NewJWSSigner generates a fresh keypair for JWS proofs.
func NewJWSSigner(issuer string) (*JWSSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &JWSSigner{priv: priv, pub: pub, iss: issuer, now: time.Now}, nil
}

func (s *JWSSigner) Type() string { return "JsonWebSignature2020" }

func (s *JWSSigner) Sign(payload []byte) (string, string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"iss":  s.iss,
		"iat":  s.now().Unix(),
		"hash": canonicalize.HashBytes(payload),
	})
	signed, err := token.SignedString(s.priv)
	if err != nil {
		return "", "", fmt.Errorf("sign jws: %w", err)
	}
	return "jws", signed, nil
}

// Verify checks the jws of a credential: valid EdDSA signature and a
// hash claim matching the canonical payload.
func (s *JWSSigner) Verify(vc map[string]interface{}) bool {
	proof, ok := vc["proof"].(map[string]interface{})
	if !ok {
		return false
	}
	raw, ok := proof["jws"].(string)
	if !ok {
		return false
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.pub, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	payload, err := signingPayload(vc)
	if err != nil {
		return false
	}
	hash, _ := claims["hash"].(string)
	return hash == canonicalize.HashBytes(payload)
}
