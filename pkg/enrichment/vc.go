package enrichment

import (
	"fmt"
	"time"

	"github.com/sthamann/AXP/pkg/canonicalize"
	"github.com/sthamann/AXP/pkg/evidence"
)

// Credential context and type values for third-party evidence.
const (
	credentialContextW3C = "https://www.w3.org/2018/credentials/v1"
	credentialContextAXP = "https://agentic-commerce.org/axp/v0.1/context"
	credentialTypeBase   = "VerifiableCredential"
	credentialTypeAXP    = "ThirdPartyEvidence"
)

// IssueCredential packages one evidence record as a W3C Verifiable
// Credential. The credential expires when the evidence TTL runs out,
// the subject carries the canonical payload hash, and the proof is
// signed when a signer is configured.
func (o *Orchestrator) IssueCredential(ev *evidence.Evidence) (map[string]interface{}, error) {
	evidenceHash, err := ev.Hash()
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	ttl := ev.TTLHours
	if ttl <= 0 {
		ttl = evidence.DefaultTTLHours
	}

	now := o.now().UTC()
	proofType := "Ed25519Signature2020"
	if o.signer != nil {
		proofType = o.signer.Type()
	}

	vc := map[string]interface{}{
		"@context": []interface{}{
			credentialContextW3C,
			credentialContextAXP,
		},
		"type":           []interface{}{credentialTypeBase, credentialTypeAXP},
		"issuer":         o.issuer,
		"issuanceDate":   now.Format(time.RFC3339),
		"expirationDate": now.Add(time.Duration(ttl) * time.Hour).Format(time.RFC3339),
		"credentialSubject": map[string]interface{}{
			"id":            ev.SourceID,
			"source":        ev.Source,
			"entity":        string(ev.Entity),
			"data":          ev.Clone().Data,
			"evidence_hash": evidenceHash,
			"evidence_url":  ev.EvidenceURL,
		},
		"proof": map[string]interface{}{
			"type":               proofType,
			"created":            now.Format(time.RFC3339),
			"verificationMethod": fmt.Sprintf("%s#key-1", o.issuer),
			"proofPurpose":       "assertionMethod",
		},
	}

	if o.signer != nil {
		payload, err := signingPayload(vc)
		if err != nil {
			return nil, fmt.Errorf("issue credential: %w", err)
		}
		field, value, err := o.signer.Sign(payload)
		if err != nil {
			return nil, fmt.Errorf("issue credential: %w", err)
		}
		vc["proof"].(map[string]interface{})[field] = value
	} else {
		// Unsigned issuance still carries a content binding so the
		// credential is tamper-evident.
		payload, err := canonicalize.JCS(vc)
		if err != nil {
			return nil, fmt.Errorf("issue credential: %w", err)
		}
		vc["proof"].(map[string]interface{})["proofValue"] = canonicalize.HashBytes(payload)
	}

	return vc, nil
}
