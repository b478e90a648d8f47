package trust

import (
	"fmt"
	"math"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// credentialSchema is the structural contract for a verifiable credential.
// It gates the rest of the verification: a document that fails here gets
// confidence 0.1 without any further checks.
const credentialSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["@context", "type", "issuer", "issuanceDate", "credentialSubject", "proof"],
  "properties": {
    "@context": {"type": "array", "minItems": 1},
    "type": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "issuer": {"type": ["string", "object"]},
    "issuanceDate": {"type": "string"},
    "expirationDate": {"type": "string"},
    "credentialSubject": {"type": "object"},
    "credentialStatus": {"type": "object"},
    "proof": {"type": "object"}
  }
}`

var credentialSchema = jsonschema.MustCompileString("credential.schema.json", credentialSchemaJSON)

var requiredCredentialFields = []string{
	"@context", "type", "issuer", "issuanceDate", "credentialSubject", "proof",
}

// VerifyCredential verifies a W3C Verifiable Credential document:
// structure, proof, expiration, revocation status, and issuer trust.
// Structural failures collapse confidence to 0.1; otherwise each anomaly
// subtracts 0.2 from 0.95 with a floor of 0.2.
func (v *Verifier) VerifyCredential(vc map[string]interface{}) Result {
	var anomalies []string

	if err := credentialSchema.Validate(normalizeForSchema(vc)); err != nil {
		for _, field := range requiredCredentialFields {
			if _, ok := vc[field]; !ok {
				anomalies = append(anomalies, fmt.Sprintf("Missing required field: %s", field))
			}
		}
		if len(anomalies) == 0 {
			anomalies = append(anomalies, fmt.Sprintf("Malformed credential: %v", err))
		}
		return Result{
			Method:      MethodVC,
			Confidence:  0.1,
			LastChecked: v.now(),
			Anomalies:   anomalies,
			RawData:     vc,
		}
	}

	if !v.proofValid(vc) {
		anomalies = append(anomalies, "Proof verification failed")
	}

	if expiryRaw, ok := vc["expirationDate"].(string); ok {
		expiry, err := time.Parse(time.RFC3339, expiryRaw)
		if err != nil {
			anomalies = append(anomalies, fmt.Sprintf("Unparseable expirationDate: %q", expiryRaw))
		} else if expiry.Before(v.now()) {
			anomalies = append(anomalies, "Credential expired")
		}
	}

	if status, ok := vc["credentialStatus"].(map[string]interface{}); ok {
		if revoked, _ := status["revoked"].(bool); revoked {
			anomalies = append(anomalies, "Credential revoked")
		}
	}

	if !v.registry.Trusted(issuerID(vc["issuer"])) {
		anomalies = append(anomalies, "Issuer not in trust registry")
	}

	confidence := 0.95
	if len(anomalies) > 0 {
		confidence = math.Max(0.2, 0.95-float64(len(anomalies))*0.2)
	}

	return Result{
		Method:          MethodVC,
		Confidence:      confidence,
		LastChecked:     v.now(),
		SourceSignature: proofSignature(vc),
		Anomalies:       anomalies,
		RawData:         vc,
	}
}

func (v *Verifier) proofValid(vc map[string]interface{}) bool {
	if v.verifyProof != nil {
		return v.verifyProof(vc)
	}
	// Without a configured proof verifier only presence is checked.
	proof, ok := vc["proof"].(map[string]interface{})
	return ok && len(proof) > 0
}

// issuerID extracts the issuer identifier from either the string or the
// expanded object form.
func issuerID(issuer interface{}) string {
	switch t := issuer.(type) {
	case string:
		return t
	case map[string]interface{}:
		id, _ := t["id"].(string)
		return id
	default:
		return ""
	}
}

func proofSignature(vc map[string]interface{}) string {
	proof, ok := vc["proof"].(map[string]interface{})
	if !ok {
		return ""
	}
	if jws, ok := proof["jws"].(string); ok {
		return jws
	}
	if pv, ok := proof["proofValue"].(string); ok {
		return pv
	}
	return ""
}

// normalizeForSchema widens typed slices so the schema validator sees
// plain JSON shapes regardless of how the document was built in Go.
func normalizeForSchema(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeForSchema(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeForSchema(e)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}
