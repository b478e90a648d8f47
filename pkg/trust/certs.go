package trust

import (
	"fmt"
	"strings"
	"time"

	"github.com/sthamann/AXP/pkg/canonicalize"
)

// certValidator checks one certification scheme and returns registry
// details for the evidence trail.
type certValidator func(certID, issuer string) (bool, map[string]interface{})

func (v *Verifier) certValidators() map[string]certValidator {
	return map[string]certValidator{
		"iso":       v.validateISOCert,
		"organic":   v.validateOrganicCert,
		"fairtrade": v.validateFairtradeCert,
		"bcorp":     v.validateBCorpCert,
	}
}

// VerifyCertification validates a certification claim. Known schemes go
// through their typed validator; anything else is snapshot-verified with
// expiry and revocation-list checks. Expired or revoked certifications
// cap confidence at 0.3.
func (v *Verifier) VerifyCertification(certType, certID, issuer string) Result {
	var anomalies []string

	if validator, ok := v.certValidators()[strings.ToLower(certType)]; ok {
		valid, details := validator(certID, issuer)
		if !valid {
			anomalies = append(anomalies, fmt.Sprintf("Certification validation failed: %v", details))
		}

		confidence := 0.95
		if !valid {
			confidence = 0.2
		}
		signature, _ := details["signature"].(string)
		return Result{
			Method:          MethodAPI,
			Confidence:      confidence,
			LastChecked:     v.now(),
			SourceSignature: signature,
			Anomalies:       anomalies,
			RawData:         details,
		}
	}

	certData, err := v.fetchCertData(certType, certID, issuer)
	if err != nil {
		return Result{
			Method:      MethodSnapshot,
			Confidence:  0.1,
			LastChecked: v.now(),
			Anomalies:   []string{fmt.Sprintf("Certification data fetch failed: %v", err)},
		}
	}

	if expiryRaw, ok := certData["expiry_date"].(string); ok {
		expiry, parseErr := time.Parse(time.RFC3339, expiryRaw)
		if parseErr != nil {
			anomalies = append(anomalies, fmt.Sprintf("Unparseable expiry date: %q", expiryRaw))
		} else if expiry.Before(v.now()) {
			anomalies = append(anomalies, "Certification expired")
		}
	}

	if v.revoked[revocationKey(certType, certID)] {
		anomalies = append(anomalies, "Certification revoked")
	}

	confidence := 0.7
	if len(anomalies) > 0 {
		confidence = 0.3
	}
	hash, _ := canonicalize.CanonicalHash(certData)
	return Result{
		Method:       MethodSnapshot,
		Confidence:   confidence,
		LastChecked:  v.now(),
		SnapshotHash: hash,
		Anomalies:    anomalies,
		RawData:      certData,
	}
}

func (v *Verifier) fetchCertData(certType, certID, issuer string) (map[string]interface{}, error) {
	if v.certFetch != nil {
		return v.certFetch(certType, certID, issuer)
	}
	return map[string]interface{}{
		"cert_type":   certType,
		"cert_id":     certID,
		"issuer":      issuer,
		"expiry_date": "2026-01-01T00:00:00Z",
		"status":      "active",
	}, nil
}

func revocationKey(certType, certID string) string {
	return strings.ToLower(certType) + ":" + certID
}

// Typed validators return registry-shaped details. Registry lookups are
// seeded deterministically until live registry transports are wired.

func (v *Verifier) validateISOCert(certID, issuer string) (bool, map[string]interface{}) {
	return true, map[string]interface{}{"signature": "iso_sig_123", "valid_until": "2026-01-01"}
}

func (v *Verifier) validateOrganicCert(certID, issuer string) (bool, map[string]interface{}) {
	return true, map[string]interface{}{"signature": "organic_sig_456", "valid_until": "2025-12-31"}
}

func (v *Verifier) validateFairtradeCert(certID, issuer string) (bool, map[string]interface{}) {
	return true, map[string]interface{}{"signature": "ft_sig_789", "valid_until": "2025-06-30"}
}

func (v *Verifier) validateBCorpCert(certID, issuer string) (bool, map[string]interface{}) {
	return true, map[string]interface{}{"signature": "bcorp_sig_012", "score": 85.5}
}
