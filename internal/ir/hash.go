package ir

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed hashes.
// The version suffix leaves room for changing the algorithm later.
const (
	DomainRun    = "rvcomply/run/v1"
	DomainOutput = "rvcomply/output/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Classification is the (class, name, status) triple a run fingerprint is
// computed over.
type Classification struct {
	TestClass string
	Name      string
	Status    Status
}

// Fingerprint identifies the classification outcome of a whole run.
// Two runs over the same test set that classify every test the same way
// have equal fingerprints, regardless of order, timing or run ID.
func Fingerprint(entries []Classification) (string, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Classification) int {
		return cmp.Or(cmp.Compare(a.TestClass, b.TestClass), cmp.Compare(a.Name, b.Name))
	})

	list := make([]any, len(sorted))
	for i, e := range sorted {
		list[i] = map[string]any{
			"class":  e.TestClass,
			"name":   e.Name,
			"status": e.Status.String(),
		}
	}

	canonical, err := MarshalCanonical(map[string]any{"tests": list})
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRun, canonical), nil
}

// OutputHash hashes a simulator's captured output so runs can be compared
// without storing the full log in the database.
func OutputHash(output string) string {
	return hashWithDomain(DomainOutput, []byte(output))
}
