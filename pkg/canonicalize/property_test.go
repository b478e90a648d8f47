//go:build property
// +build property

// Property-based tests for canonical hash stability.
package canonicalize_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sthamann/AXP/pkg/canonicalize"
)

// Hashing a payload and hashing an element-wise rebuilt copy must agree,
// regardless of Go map iteration order.
func TestCanonicalHash_StableUnderRebuild(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hash is stable under map rebuild", prop.ForAll(
		func(keys []string, values []string, n float64) bool {
			obj := map[string]interface{}{"n": n}
			for i := 0; i < len(keys) && i < len(values); i++ {
				if keys[i] != "" {
					obj[keys[i]] = values[i]
				}
			}

			rebuilt := make(map[string]interface{}, len(obj))
			for k, v := range obj {
				rebuilt[k] = v
			}

			h1, err1 := canonicalize.CanonicalHash(obj)
			h2, err2 := canonicalize.CanonicalHash(rebuilt)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return h1 == h2
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

// Integral floats and ints canonicalize to the same digest.
func TestCanonicalHash_NumberNormalization(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("1.0 and 1 hash identically", prop.ForAll(
		func(n int) bool {
			h1, err1 := canonicalize.CanonicalHash(map[string]interface{}{"n": n})
			h2, err2 := canonicalize.CanonicalHash(map[string]interface{}{"n": float64(n)})
			if err1 != nil || err2 != nil {
				return false
			}
			return h1 == h2
		},
		gen.IntRange(-1000000, 1000000),
	))

	properties.TestingRun(t)
}
