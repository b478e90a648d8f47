// Command axp-signals runs the AXP signal pipeline from the shell:
// third-party enrichment, soft-KPI scoring, intent extraction, and
// credential verification, all emitting JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/enrichment"
	"github.com/sthamann/AXP/pkg/evidence"
	"github.com/sthamann/AXP/pkg/intent"
	"github.com/sthamann/AXP/pkg/kpi"
	"github.com/sthamann/AXP/pkg/observability"
	"github.com/sthamann/AXP/pkg/trust"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split from main for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	setupLogging(stderr)

	switch args[1] {
	case "enrich":
		return runEnrich(args[2:], stdout, stderr)
	case "score":
		return runScore(args[2:], stdout, stderr)
	case "intent":
		return runIntent(args[2:], stdout, stderr)
	case "verify":
		return runVerify(args[2:], stdout, stderr)
	case "domain-age":
		return runDomainAge(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: axp-signals <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  enrich      Fetch third-party evidence for a brand or product")
	fmt.Fprintln(w, "  score       Compute soft KPI scores from product data JSON")
	fmt.Fprintln(w, "  intent      Extract intent signals from commerce data JSON")
	fmt.Fprintln(w, "  verify      Verify a verifiable credential JSON document")
	fmt.Fprintln(w, "  domain-age  Attest domain age across public sources")
}

func setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

func runEnrich(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	fs.SetOutput(stderr)
	entity := fs.String("entity", "brand", "entity scope: brand or product")
	id := fs.String("id", "", "shop domain or product id")
	providers := fs.String("providers", "", "comma-separated provider subset")
	issueVC := fs.Bool("vc", false, "wrap each evidence record in a verifiable credential")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *id == "" {
		fmt.Fprintln(stderr, "enrich: -id is required")
		return 2
	}

	cfg := config.Load()
	ctx := context.Background()

	var obs *observability.Provider
	if cfg.OTLPEndpoint != "" {
		var err error
		obs, err = observability.New(ctx, &observability.Config{
			ServiceName:  "axp-signals",
			OTLPEndpoint: cfg.OTLPEndpoint,
			Enabled:      true,
			Insecure:     true,
		})
		if err != nil {
			fmt.Fprintf(stderr, "enrich: observability: %v\n", err)
			return 1
		}
		defer func() { _ = obs.Shutdown(ctx) }()
	}

	opts := []enrichment.OrchestratorOption{enrichment.WithObservability(obs)}
	if *issueVC {
		signer, err := enrichment.NewEd25519Signer()
		if err != nil {
			fmt.Fprintf(stderr, "enrich: %v\n", err)
			return 1
		}
		opts = append(opts, enrichment.WithSigner(signer))
	}

	orch, err := enrichment.NewOrchestratorFromConfig(ctx, cfg, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "enrich: %v\n", err)
		return 1
	}
	defer orch.Close()

	var names []string
	if *providers != "" {
		names = strings.Split(*providers, ",")
	}

	var results map[string]interface{}
	switch *entity {
	case "brand":
		results = renderEvidence(orch, orch.EnrichBrand(ctx, *id, names...), *issueVC, stderr)
	case "product":
		results = renderEvidence(orch, orch.EnrichProduct(ctx, *id, names...), *issueVC, stderr)
	default:
		fmt.Fprintf(stderr, "enrich: unknown entity %q\n", *entity)
		return 2
	}

	return emitJSON(stdout, stderr, results)
}

func renderEvidence(orch *enrichment.Orchestrator, results map[string]*evidence.Evidence, issueVC bool, stderr io.Writer) map[string]interface{} {
	out := make(map[string]interface{}, len(results))
	for name, ev := range results {
		if issueVC {
			vc, err := orch.IssueCredential(ev)
			if err != nil {
				fmt.Fprintf(stderr, "enrich: issue credential for %s: %v\n", name, err)
				continue
			}
			out[name] = vc
			continue
		}
		out[name] = ev.ToMap()
	}
	return out
}

func runScore(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "-", "product data JSON file, or - for stdin")
	category := fs.String("category", "", "product category for benchmark dispatch")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var data kpi.ProductData
	if err := readJSON(*input, &data); err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return 1
	}

	signals := kpi.NewCalculator().CalculateAll(data, *category)
	return emitJSON(stdout, stderr, signals)
}

func runIntent(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("intent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "-", "data sources JSON file, or - for stdin")
	productID := fs.String("product", "", "product id for the output signals")
	sinceDays := fs.Int("since-days", 0, "age of the newest data in days, for recency decay")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var src intent.DataSources
	if err := readJSON(*input, &src); err != nil {
		fmt.Fprintf(stderr, "intent: %v\n", err)
		return 1
	}

	signals := intent.NewExtractor().ComputeSignals(*productID, src, *sinceDays)
	return emitJSON(stdout, stderr, signals)
}

func runVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "-", "credential JSON file, or - for stdin")
	issuers := fs.String("trust-issuers", "", "comma-separated additional trusted issuers")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var vc map[string]interface{}
	if err := readJSON(*input, &vc); err != nil {
		fmt.Fprintf(stderr, "verify: %v\n", err)
		return 1
	}

	v := trust.NewVerifier()
	if *issuers != "" {
		for _, iss := range strings.Split(*issuers, ",") {
			v.Registry().Add(strings.TrimSpace(iss))
		}
	}

	res := v.VerifyCredential(vc)
	if code := emitJSON(stdout, stderr, res); code != 0 {
		return code
	}
	if len(res.Anomalies) > 0 {
		return 1
	}
	return 0
}

func runDomainAge(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("domain-age", flag.ContinueOnError)
	fs.SetOutput(stderr)
	domain := fs.String("domain", "", "domain to attest")
	timeout := fs.Duration("timeout", 30*time.Second, "overall lookup timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *domain == "" {
		fmt.Fprintln(stderr, "domain-age: -domain is required")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res := trust.NewVerifier().CalculateDomainAge(ctx, *domain)
	return emitJSON(stdout, stderr, res)
}

func readJSON(path string, v interface{}) error {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func emitJSON(stdout, stderr io.Writer, v interface{}) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "encode output: %v\n", err)
		return 1
	}
	return 0
}
