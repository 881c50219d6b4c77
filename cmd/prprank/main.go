// Command prprank semantically sorts input lines against a query using
// pairwise ranking prompting. It reads lines from the given files or
// standard input, treats each line as a document, and writes the ranked
// lines to standard output.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/ahrav/go-prp/infrastructure/judge"
	"github.com/ahrav/go-prp/infrastructure/llm"
	"github.com/ahrav/go-prp/infrastructure/middleware"
	"github.com/ahrav/go-prp/internal/application"
	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

func main() {
	var (
		query      = flag.String("query", "", "Query to rank lines against (required)")
		method     = flag.String("method", "sorting", "Ranking method: allpairs, sorting, or sliding")
		topK       = flag.Int("top-k", 0, "Only keep the top K ranked lines (0 keeps all)")
		passes     = flag.Int("passes", 0, "Sliding-window pass count (0 derives it from top-k or the line count)")
		provider   = flag.String("provider", "", "LLM provider: openai, anthropic, or google")
		model      = flag.String("model", "", "Model to use (provider default when empty)")
		prompt     = flag.String("prompt", "", "Custom pairwise ranking prompt template")
		configPath = flag.String("config", "", "Path to a YAML configuration file")
		verbose    = flag.Bool("verbose", false, "Report oracle usage on standard error")
		metrics    = flag.Bool("metrics", false, "Dump Prometheus metrics to standard error after the run")
	)
	flag.Parse()

	os.Exit(run(*query, *method, *topK, *passes, *provider, *model, *prompt, *configPath, *verbose, *metrics, flag.Args()))
}

func run(query, method string, topK, passes int, provider, model, prompt, configPath string, verbose, metrics bool, files []string) int {
	if query == "" {
		fmt.Fprintln(os.Stderr, "a query is required (-query)")
		return 2
	}

	config := application.DefaultConfig()
	if configPath != "" {
		loaded, err := application.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		config = loaded
	}
	if provider != "" {
		config.Provider = provider
	}
	if model != "" {
		config.Model = model
	}
	if prompt != "" {
		config.Judge.PromptTemplate = prompt
	}

	docs, err := readDocuments(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "No input lines provided.")
		return 0
	}

	var registry *prometheus.Registry
	var collector ports.MetricsCollector
	if metrics {
		registry = prometheus.NewRegistry()
		collector = middleware.NewPrometheusMetrics(registry)
	}

	var meter llm.UsageMeter
	client, err := application.NewClientFromConfig(config, &meter, collector)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	pairwise, err := judge.NewPairwiseJudge("pairwise", client, collector, config.Judge)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	guard, err := judge.NewBudgetGuard(pairwise, config.MaxOracleCalls)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	engine, err := application.NewEngine(guard, collector)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ranked, err := engine.Run(context.Background(), docs, application.RunConfig{
		Query:  query,
		Method: application.Method(method),
		TopK:   topK,
		Passes: passes,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, domain.ErrUnknownMethod) {
			return 2
		}
		return 1
	}

	out := bufio.NewWriter(os.Stdout)
	for _, doc := range ranked {
		fmt.Fprintln(out, doc.Content)
	}
	if err := out.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if verbose {
		report := meter.Snapshot()
		fmt.Fprintf(os.Stderr, "oracle calls: %d, tokens in: %d, tokens out: %d\n",
			report.CallsMade, report.TokensIn, report.TokensOut)
	}
	if registry != nil {
		if err := dumpMetrics(os.Stderr, registry); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

// dumpMetrics writes the gathered metrics in the Prometheus text
// exposition format.
func dumpMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// readDocuments collects non-empty lines from the given files, or from
// standard input when no files are named. IDs follow input order across
// all files.
func readDocuments(files []string) ([]domain.Document, error) {
	var lines []string

	readFrom := func(r io.Reader) error {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		return scanner.Err()
	}

	if len(files) == 0 {
		if err := readFrom(os.Stdin); err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return domain.NewDocuments(lines), nil
	}

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = readFrom(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return domain.NewDocuments(lines), nil
}
