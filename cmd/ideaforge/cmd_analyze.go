package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ideaforge/internal/pipeline"
	"ideaforge/internal/stream"
	"ideaforge/internal/types"
)

var (
	analyzeNDJSON bool
	analyzeJSON   bool
)

// analyzeCmd runs one analysis from the terminal
var analyzeCmd = &cobra.Command{
	Use:   "analyze [idea]",
	Short: "Research an idea and generate its validation report",
	Long: `Runs the full pipeline for one idea: research, the three independent
sections in parallel, then verdict and advisors.

Progress goes to stderr. By default a short summary is printed when the run
finishes; --json prints the whole report and --ndjson streams the raw
events exactly as the HTTP API does.

Example:
  ideaforge analyze "subscription coffee for remote teams"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNDJSON, "ndjson", false, "Stream raw NDJSON events to stdout")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the finished report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	a, err := buildApp(ctx, cfg, st)
	if err != nil {
		return err
	}

	idea := strings.Join(args, " ")
	if analyzeNDJSON {
		_, err := a.analyzer.Run(ctx, idea, stream.NewWriter(os.Stdout))
		return err
	}

	rec := &recorder{progress: os.Stderr}
	res, runErr := a.analyzer.Run(ctx, idea, rec)
	state, err := stream.Fold(rec.events)
	if err != nil {
		return fmt.Errorf("inconsistent event stream: %w", err)
	}
	if runErr != nil {
		return errors.New(pipeline.UserMessage(runErr))
	}
	fmt.Fprintf(os.Stderr, "    tokens: %d over %d calls\n", res.Usage.Total.Total, res.Usage.Total.Calls)
	if analyzeJSON {
		return printJSON(os.Stdout, state.Report)
	}
	renderSummary(os.Stdout, state)
	return nil
}

// recorder keeps every event and prints a progress line for each.
type recorder struct {
	events   []stream.Event
	progress io.Writer
}

func (r *recorder) Emit(e stream.Event) error {
	r.events = append(r.events, e)
	if line := describeEvent(e); line != "" {
		fmt.Fprintln(r.progress, line)
	}
	return nil
}

func describeEvent(e stream.Event) string {
	switch e.Type {
	case stream.EventStage:
		var d stream.StageData
		if e.Decode(&d) == nil {
			return fmt.Sprintf("==> %s", d.Message)
		}
	case stream.EventProgress:
		var d stream.ProgressData
		if e.Decode(&d) == nil {
			return "    " + d.Message
		}
	case stream.EventResearchComplete:
		var d stream.ResearchCompleteData
		if e.Decode(&d) == nil {
			return fmt.Sprintf("    research: %d sources, %d competitors, %d case studies, %d complaints",
				d.Sources, d.Competitors, d.CaseStudies, d.Complaints)
		}
	case stream.EventSectionComplete:
		var d stream.SectionCompleteData
		if e.Decode(&d) == nil {
			return fmt.Sprintf("    [done] %s", d.Section)
		}
	case stream.EventError:
		var d stream.ErrorData
		if e.Decode(&d) == nil {
			return "error: " + d.Message
		}
	}
	return ""
}

func renderSummary(w io.Writer, s stream.State) {
	r := s.Report
	if r == nil {
		r = &types.Report{}
	}
	if r.Vision != nil {
		fmt.Fprintf(w, "%s\n  %s\n\n", r.Vision.ProductName, r.Vision.Tagline)
	}
	if r.Verdict != nil {
		fmt.Fprintf(w, "Verdict: %s (%d/100)\n  %s\n", strings.ToUpper(r.Verdict.Decision), r.Verdict.Score, r.Verdict.Summary)
		for _, step := range r.Verdict.NextSteps {
			fmt.Fprintf(w, "  - %s\n", step)
		}
		fmt.Fprintln(w)
	}
	if r.Market != nil {
		fmt.Fprintf(w, "Market: TAM %s, SAM %s, SOM %s\n", r.Market.TAM, r.Market.SAM, r.Market.SOM)
	}
	if r.Battlefield != nil {
		names := make([]string, 0, len(r.Battlefield.Competitors))
		for _, c := range r.Battlefield.Competitors {
			names = append(names, c.Name)
		}
		fmt.Fprintf(w, "Competitors: %s\n", strings.Join(names, ", "))
	}
	if r.Advisors != nil {
		fmt.Fprintf(w, "Advisors: %d\n", len(r.Advisors.Advisors))
	}
	if s.ReportID != "" {
		fmt.Fprintf(w, "\nSaved as %s\n", s.ReportID)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
