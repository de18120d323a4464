package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ideaforge/internal/diff"
	"ideaforge/internal/edit"
	"ideaforge/internal/logging"
	"ideaforge/internal/store"
	"ideaforge/internal/types"
)

var (
	askReportID string
	askFocus    string
	askDryRun   bool
)

// askCmd sends a follow-up message about a stored report
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask about or edit a stored report",
	Long: `Sends a follow-up message about a stored report. Questions are answered
from the report and its research sources. Edit requests are planned, the
affected sections are regenerated in dependency order and the report is
updated in place.

Example:
  ideaforge ask --report 6f1c... "Rename the product to RoastRoute"
  ideaforge ask --report 6f1c... --focus market "Why is the SOM so small?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askReportID, "report", "r", "", "Stored report ID (required)")
	askCmd.Flags().StringVar(&askFocus, "focus", "", "Section the message refers to")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "Plan edits without regenerating")
	_ = askCmd.MarkFlagRequired("report")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	st, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sr, err := st.Get(ctx, askReportID)
	if err != nil {
		return err
	}

	req := edit.Request{
		Message:     strings.Join(args, " "),
		CurrentData: sr.Report,
	}
	if sr.Research != nil {
		req.Sources = sr.Research.Citations()
	}
	if askFocus != "" {
		sec, err := types.ParseSectionName(askFocus)
		if err != nil {
			return err
		}
		req.FocusedBlock = &edit.FocusedBlock{Section: sec}
	}

	a, err := buildApp(ctx, cfg, st)
	if err != nil {
		return err
	}

	agentCtx, cancel := context.WithTimeout(ctx, a.timeouts.FollowUp)
	resp, err := a.agent.Handle(agentCtx, req)
	cancel()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, resp.Response)
	if resp.Type != edit.ResponseEdit || askDryRun {
		return nil
	}

	regenCtx, cancel := context.WithTimeout(ctx, a.timeouts.Regen)
	defer cancel()
	return applyEdit(regenCtx, os.Stdout, a.executor, st, sr, resp)
}

type reportUpdater interface {
	ApplyUpdates(ctx context.Context, id string, updates map[types.SectionName]types.SectionPayload) (*types.Report, error)
}

type sectionExecutor interface {
	Execute(ctx context.Context, sections []types.SectionName, current *types.Report, rec *types.ResearchRecord, instruction string) (map[types.SectionName]types.SectionPayload, error)
}

// applyEdit regenerates the planned sections and stores whatever finished,
// including the sections completed before a failure.
func applyEdit(ctx context.Context, w io.Writer, exec sectionExecutor, st reportUpdater, sr *store.StoredReport, resp *edit.Response) error {
	fmt.Fprintf(w, "Regenerating: %s\n", joinSections(resp.AffectedSections))
	updates, err := exec.Execute(ctx, resp.AffectedSections, sr.Report, sr.Research, resp.EditInstruction)

	var partial *edit.PartialError
	if errors.As(err, &partial) {
		updates = partial.Updates
	} else if err != nil {
		return err
	}

	changes, derr := diff.Updates(sr.Report, updates)
	if derr != nil {
		return derr
	}
	for _, c := range changes {
		fmt.Fprintf(w, "\n%s: +%d -%d\n%s", c.Section, c.Added, c.Removed, c.Unified)
	}

	if len(updates) > 0 {
		if _, uerr := st.ApplyUpdates(context.WithoutCancel(ctx), sr.ID, updates); uerr != nil {
			logging.Get(logging.CategoryStore).Error("failed to store regenerated sections: %v", uerr)
			return uerr
		}
		fmt.Fprintf(w, "Updated %d section(s) of %s\n", len(updates), sr.ID)
	}
	if partial != nil {
		return fmt.Errorf("stopped at %s, not regenerated: %s: %w",
			partial.Failed, joinSections(partial.Remaining), partial.Err)
	}
	return nil
}

func joinSections(sections []types.SectionName) string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
