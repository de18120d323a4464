package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	reportsLimit int
	tracesLabel  string
	tracesLimit  int
)

// reportsCmd groups the stored report commands
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List, show and delete stored reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  listReports,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  showReport,
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteReport,
}

// tracesCmd shows recorded reasoning engine calls
var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Show recent reasoning engine calls",
	Long: `Lists recorded reasoning engine calls, newest first. Labels name the
step that made the call, e.g. research, section:market, regenerate:verdict
or edit:plan.`,
	Args: cobra.NoArgs,
	RunE: listTraces,
}

func init() {
	reportsListCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum reports to list")
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)

	tracesCmd.Flags().StringVar(&tracesLabel, "label", "", "Only show calls with this label")
	tracesCmd.Flags().IntVarP(&tracesLimit, "limit", "n", 20, "Maximum traces to list")
}

func listReports(cmd *cobra.Command, args []string) error {
	st, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	items, err := st.List(background(cmd), reportsLimit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "No reports stored yet.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tSCORE\tDECISION\tREV\tUPDATED")
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, r.ProductName, r.Score, r.Decision, r.Revision, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func showReport(cmd *cobra.Command, args []string) error {
	st, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sr, err := st.Get(background(cmd), args[0])
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, sr)
}

func deleteReport(cmd *cobra.Command, args []string) error {
	st, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(background(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
	return nil
}

func listTraces(cmd *cobra.Command, args []string) error {
	st, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	traces, err := st.RecentTraces(background(cmd), tracesLabel, tracesLimit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLABEL\tOP\tMODEL\tDURATION\tOK\tERROR")
	for _, t := range traces {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%t\t%s\n",
			t.Timestamp.Local().Format("15:04:05"), t.Label, t.Op, t.Model, t.Duration, t.Success, t.ErrorMessage)
	}
	return tw.Flush()
}
