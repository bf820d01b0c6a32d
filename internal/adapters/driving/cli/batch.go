package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GAM-team/gam/internal/core/domain"
)

var (
	batchOps []string
	batchOut string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Build, send and interpret GData batch feeds",
	Long: `Build GData batch request feeds, record them in the journal, send them and
match the server's response back to the request by correlation id.

Entries without an explicit id are numbered 0, 1, 2... in the order they
were added.`,
}

var batchBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and record a batch request feed",
	Long: `Build a batch request feed from --op flags, in order, and record it in the journal.

Each --op is OPERATION:ARGUMENT:
  insert:FILE  entry document to insert
  update:FILE  entry document to update
  delete:URL   atom:id of the entry to delete
  query:URL    atom:id of the entry to fetch

The journal id printed at the end is what "batch interpret" and
"batch send" take.`,
	Args: cobra.NoArgs,
	RunE: runBatchBuild,
}

var batchInterpretCmd = &cobra.Command{
	Use:   "interpret JOURNAL_ID RESPONSE_FILE",
	Short: "Match a batch response to its recorded request",
	Long: `Decode a batch response document and classify every recorded request
entry as succeeded, failed or not executed. Response entries matching no
request are listed as unmatched.

Exits non-zero when the server reports the batch as interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runBatchInterpret,
}

var batchSendCmd = &cobra.Command{
	Use:   "send JOURNAL_ID URL",
	Short: "Post a recorded batch feed and interpret the response",
	Args:  cobra.ExactArgs(2),
	RunE:  runBatchSend,
}

var batchJournalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List recorded batch feeds",
	Args:  cobra.NoArgs,
	RunE:  runBatchJournals,
}

var batchForgetCmd = &cobra.Command{
	Use:   "forget JOURNAL_ID",
	Short: "Remove a recorded batch feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchForget,
}

func init() {
	batchBuildCmd.Flags().StringArrayVar(&batchOps, "op", nil, "Entry as OPERATION:ARGUMENT (repeatable)")
	batchBuildCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Also write the request feed to this file")

	batchCmd.AddCommand(batchBuildCmd)
	batchCmd.AddCommand(batchInterpretCmd)
	batchCmd.AddCommand(batchSendCmd)
	batchCmd.AddCommand(batchJournalsCmd)
	batchCmd.AddCommand(batchForgetCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatchBuild(cmd *cobra.Command, _ []string) error {
	if batchService == nil {
		return errBatchUnavailable
	}
	if codecService == nil {
		return errCodecUnavailable
	}
	if len(batchOps) == 0 {
		return errors.New("at least one --op is required")
	}

	feed := batchService.NewFeed()
	for _, raw := range batchOps {
		op, arg, err := parseOpFlag(raw)
		if err != nil {
			return err
		}
		var entry *domain.BatchEntry
		switch op {
		case domain.OpInsert, domain.OpUpdate:
			obj, err := parseEntryFile(cmd, arg)
			if err != nil {
				return err
			}
			entry, err = batchService.AddEntry(feed, op, obj, "")
			if err != nil {
				return fmt.Errorf("--op %s: %w", raw, err)
			}
		default:
			entry, err = batchService.AddByID(feed, op, arg, "")
			if err != nil {
				return fmt.Errorf("--op %s: %w", raw, err)
			}
		}
		cmd.Printf("  [%s] %s %s\n", entry.ID, op, arg)
	}

	journal, err := batchService.Record(cmd.Context(), feed)
	if err != nil {
		return fmt.Errorf("failed to record batch: %w", err)
	}

	if batchOut != "" {
		if err := os.WriteFile(batchOut, journal.Feed, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", batchOut, err)
		}
		cmd.Printf("Request feed written to %s\n", batchOut)
	}
	cmd.Printf("Recorded %d entries as journal %s\n", len(journal.Entries), journal.ID)
	return nil
}

func runBatchInterpret(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errBatchUnavailable
	}
	if codecService == nil {
		return errCodecUnavailable
	}

	request, err := batchService.Replay(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}

	in, closeIn, err := openInput(cmd, args[1])
	if err != nil {
		return err
	}
	defer closeIn()

	el, err := codecService.ReadElement(in)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	response, err := batchService.DecodeFeed(el)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	report := batchService.Interpret(request, response)
	printReport(cmd, report)
	return report.Err()
}

func runBatchSend(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errBatchUnavailable
	}

	report, err := batchService.Send(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	printReport(cmd, report)
	return report.Err()
}

func runBatchJournals(cmd *cobra.Command, _ []string) error {
	if batchService == nil {
		return errBatchUnavailable
	}

	journals, err := batchService.Journals(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list journals: %w", err)
	}
	if len(journals) == 0 {
		cmd.Println("No journals recorded.")
		return nil
	}

	cmd.Printf("Journals (%d):\n\n", len(journals))
	for _, j := range journals {
		cmd.Printf("  %s\n", j.ID)
		cmd.Printf("    Created: %s  Entries: %d\n", j.CreatedAt.Local().Format("2006-01-02 15:04:05"), len(j.Entries))
	}
	return nil
}

func runBatchForget(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errBatchUnavailable
	}
	if err := batchService.Forget(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove journal: %w", err)
	}
	cmd.Printf("Removed journal %s\n", args[0])
	return nil
}

// parseOpFlag splits OPERATION:ARGUMENT on the first colon, so URLs survive.
func parseOpFlag(raw string) (domain.Operation, string, error) {
	name, arg, ok := strings.Cut(raw, ":")
	if !ok || arg == "" {
		return "", "", fmt.Errorf("%w: --op %q must be OPERATION:ARGUMENT", domain.ErrInvalidInput, raw)
	}
	op, err := domain.ParseOperation(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return "", "", err
	}
	return op, strings.TrimSpace(arg), nil
}

func parseEntryFile(cmd *cobra.Command, path string) (*domain.Object, error) {
	in, closeIn, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	obj, err := codecService.Parse(in, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return obj, nil
}

func printReport(cmd *cobra.Command, report *domain.BatchReport) {
	cmd.Printf("%-8s %-8s %-13s %s\n", "ID", "OP", "OUTCOME", "STATUS")
	for _, res := range report.Results {
		status := "-"
		if res.Status != nil {
			status = fmt.Sprintf("%d %s", res.Status.Code, res.Status.Reason)
		}
		op := res.Operation.String()
		if op == "" {
			op = "-"
		}
		cmd.Printf("%-8s %-8s %-13s %s\n", res.ID, op, res.Outcome, strings.TrimSpace(status))
	}
	cmd.Println()
	cmd.Printf("Succeeded: %d  Failed: %d  Not executed: %d",
		report.Count(domain.OutcomeSucceeded),
		report.Count(domain.OutcomeFailed),
		report.Count(domain.OutcomeNotExecuted))
	if n := report.Count(domain.OutcomeUnmatched); n > 0 {
		cmd.Printf("  Unmatched: %d", n)
	}
	cmd.Println()
	if in := report.Interrupted; in != nil {
		cmd.Printf("Interrupted after %d entries: %s\n", in.Parsed, in.Reason)
	}
}
