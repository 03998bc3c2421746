package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/observe"
	"github.com/sarchlab/parkgate/tracing"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report FILE.sqlite3",
		Short: "Summarize a recording written by \"run --record\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			return writeRecordingReport(cmd.Context(), reader, cmd.OutOrStdout())
		},
	}
}

func writeRecordingReport(
	ctx context.Context,
	reader datarecording.DataReader,
	w io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader.MapTable(observe.WaveformTableName, observe.WaveformEntry{})
	reader.MapTable(tracing.TaskTableName, tracing.TaskEntry{})

	tables, err := reader.ListTables(ctx)
	if err != nil {
		return err
	}

	has := make(map[string]bool)
	for _, t := range tables {
		has[t] = true
	}

	if has[observe.WaveformTableName] {
		_, cycles, err := reader.Query(ctx, observe.WaveformTableName,
			datarecording.QueryParams{Limit: 1})
		if err != nil {
			return err
		}

		_, opens, err := reader.Query(ctx, observe.WaveformTableName,
			datarecording.QueryParams{
				Where: "GateOpen = ? AND PrevPhase != Phase",
				Args:  []any{true},
				Limit: 1,
			})
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Waveform: %d cycles, gate opened %d times\n",
			cycles, opens)
	}

	if has[tracing.TaskTableName] {
		rows, err := reader.ReadTable(ctx, tracing.TaskTableName)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Sessions: %d\n", len(rows))

		for _, row := range rows {
			task := row.(*tracing.TaskEntry)

			status := "open"
			if task.Completed {
				status = "done"
			}

			fmt.Fprintf(w, "  %s %s %.9f-%.9f [%s]\n",
				task.ID, status, task.StartTime, task.EndTime, task.Steps)
		}
	}

	return nil
}
