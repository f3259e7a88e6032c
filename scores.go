package main

import (
	"fmt"

	"blockdrop/scoreboard"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var scoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "List the best games on the scoreboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Top(cmd.Context(), scoresLimit)
		if err != nil {
			return fmt.Errorf("failed to read scores: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No scores yet, go play a game!")
			return nil
		}
		printScores(entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoresCmd)
	scoresCmd.Flags().IntVarP(&scoresLimit, "limit", "n", scoreboard.DefaultLimit, "how many games to list")
	scoresCmd.Flags().String("server", "", "score server address, empty reads the local scoreboard")
}

func printScores(entries []scoreboard.Entry) {
	tbl := table.New("RANK", "NAME", "SCORE", "LINES", "LEVEL", "WHEN")
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgBlue, color.Bold).SprintfFunc()
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for i, e := range entries {
		tbl.AddRow(humanize.Ordinal(i+1), e.Name, humanize.Comma(int64(e.Score)), e.Lines, e.Level, humanize.Time(e.RecordedAt))
	}
	tbl.Print()
}
