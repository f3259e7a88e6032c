package main

import (
	"fmt"
	"os"
	"slices"

	"blockdrop/config"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the settings in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if f := settings.ConfigFileUsed(); f != "" {
			fmt.Printf("Config file: %s\n\n", f)
		} else {
			fmt.Printf("No config file found, run 'blockdrop config init' to create one in %s\n\n", config.Dir())
		}

		keys := settings.AllKeys()
		slices.Sort(keys)
		data := make([][]string, 0, len(keys))
		for _, k := range keys {
			data = append(data, []string{k, fmt.Sprint(settings.Get(k))})
		}
		printTable([]string{"key", "value"}, data)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the settings in use to a new config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path, err := config.Save(settings)
		if err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func printTable(header []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)

	table.SetHeader(header)
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(true)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("  ")
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("     ")

	table.AppendBulk(data)
	table.Render()
}
