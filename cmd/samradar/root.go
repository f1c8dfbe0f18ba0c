package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for SAM-Radar.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samradar",
		Short: "Sanctions and adverse-media screening",
		Long: `SAM-Radar screens a person or company name against the OpenSanctions
database and searches public news and web sources for adverse media.

Every mention is filtered for relevance, deduplicated by link and
labelled High, Medium or Low risk from the words it contains.

Set NEWSDATA_KEY to enable the NewsData connector and OPENSANCTIONS_API_KEY
to authenticate sanctions lookups.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
