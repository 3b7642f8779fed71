package main

import (
	"fmt"
	"io"
	"strings"

	"camper/resources"

	"github.com/spf13/cobra"
)

var checkSeedCmd = &cobra.Command{
	Use:   "check-seed",
	Short: "Load the seed directory and print what the content index holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		idx, err := resources.Load(&resources.DirLoader{Dir: cfg.SeedDir}, cfg.Environment)
		if err != nil {
			return err
		}
		printSeed(cmd.OutOrStdout(), idx)
		return nil
	},
}

func printSeed(out io.Writer, idx *resources.Index) {
	fmt.Fprintf(out, "environment: %s\n", idx.Environment())
	names := idx.ChallengeMapWithNames()
	for i, b := range idx.ChallengeMapForDisplay() {
		fmt.Fprintf(out, "%-40s %3d challenges\n", b.Name, b.Count)
		if i < len(names) && len(names[i]) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(names[i], ", "))
		}
	}
	fmt.Fprintf(out, "%d challenges, %d field guides, %d nonprofits\n",
		len(idx.AllChallenges()), len(idx.AllFieldGuideIDs()), len(idx.AllNonprofitNames()))
	fmt.Fprintf(out, "sample: %s You %s it. %s\n", idx.RandomPhrase(), idx.RandomVerb(), idx.RandomCompliment())
}
