package main

import (
	"fmt"
	"text/tabwriter"

	"npr/common"
	"npr/runner"

	"github.com/spf13/cobra"
)

func bench(cmd *cobra.Command) error {
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r := &runner.Runner{}
	if err = r.Init(lc); err != nil {
		return err
	}
	defer r.Stop()

	results, err := r.RunAll(common.AllClassifiers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "CLASSIFIER\tCORRECT RATIO\tHITS\tTRAIN TIME\n")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%.4f\t%d/%d\t%s\n",
			res.Type, res.Score.Accuracy, res.Score.Hits, res.Score.Total, res.TrainTime)
	}
	return w.Flush()
}

func benchCMD() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "train every classifier",
		Long:  "train every classifier concurrently on one shared problem and compare validation accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bench(cmd)
		},
	}
	attachFlags(benchCmd, problemFlagList)
	return benchCmd
}
