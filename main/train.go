package main

import (
	"fmt"

	"npr/common"
	"npr/runner"

	"github.com/spf13/cobra"
)

func train(cmd *cobra.Command) error {
	ct, err := common.ParseClassifierType(algorithmFlag)
	if err != nil {
		return err
	}
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r := &runner.Runner{}
	if err = r.Init(lc); err != nil {
		return err
	}
	defer r.Stop()

	res, err := r.Run(ct)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s on %s: correct ratio %.4f (%d/%d), trained in %s\n",
		ct, lc.Problem.Type, res.Score.Accuracy, res.Score.Hits, res.Score.Total, res.TrainTime)
	return nil
}

func trainCMD() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train one classifier",
		Long:  "train one classifier on a generated problem and report its validation accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return train(cmd)
		},
	}
	attachFlags(trainCmd, append([]string{"algorithm"}, problemFlagList...))
	return trainCmd
}
