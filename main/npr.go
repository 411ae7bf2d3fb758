package main

import (
	"fmt"
	"os"

	"npr/core/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag         string
	algorithmFlag       string
	problemFlag         string
	seedFlag            int64
	trainCountFlag      int
	validationCountFlag int
	outputFlag          string
)

func init() {
	resetFlags()
}

// Explicitly define a method to facilitate tests
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "",
		"npr config file, default: npr_config.yaml under $NPR_CFG_PATH")
	flags.StringVarP(&algorithmFlag, "algorithm", "a", "knn",
		"classifier to train: knn, svm, ann or adaboost")
	flags.StringVarP(&problemFlag, "problem", "p", "",
		"generated problem: chessboard, gaussians or xor, overrides problem.type")
	flags.Int64VarP(&seedFlag, "seed", "s", 0,
		"problem generator seed, overrides problem.seed")
	flags.IntVar(&trainCountFlag, "train-count", 0,
		"training examples, overrides problem.train_count")
	flags.IntVar(&validationCountFlag, "validation-count", 0,
		"validation examples, overrides problem.validation_count")
	flags.StringVarP(&outputFlag, "output", "o", "npr.png",
		"image file written by plot")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name()))
		}
	}
}

// loadConfig reads the configuration and applies the problem flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.LocalConfig, error) {
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("problem") {
		lc.Problem.Type = problemFlag
	}
	if changed("seed") {
		lc.Problem.Seed = seedFlag
	}
	if changed("train-count") {
		lc.Problem.TrainCount = trainCountFlag
	}
	if changed("validation-count") {
		lc.Problem.ValidationCount = validationCountFlag
	}
	return lc, nil
}

var problemFlagList = []string{
	"config",
	"problem",
	"seed",
	"train-count",
	"validation-count",
}

var mainCmd = &cobra.Command{Use: "npr", SilenceUsage: true}

func main() {
	mainCmd.AddCommand(trainCMD())
	mainCmd.AddCommand(benchCMD())
	mainCmd.AddCommand(plotCMD())

	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
