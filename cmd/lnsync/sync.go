package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsynccore"
	"github.com/mrsimoes/lnsyncgo/pkg/syncplanner"
)

var syncConfiguration struct {
	apply       bool
	cacheDir    string
	cachePrefix string
}

var syncCommand = &cobra.Command{
	Use:   "sync <source> <target>",
	Short: "Plan (and optionally apply) path operations reconciling target with source",
	Args:  cobra.ExactArgs(2),
	RunE:  syncMain,
}

func init() {
	flags := syncCommand.Flags()
	flags.BoolVar(&syncConfiguration.apply, "apply", false, "Apply the plan to the target tree instead of only printing it")
	flags.StringVar(&syncConfiguration.cacheDir, "cache-dir", "", "Directory holding each tree's cache file (default: the tree root)")
	flags.StringVar(&syncConfiguration.cachePrefix, "cache-prefix", "", "Cache file basename prefix (default: lnsync-)")
}

func syncMain(command *cobra.Command, arguments []string) error {
	cfg := lnsynccore.Config{
		CacheDir:    syncConfiguration.cacheDir,
		CachePrefix: syncConfiguration.cachePrefix,
		Writeback:   syncConfiguration.apply,
	}

	source, err := lnsynccore.OpenPropertyTree(arguments[0], cfg)
	if err != nil {
		return err
	}
	defer source.Store.Close()

	target, err := lnsynccore.OpenPropertyTree(arguments[1], cfg)
	if err != nil {
		return err
	}
	defer target.Store.Close()

	plan, err := syncplanner.Compute(source, target)
	if err != nil {
		return err
	}

	for _, op := range plan.Operations {
		fmt.Printf("%s %s %s\n", op.Kind, op.From, op.To)
	}

	if syncConfiguration.apply {
		if err := syncplanner.Apply(target.Tree, plan); err != nil {
			return err
		}
	}
	return nil
}
