package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsynccore"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
	"github.com/mrsimoes/lnsyncgo/pkg/setalgebra"
)

var dupesConfiguration struct {
	hardLinks   bool
	onAll       bool
	sortBySize  bool
	cacheDir    string
	cachePrefix string
}

var dupesCommand = &cobra.Command{
	Use:   "dupes <dir>...",
	Short: "List groups of files with identical content across one or more trees",
	Args:  cobra.MinimumNArgs(1),
	RunE:  dupesMain,
}

func init() {
	flags := dupesCommand.Flags()
	flags.BoolVar(&dupesConfiguration.hardLinks, "hardlinks", true, "Treat hard links to one file as a single file and print one path for it; if false, its extra paths count as duplicates")
	flags.BoolVar(&dupesConfiguration.onAll, "on-all", false, "Only report content present in every tree given, instead of any duplicate")
	flags.BoolVar(&dupesConfiguration.sortBySize, "sort-by-size", false, "Sort groups by ascending average file size instead of the order they were found in")
	flags.StringVar(&dupesConfiguration.cacheDir, "cache-dir", "", "Directory holding each tree's cache file (default: the tree root)")
	flags.StringVar(&dupesConfiguration.cachePrefix, "cache-prefix", "", "Cache file basename prefix (default: lnsync-)")
}

func dupesMain(command *cobra.Command, arguments []string) error {
	cfg := lnsynccore.Config{CacheDir: dupesConfiguration.cacheDir, CachePrefix: dupesConfiguration.cachePrefix}

	trees := make([]*proptree.PropertyTree, 0, len(arguments))
	for _, root := range arguments {
		pt, err := lnsynccore.OpenPropertyTree(root, cfg)
		if err != nil {
			return err
		}
		defer pt.Store.Close()
		trees = append(trees, pt)
	}

	var groups []setalgebra.Group
	var err error
	if dupesConfiguration.onAll {
		groups, err = setalgebra.GroupsOnAll(trees)
	} else {
		groups, err = setalgebra.GroupsOfDuplicates(trees, dupesConfiguration.hardLinks)
	}
	if err != nil {
		return err
	}

	return setalgebra.FormatGroups(os.Stdout, groups, setalgebra.FormatOptions{
		HardLinks:  dupesConfiguration.hardLinks,
		SortBySize: dupesConfiguration.sortBySize,
	})
}
