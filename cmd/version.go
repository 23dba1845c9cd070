package cmd

import (
	"github.com/recordkit/recstamp/cmd/version"
)

func init() {
	rootCmd.AddCommand(version.NewCommand())
}
