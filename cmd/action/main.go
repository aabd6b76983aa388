// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command action evaluates action programs described in YAML documents.
//
//	action run [--all] [--strict] [--arg v]... FILE...
//	action check FILE...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	debug  bool
	strict bool
	all    bool
	args   []string

	log *zap.Logger
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A nil log is replaced by a
// production logger when a command runs.
func newRootCmd(log *zap.Logger) *cobra.Command {
	opts := &options{log: log}
	root := &cobra.Command{
		Use:   "action",
		Short: "Evaluate action programs described in YAML",
		Long: `action loads program documents and runs them through the step
interpreter. Each document lists its program tokens, plus an optional
scope, invocation arguments and templates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.log != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if opts.debug {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			log, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "trace runs at debug level")
	root.AddCommand(newRunCmd(opts), newCheckCmd(opts))
	return root
}
