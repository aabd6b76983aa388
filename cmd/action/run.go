// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/action"
	"code.hybscloud.com/action/programfile"
)

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Run program documents and print their output as JSON",
		Long: `Runs every document concurrently and prints one JSON object per
document, in argument order. Only the first output of a program is
computed unless --all is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			results, err := runFiles(cmd.Context(), opts, files)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.all, "all", false, "print every output instead of the first")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "report malformed programs as errors")
	cmd.Flags().StringArrayVar(&opts.args, "arg", nil, "invocation argument, repeatable; replaces the document's args")
	return cmd
}

type result struct {
	File    string `json:"file"`
	Outputs []any  `json:"outputs"`
}

func newLoader(opts *options, strict bool) *programfile.Loader {
	var aopts []action.Option
	if strict {
		aopts = append(aopts, action.Strict())
	}
	return programfile.NewLoader(programfile.Builtins(opts.log), opts.log, aopts...)
}

func runFiles(ctx context.Context, opts *options, files []string) ([]result, error) {
	loader := newLoader(opts, opts.strict)
	args := make([]any, len(opts.args))
	for i, a := range opts.args {
		args[i] = a
	}

	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			p, err := loader.Load(file)
			if err != nil {
				return err
			}
			out, err := p.Run(opts.all, args...)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			opts.log.Debug("program finished",
				zap.String("file", file),
				zap.Int("outputs", len(out)),
				zap.Duration("took", time.Since(start)))
			outputs := make([]any, len(out))
			for j, v := range out {
				outputs[j] = jsonable(v)
			}
			results[i] = result{File: file, Outputs: outputs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Run program documents strictly and report malformed ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			loader := newLoader(opts, true)
			errs := make([]error, len(files))
			var g errgroup.Group
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, file := range files {
				g.Go(func() error {
					p, err := loader.Load(file)
					if err == nil {
						_, err = p.Run(true)
					}
					errs[i] = err
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for i, file := range files {
				if errs[i] != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", file, errs[i])
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", file)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed: %w", failed, len(files), errors.Join(errs...))
			}
			return nil
		},
	}
}

// jsonable replaces values JSON cannot encode, such as functions and
// steps, with a description.
func jsonable(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int64, float64:
		return v
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonable(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonable(e)
		}
		return out
	case fmt.Stringer:
		return x.String()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("<%T>", v)
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}
