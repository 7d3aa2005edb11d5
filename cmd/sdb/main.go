// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The sdb tool evaluates C-like expressions against a snapshot of
// process state: memory regions, registers, and a small global symbol
// table described in a YAML file.
//
//	sdb eval -s snapshot.yaml 'counter'
//	sdb eval -s snapshot.yaml --num-format hex 'pair.first'
//	sdb repl -s snapshot.yaml
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sdb-project/sdb/expr"
)

var (
	flagSnapshot  string
	flagNumFormat string
	flagMaxArray  int
)

func main() {
	root := &cobra.Command{
		Use:           "sdb",
		Short:         "evaluate debugger expressions against a process snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagSnapshot, "snapshot", "s", "", "snapshot YAML file (required)")
	root.PersistentFlags().StringVar(&flagNumFormat, "num-format", "default", "number format: default, signed, unsigned, hex, char")
	root.PersistentFlags().IntVar(&flagMaxArray, "max-array-size", 256, "maximum array elements / string bytes to print")

	root.AddCommand(&cobra.Command{
		Use:   "eval <expression>",
		Short: "evaluate one expression and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	})
	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "interactively evaluate expressions",
		Args:  cobra.NoArgs,
		RunE:  runRepl,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sdb: %v\n", err)
		os.Exit(1)
	}
}

func formatOptions() (expr.FormatOptions, error) {
	opts := expr.FormatOptions{MaxArraySize: flagMaxArray}
	switch flagNumFormat {
	case "", "default":
	case "signed":
		opts.NumFormat = expr.NumSigned
	case "unsigned":
		opts.NumFormat = expr.NumUnsigned
	case "hex":
		opts.NumFormat = expr.NumHex
	case "char":
		opts.NumFormat = expr.NumChar
	default:
		return opts, fmt.Errorf("unknown --num-format %q", flagNumFormat)
	}
	return opts, nil
}

func makeContext() (*expr.SymbolEvalContext, error) {
	if flagSnapshot == "" {
		return nil, fmt.Errorf("--snapshot is required")
	}
	snap, err := loadSnapshot(flagSnapshot)
	if err != nil {
		return nil, err
	}
	return expr.NewSymbolEvalContext(snap.process, nil, snap.context, snap.provider), nil
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx, err := makeContext()
	if err != nil {
		return err
	}
	opts, err := formatOptions()
	if err != nil {
		return err
	}
	evalLine(ctx, args[0], opts)
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx, err := makeContext()
	if err != nil {
		return err
	}
	opts, err := formatOptions()
	if err != nil {
		return err
	}

	rl, err := readline.New("(sdb) ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		evalLine(ctx, line, opts)
	}
}

// evalLine evaluates one expression and prints the styled result. The
// snapshot provider completes synchronously, so the callback has always
// run by the time EvalAndFormat returns.
func evalLine(ctx *expr.SymbolEvalContext, input string, opts expr.FormatOptions) {
	expr.EvalAndFormat(input, ctx, opts, func(out *expr.OutputBuffer) {
		fmt.Println(renderSpans(out.Spans()))
	})
}

var styleColors = map[expr.Style]*color.Color{
	expr.StyleComment: color.New(color.FgHiBlack),
	expr.StyleError:   color.New(color.FgRed),
	expr.StyleNumber:  color.New(color.FgCyan),
	expr.StyleString:  color.New(color.FgGreen),
}

func renderSpans(spans []expr.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		if c, ok := styleColors[s.Style]; ok {
			sb.WriteString(c.Sprint(s.Text))
		} else {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}
