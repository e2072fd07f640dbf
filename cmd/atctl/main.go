/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Command atctl is a terminal debug client for atengine: it wires a single
// instance to stdin/stdout, so raw AT-command traffic can be exercised from
// a shell without a real modem attached.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/atengine"
	"github.com/nabbar/atengine/atconfig"
	"github.com/nabbar/atengine/atlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:   "atctl",
		Short: "Issue AT commands against a line-oriented transport piped over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cfgPath, timeout)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to a tunables config file (optional)")
	root.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "default response timeout per command")

	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine's tunable defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := atconfig.Default()
			fmt.Printf("cmd_max=%d fifo_size=%d tick_interval=%s max_concurrent_cmd=%d\n",
				d.CmdMax, d.FifoSize, d.TickInterval, d.MaxConcurrentCmd)
			return nil
		},
	}
}

// runREPL reads AT command lines from stdin, sends each through a single
// atengine instance whose send callback writes straight to stdout, and
// prints the captured response lines once each command completes.
func runREPL(cfgPath string, timeout time.Duration) error {
	tunables := atconfig.Default()
	if cfgPath != "" {
		loaded, err := atconfig.Load(cfgPath)
		if err != nil {
			return err
		}
		tunables = loaded
	}

	log := atlog.Default()
	eng := atengine.New(atengine.WithTunables(tunables), atengine.WithLogger(log))
	defer eng.Shutdown(context.Background())

	out := bufio.NewWriter(os.Stdout)
	send := func(data []byte) {
		out.Write(data)
		out.Flush()
	}

	h, err := eng.Create(send, func() bool { return true })
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "atctl: type an AT command and press enter; ctrl-d to quit")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rh := eng.CreateResp(tunables.CmdMax, 0, timeout)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		if err := eng.ExecCmd(ctx, h, rh, "%s\r\n", line); err != nil {
			fmt.Fprintf(os.Stderr, "atctl: %v\n", err)
			cancel()
			continue
		}
		cancel()

		result := atengine.RespGetResult(rh)
		total := atengine.RespGetLineTotal(rh)
		fmt.Fprintf(os.Stderr, "atctl: result=%s lines=%d\n", result, total)
		for i := 0; i < total; i++ {
			if ln, ok := atengine.RespGetLine(rh, i); ok {
				fmt.Println(ln)
			}
		}
	}

	return scanner.Err()
}
