/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dirpx.dev/cref"
)

// errUnresolved is returned by commands whose reference did not resolve.
var errUnresolved = errors.New("unresolved")

var resolveCmd = &cobra.Command{
	Use:   "resolve REF",
	Short: "Resolve a reference and print its path and kind",
	Long: `Resolve REF as if it were written inside --context (default: the root).
With --kind only objects of that kind are accepted.

Examples:
  cref resolve -f objs.yaml "B::C"
  cref resolve -f objs.yaml --context Foo --kind method Bar`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("context", "c", "", "namespace the reference is written in")
	resolveCmd.Flags().StringP("kind", "k", "", "required kind (module, class, method, constant, ...)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, err := contextFlag(cmd)
	if err != nil {
		return err
	}
	opts, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	p, err := cref.Proxy(ctx, args[0], opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Path(), p.Kind())
	if !p.Resolved() {
		return fmt.Errorf("%w: %s", errUnresolved, args[0])
	}
	return nil
}
