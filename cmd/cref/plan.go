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
	"fmt"

	"github.com/spf13/cobra"

	"dirpx.dev/cref"
	"dirpx.dev/cref/apis"
	upath "dirpx.dev/cref/utils/path"
)

var planCmd = &cobra.Command{
	Use:   "plan REF",
	Short: "Print the search plan for a reference",
	Long: `Print the candidates REF would be tried against, most specific first.
--context must name an existing namespace.

Examples:
  cref plan -f objs.yaml --context Foo::Bar "Qux#run"`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("context", "c", "", "namespace the reference is written in")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, err := contextFlag(cmd)
	if err != nil {
		return err
	}
	q := apis.Query{Ref: upath.Parse(args[0])}
	if ctx != nil {
		obj, ok := ctx.Object()
		if !ok {
			return fmt.Errorf("%w: context %s", errUnresolved, ctx.Path())
		}
		if q.Context, ok = cref.Resolver().Target(obj, 0); !ok {
			return fmt.Errorf("context %s is not a namespace", obj.Path())
		}
	}
	for i, c := range cref.Resolver().Plan(q) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, c)
	}
	return nil
}
