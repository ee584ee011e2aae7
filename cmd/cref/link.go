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
	"dirpx.dev/cref/link"
)

var linkCmd = &cobra.Command{
	Use:   "link KEYWORD TITLE",
	Short: "Resolve link text to the object it names",
	Long: `Resolve TITLE through the kind bound to KEYWORD. The keyword must be
registered by the config file or the fixture; the object must accept the
title.

Examples:
  cref link -f objs.yaml "Class:" Foo`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.Flags().StringP("context", "c", "", "namespace the link is written in")
}

func runLink(cmd *cobra.Command, args []string) error {
	ctx, err := contextFlag(cmd)
	if err != nil {
		return err
	}
	obj, ok := link.New(cref.Resolver()).ResolveFrom(ctx, args[0], args[1])
	if !ok {
		return fmt.Errorf("%w: %s %s", errUnresolved, args[0], args[1])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", obj.Path(), obj.Kind())
	return nil
}
