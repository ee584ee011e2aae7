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

package apis

import (
	"log/slog"

	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

// Config carries read-only resolution knobs.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// SearchOrder decides whether mixins are searched per level or after
	// the whole ancestor walk.
	SearchOrder upath.Order
	// MaxAliasDepth bounds constant-alias indirection.
	// Acts as a safety guard against alias cycles ("A = B; B = A").
	MaxAliasDepth int
	// Links are link keywords registered into every freshly built registry.
	Links map[string]codeobj.Kind
	// Logger receives diagnostics. Nil means discard.
	Logger *slog.Logger
}
