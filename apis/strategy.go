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
	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

// Strategy is a pluggable resolution step. A Resolver runs its strategies,
// in order, on every candidate of a search plan.
type Strategy interface {
	// TryCandidate evaluates q against candidate c. It returns (obj, true)
	// if it found a kind-matching object; otherwise (nil, false) to fall through.
	// res gives access to the registry and to alias resolution.
	TryCandidate(c upath.Candidate, q Query, res Resolver) (*codeobj.Object, bool)
}
