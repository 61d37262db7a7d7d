/*
 * Copyright 2023 cpass Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cpass

import (
    `github.com/zaviermiller/cpass/internal/opts`
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithVerbose controls the diagnostic dumps of the pass.
//
// When enabled, the pass emits the procedure IR after the local stage,
// the copy index and per-block analysis vectors after DFA construction,
// and the procedure IR again after the global stage, all on the standard
// error stream.
//
// This value can also be configured with the `CPASS_VERBOSE` environment
// variable.
//
// The default value of this option is "false".
func WithVerbose(v bool) Option {
    return func(o *opts.Options) { o.Verbose = v }
}
