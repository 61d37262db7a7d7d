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

// Package cpass implements a copy-propagation optimization pass over the
// memory-addressable IR of package ir. The pass redirects uses of values
// known to equal an earlier value, removes loads made redundant by the
// rewriting, and leaves the observable behavior of the procedure unchanged.
package cpass

import (
    `github.com/zaviermiller/cpass/internal/copyprop`
    `github.com/zaviermiller/cpass/internal/opts`
    `github.com/zaviermiller/cpass/ir`
)

// Run applies copy propagation to the function in place. It reports whether
// any IR mutation occurred.
func Run(fn *ir.Func, options ...Option) bool {
    opt := opts.GetDefaultOptions()
    for _, fv := range options {
        fv(&opt)
    }
    return copyprop.Run(fn, opt)
}
