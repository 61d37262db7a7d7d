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

package copyprop

import (
    `github.com/zaviermiller/cpass/internal/opts`
    `github.com/zaviermiller/cpass/ir`
)

type Pass interface {
    Apply(fn *ir.Func, opt opts.Options) bool
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

var Passes = [...]PassDescriptor {
    { Name: "Copy Propagation", Pass: new(CopyProp) },
}

// Run executes every registered pass over the function, reporting whether
// any IR mutation occurred.
func Run(fn *ir.Func, opt opts.Options) bool {
    rv := false
    for _, p := range Passes {
        if p.Pass.Apply(fn, opt) {
            rv = true
        }
    }
    return rv
}
