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

package ir

import (
    `fmt`
    `strings`
)

// Func is a single procedure: a list of basic blocks in program order, with
// Root as the entry block.
type Func struct {
    Name   string
    Params []*Param
    Root   *BasicBlock
    Blocks []*BasicBlock
}

// Rebuild recomputes the predecessor lists of every block from the block
// terminators. It must be called after any mutation of the graph edges.
func (self *Func) Rebuild() {
    edge := make(map[[2]int]bool)

    /* clear the old predecessors */
    for _, bb := range self.Blocks {
        bb.Pred = nil
    }

    /* add every edge exactly once */
    for _, bb := range self.Blocks {
        it := bb.Term.Successors()
        for it.Next() {
            ln := it.Block()
            ev := [2]int { bb.Id, ln.Id }
            if !edge[ev] {
                edge[ev] = true
                ln.Pred = append(ln.Pred, bb)
            }
        }
    }
}

func (self *Func) String() string {
    ps := make([]string, 0, len(self.Params))
    ss := make([]string, 0, len(self.Blocks) + 2)

    /* dump the parameters */
    for _, p := range self.Params {
        ps = append(ps, p.Name())
    }

    /* dump every block */
    ss = append(ss, fmt.Sprintf("func %s(%s) {", self.Name, strings.Join(ps, ", ")))
    for _, bb := range self.Blocks {
        ss = append(ss, bb.String())
    }

    /* join them together */
    ss = append(ss, "}")
    return strings.Join(ss, "\n")
}
