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

type BasicBlock struct {
    Id   int
    Ins  []IrNode
    Pred []*BasicBlock
    Term IrTerminator
}

// Erase removes every instruction present in the drop set, preserving the
// program order of the rest. Values defined by dropped instructions are not
// touched, the caller is responsible for having rewritten their uses.
func (self *BasicBlock) Erase(drop map[IrNode]struct{}) {
    ins := self.Ins
    self.Ins = self.Ins[:0]

    /* keep everything not in the drop set */
    for _, v := range ins {
        if _, ok := drop[v]; !ok {
            self.Ins = append(self.Ins, v)
        }
    }
}

func (self *BasicBlock) String() string {
    ss := make([]string, 0, len(self.Ins) + 2)
    ss = append(ss, fmt.Sprintf("bb_%d:", self.Id))

    /* dump every instruction */
    for _, v := range self.Ins {
        ss = append(ss, indent(v.String()))
    }

    /* basic blocks must terminate */
    if self.Term == nil {
        panic(fmt.Sprintf("basic block %d does not terminate", self.Id))
    }

    /* add the terminator */
    ss = append(ss, indent(self.Term.String()))
    return strings.Join(ss, "\n")
}

func indent(s string) string {
    ls := strings.Split(s, "\n")
    for i, v := range ls { ls[i] = "    " + v }
    return strings.Join(ls, "\n")
}
