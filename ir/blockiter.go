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
    `github.com/oleiade/lane`
)

// BasicBlockIter yields the blocks reachable from the entry in post-order
// with respect to the terminator edges.
type BasicBlockIter struct {
    b *BasicBlock
    s *lane.Stack
    v map[int]struct{}
}

func newBasicBlockIter(fn *Func) *BasicBlockIter {
    return &BasicBlockIter {
        s: stacknew(fn.Root),
        v: map[int]struct{}{ fn.Root.Id: {} },
    }
}

func (self *BasicBlockIter) Next() bool {
    var tail bool
    var this *BasicBlock

    /* scan until the stack is empty */
    for !self.s.Empty() {
        tail = true
        this = self.s.Head().(*BasicBlock)

        /* add the first unvisited successor */
        it := this.Term.Successors()
        for it.Next() {
            p := it.Block()
            if _, ok := self.v[p.Id]; !ok {
                tail = false
                self.v[p.Id] = struct{}{}
                self.s.Push(p)
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            self.b = self.s.Pop().(*BasicBlock)
            return true
        }
    }

    /* clear the basic block pointer to indicate no more blocks */
    self.b = nil
    return false
}

func (self *BasicBlockIter) Block() *BasicBlock {
    return self.b
}

func (self *BasicBlockIter) ForEach(action func(bb *BasicBlock)) {
    for self.Next() {
        action(self.b)
    }
}

func (self *BasicBlockIter) Reversed() []*BasicBlock {
    ret := make([]*BasicBlock, 0, 16)

    /* dump all the blocks */
    for self.Next() {
        ret = append(ret, self.b)
    }

    /* reverse the order */
    blockreverse(ret)
    return ret
}

// PostOrder iterates the reachable blocks in post-order.
func (self *Func) PostOrder() *BasicBlockIter {
    return newBasicBlockIter(self)
}

// ReversePostOrder visits the reachable blocks in reverse post-order, every
// block is visited before its successors along acyclic edges.
func (self *Func) ReversePostOrder(action func(bb *BasicBlock)) {
    for _, bb := range self.PostOrder().Reversed() {
        action(bb)
    }
}

func stacknew(v interface{}) (r *lane.Stack) {
    r = lane.NewStack()
    r.Push(v)
    return
}

func blockreverse(s []*BasicBlock) {
    for i, j := 0, len(s) - 1; i < j; i, j = i + 1, j - 1 {
        s[i], s[j] = s[j], s[i]
    }
}
