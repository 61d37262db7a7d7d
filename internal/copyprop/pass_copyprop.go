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
    `fmt`
    `os`
    `sort`

    `github.com/zaviermiller/cpass/internal/opts`
    `github.com/zaviermiller/cpass/ir`
)

// _ACPTable is the available-copies mapping: any use of a key may safely be
// replaced by its value. Insertion resolves the source through the table
// first, so the map stays one hop from any key to its root.
type _ACPTable map[ir.Value]ir.Value

func (self _ACPTable) insert(dst ir.Value, src ir.Value) {
    if r, ok := self[src]; ok {
        self[dst] = r
    } else {
        self[dst] = src
    }
}

type _ACPPair struct {
    k ir.Value
    v ir.Value
}

func (self _ACPTable) sorted() []_ACPPair {
    ps := make([]_ACPPair, 0, len(self))
    for k, v := range self { ps = append(ps, _ACPPair { k, v }) }
    sort.Slice(ps, func(i int, j int) bool { return ps[i].k.Name() < ps[j].k.Name() })
    return ps
}

// CopyProp rewrites uses of values that are known to equal an earlier value
// and removes loads made redundant by the rewriting. It runs in two stages:
// a local stage with a fresh table per block, then a global stage with each
// block's table seeded from a forward data-flow analysis over the whole
// procedure.
type CopyProp struct{}

func (self CopyProp) Apply(fn *ir.Func, opt opts.Options) bool {
    m := self.local(fn, opt)
    g := self.global(fn, opt)
    return m || g
}

func (self CopyProp) local(fn *ir.Func, opt opts.Options) bool {
    rv := false

    /* a fresh table per block, the order across blocks does not matter */
    for _, bb := range fn.Blocks {
        if propagateCopies(bb, make(_ACPTable)) {
            rv = true
        }
    }

    /* dump the procedure if requested */
    if opt.Verbose {
        fmt.Fprintf(os.Stderr, "post local\n%s\n", fn)
    }
    return rv
}

func (self CopyProp) global(fn *ir.Func, opt opts.Options) bool {
    rv := false
    dfa := newDataFlow(fn)

    /* dump the analysis if requested */
    if opt.Verbose {
        fmt.Fprintf(os.Stderr, "post DFA\n")
        dfa.printCopyIdxs(os.Stderr)
        dfa.printDFA(os.Stderr)
    }

    /* rewrite every block against its seeded table */
    for _, bb := range fn.Blocks {
        if propagateCopies(bb, dfa.acpOf(bb)) {
            rv = true
        }
    }

    /* dump the procedure if requested */
    if opt.Verbose {
        fmt.Fprintf(os.Stderr, "post global\n%s\n", fn)
    }
    return rv
}

// propagateCopies walks the block in program order, rewriting operands
// against acp and updating the table at every store and load. Loads proven
// redundant are erased after the walk so the ongoing iteration stays valid.
func propagateCopies(bb *ir.BasicBlock, acp _ACPTable) bool {
    var rv bool
    var dead map[ir.IrNode]struct{}

    /* scan the instructions in program order */
    for _, v := range bb.Ins {
        switch p := v.(type) {
            /* store: the location now holds a known copy */
            case *ir.IrStore: {
                /* the destination takes part in known copies, those are stale now */
                if _, ok := acp[p.Mem]; ok {
                    for k, r := range acp {
                        if r == p.Mem {
                            delete(acp, k)
                        }
                    }
                    delete(acp, p.Mem)
                }

                /* record the copy, rewriting the source if it is one itself */
                if r, ok := acp[p.Src]; ok {
                    if r != p.Src {
                        p.Src = r
                        rv = true
                    }
                    acp[p.Mem] = r
                } else {
                    acp[p.Mem] = p.Src
                }
            }

            /* load: redundant when the location content is already known */
            case *ir.IrLoad: {
                if r, ok := acp[p.Mem]; ok {
                    acp[p] = r
                    rv = true
                    if dead == nil {
                        dead = make(map[ir.IrNode]struct{})
                    }
                    dead[p] = struct{}{}
                }
            }

            /* everything else: plain operand rewriting */
            default: {
                if use, ok := v.(ir.IrUsages); ok {
                    rv = rewrite(use.Usages(), acp) || rv
                }
            }
        }
    }

    /* the terminator has rewritable operands as well */
    if use, ok := bb.Term.(ir.IrUsages); ok {
        rv = rewrite(use.Usages(), acp) || rv
    }

    /* erase the redundant loads */
    if dead != nil {
        bb.Erase(dead)
    }
    return rv
}

func rewrite(us []*ir.Value, acp _ACPTable) bool {
    rv := false
    for _, u := range us {
        if r, ok := acp[*u]; ok && r != *u {
            *u = r
            rv = true
        }
    }
    return rv
}
