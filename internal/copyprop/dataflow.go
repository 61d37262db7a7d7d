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
    `io`
    `os`
    `strings`

    `github.com/bits-and-blooms/bitset`
    `github.com/davecgh/go-spew/spew`
    `github.com/zaviermiller/cpass/ir`
)

var debugDumpRaw = os.Getenv("CPASS_DEBUG_DATAFLOW") != ""

type _BlockInfo struct {
    copy  *bitset.BitSet
    kill  *bitset.BitSet
    cpin  *bitset.BitSet
    cpout *bitset.BitSet
    acp   _ACPTable
}

func newBlockInfo(nc uint) *_BlockInfo {
    return &_BlockInfo {
        copy  : bitset.New(nc),
        kill  : bitset.New(nc),
        cpin  : bitset.New(nc),
        cpout : bitset.New(nc),
        acp   : make(_ACPTable),
    }
}

// _DataFlow carries the per-procedure copy analysis: the dense copy index,
// and for every reachable block the COPY / KILL / CPIn / CPOut vectors and
// the available-copies table seeded from CPIn.
type _DataFlow struct {
    fn     *ir.Func
    rpo    []*ir.BasicBlock
    copies []ir.Value
    index  map[ir.Value]int
    home   map[ir.Value]*ir.BasicBlock
    info   map[int]*_BlockInfo
}

func newDataFlow(fn *ir.Func) *_DataFlow {
    p := &_DataFlow {
        fn    : fn,
        rpo   : fn.PostOrder().Reversed(),
        index : make(map[ir.Value]int),
        home  : make(map[ir.Value]*ir.BasicBlock),
        info  : make(map[int]*_BlockInfo),
    }

    /* build the analysis */
    p.initCopyIdxs()
    p.initCopyKill()
    p.initInOut()
    p.initACPs()

    /* dump the raw tables if requested */
    if debugDumpRaw {
        spew.Config.SortKeys = true
        spew.Dump(p.info)
    }
    return p
}

func (self *_DataFlow) addCopy(v ir.Value) {
    if _, ok := self.index[v]; !ok {
        self.index[v] = len(self.copies)
        self.copies = append(self.copies, v)
    }
}

// initCopyIdxs assigns a dense id to every copy-defining value: the formal
// parameters in declaration order, then every store in reverse post-order
// and program order within a block. Duplicates are ignored.
func (self *_DataFlow) initCopyIdxs() {
    for _, p := range self.fn.Params {
        self.addCopy(p)
    }
    for _, bb := range self.rpo {
        for _, v := range bb.Ins {
            if p, ok := v.(*ir.IrStore); ok {
                self.addCopy(p)
                self.home[p] = bb
            }
        }
    }
}

// dstOf is the location a copy assigns to: the parameter value itself for
// parameter copies, the store destination otherwise.
func (self *_DataFlow) dstOf(v ir.Value) ir.Value {
    if p, ok := v.(*ir.IrStore); ok {
        return p.Mem
    } else {
        return v
    }
}

// initCopyKill populates COPY and KILL for every reachable block. Kills
// from copies defined in the same block are omitted, the block-local
// reassignments are already captured by COPY.
func (self *_DataFlow) initCopyKill() {
    nc := uint(len(self.copies))

    /* visit the blocks in reverse post-order */
    for _, bb := range self.rpo {
        bbi := newBlockInfo(nc)
        self.info[bb.Id] = bbi

        /* account for every store in the block */
        for _, v := range bb.Ins {
            p, ok := v.(*ir.IrStore)
            if !ok {
                continue
            }

            /* the copy is generated here */
            i := self.index[p]
            bbi.copy.Set(uint(i))

            /* copies defined elsewhere with the same destination are invalidated */
            for j, c := range self.copies {
                if self.home[c] != bb && self.dstOf(c) == p.Mem {
                    bbi.kill.Set(uint(j))
                }
            }

            /* a copy never kills itself */
            bbi.kill.Clear(uint(i))
        }
    }
}

// initInOut computes CPIn and CPOut by forward iteration over the reverse
// post-order until convergence. The first sweep seeds the vectors with the
// reachable union, the second tightens them with the intersection meet.
// Both reach the same greatest fixed point as the textbook all-ones
// initializer without having to materialize a universal set.
func (self *_DataFlow) initInOut() {
    for changed := true; changed; {
        changed = false
        for _, bb := range self.rpo {
            if self.update(bb, false) {
                changed = true
            }
        }
    }
    for changed := true; changed; {
        changed = false
        for _, bb := range self.rpo {
            if self.update(bb, true) {
                changed = true
            }
        }
    }
}

// update recomputes CPIn and CPOut of one block and reports whether any bit
// changed. The meet is a union while seeding and an intersection once
// tightening. The entry block never has copies available on entry.
func (self *_DataFlow) update(bb *ir.BasicBlock, meet bool) bool {
    bbi := self.info[bb.Id]
    cpin := bitset.New(uint(len(self.copies)))

    /* combine the predecessor outputs, the entry block stays empty */
    if bb != self.fn.Root {
        first := true
        for _, p := range bb.Pred {
            pi := self.info[p.Id]
            if pi == nil {
                continue
            }
            if first || !meet {
                first = false
                cpin.InPlaceUnion(pi.cpout)
            } else {
                cpin.InPlaceIntersection(pi.cpout)
            }
        }
    }

    /* CPOut = COPY ∪ (CPIn \ KILL) */
    cpout := bbi.copy.Union(cpin.Difference(bbi.kill))

    /* check for convergence */
    if bbi.cpin.Equal(cpin) && bbi.cpout.Equal(cpout) {
        return false
    }

    /* install the new vectors */
    bbi.cpin = cpin
    bbi.cpout = cpout
    return true
}

// initACPs converts each block's CPIn vector into its initial table.
// Parameter copies carry no rewrite pair and are skipped. Insertion goes
// through the same closure rule as the rewrite kernel, iterating the bits
// in index order so later stores win over earlier ones.
func (self *_DataFlow) initACPs() {
    for _, bb := range self.rpo {
        bbi := self.info[bb.Id]
        for i, ok := bbi.cpin.NextSet(0); ok; i, ok = bbi.cpin.NextSet(i + 1) {
            if p, yes := self.copies[i].(*ir.IrStore); yes {
                bbi.acp.insert(p.Mem, p.Src)
            }
        }
    }
}

// acpOf returns the seeded table of the block, or a fresh one if the block
// was not reachable during analysis.
func (self *_DataFlow) acpOf(bb *ir.BasicBlock) _ACPTable {
    if bbi := self.info[bb.Id]; bbi != nil {
        return bbi.acp
    } else {
        return make(_ACPTable)
    }
}

func (self *_DataFlow) printCopyIdxs(w io.Writer) {
    fmt.Fprintf(w, "copy_idx:\n")
    for i, v := range self.copies {
        fmt.Fprintf(w, "  %-3d --> %s\n", i, v)
    }
    fmt.Fprintf(w, "\n")
}

func (self *_DataFlow) printDFA(w io.Writer) {
    for _, bb := range self.rpo {
        bbi := self.info[bb.Id]
        fmt.Fprintf(w, "BB bb_%d\n", bb.Id)
        fmt.Fprintf(w, "  CPIn  %s\n", dumpbits(bbi.cpin))
        fmt.Fprintf(w, "  CPOut %s\n", dumpbits(bbi.cpout))
        fmt.Fprintf(w, "  COPY  %s\n", dumpbits(bbi.copy))
        fmt.Fprintf(w, "  KILL  %s\n", dumpbits(bbi.kill))
        fmt.Fprintf(w, "  ACP:\n")
        for _, kv := range bbi.acp.sorted() {
            fmt.Fprintf(w, "  %-30s ==  %s\n", kv.k.Name(), kv.v.Name())
        }
        fmt.Fprintf(w, "\n\n")
    }
}

func dumpbits(bv *bitset.BitSet) string {
    ss := make([]string, 0, bv.Len())
    for i := uint(0); i < bv.Len(); i++ {
        if bv.Test(i) {
            ss = append(ss, "1")
        } else {
            ss = append(ss, "0")
        }
    }
    return strings.Join(ss, " ")
}
