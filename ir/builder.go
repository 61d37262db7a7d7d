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
    `strconv`
)

// Builder assembles a Func from a linear instruction stream with labels and
// branches, in the order the instructions are emitted.
type Builder struct {
    i    int
    fn   *Func
    bb   *BasicBlock
    refs map[string]*BasicBlock
    mark map[string]bool
}

func CreateBuilder(name string) *Builder {
    root := &BasicBlock { Id: 0 }
    return &Builder {
        bb   : root,
        refs : make(map[string]*BasicBlock),
        mark : make(map[string]bool),
        fn   : &Func {
            Name   : name,
            Root   : root,
            Blocks : []*BasicBlock { root },
        },
    }
}

// Param declares the next formal parameter.
func (self *Builder) Param(sym string) *Param {
    p := &Param { Sym: sym }
    self.fn.Params = append(self.fn.Params, p)
    return p
}

// Int creates an integer literal operand.
func (self *Builder) Int(v int64) Value {
    return &ConstInt { V: v }
}

func (self *Builder) Alloca(sym string) Value {
    p := &IrAlloca { Sym: sym }
    self.emit(p)
    return p
}

func (self *Builder) Store(src Value, mem Value) {
    self.emit(&IrStore { Src: src, Mem: mem })
}

func (self *Builder) Load(mem Value) Value {
    p := &IrLoad { Sym: self.temp(), Mem: mem }
    self.emit(p)
    return p
}

func (self *Builder) Neg(v Value) Value {
    p := &IrUnaryExpr { Sym: self.temp(), V: v, Op: IrOpNegate }
    self.emit(p)
    return p
}

func (self *Builder) Binary(x Value, op IrBinaryOp, y Value) Value {
    p := &IrBinaryExpr { Sym: self.temp(), X: x, Y: y, Op: op }
    self.emit(p)
    return p
}

func (self *Builder) Add(x Value, y Value) Value { return self.Binary(x, IrOpAdd, y) }
func (self *Builder) Sub(x Value, y Value) Value { return self.Binary(x, IrOpSub, y) }
func (self *Builder) Mul(x Value, y Value) Value { return self.Binary(x, IrOpMul, y) }

// Print emits a call to the "print" intrinsic, the canonical observable use
// of a value.
func (self *Builder) Print(in ...Value) {
    self.emit(&IrCall { Fn: "print", In: in })
}

// Label places the block named by to at the current position. Control falls
// through from the previous block unless it already terminated.
func (self *Builder) Label(to string) {
    bb := self.block(to)

    /* check for duplications */
    if self.mark[to] {
        panic("label " + to + " has already been linked")
    }

    /* fall through from the current block */
    if self.bb != nil && self.bb.Term == nil {
        self.bb.Term = &IrSwitch { Ln: bb }
    }

    /* place the block */
    self.mark[to] = true
    self.place(bb)
    self.bb = bb
}

// JMP terminates the current block with an unconditional jump.
func (self *Builder) JMP(to string) {
    self.current().Term = &IrSwitch { Ln: self.block(to) }
    self.bb = nil
}

// BEQ branches to the label when x equals y, otherwise falls through.
func (self *Builder) BEQ(x Value, y Value, to string) {
    cmp := self.Binary(x, IrCmpEq, y)
    self.branch(cmp, to)
}

// BNE branches to the label when x does not equal y, otherwise falls through.
func (self *Builder) BNE(x Value, y Value, to string) {
    cmp := self.Binary(x, IrCmpNe, y)
    self.branch(cmp, to)
}

// BLT branches to the label when x is less than y, otherwise falls through.
func (self *Builder) BLT(x Value, y Value, to string) {
    cmp := self.Binary(x, IrCmpLt, y)
    self.branch(cmp, to)
}

// RET terminates the current block, returning the given values.
func (self *Builder) RET(vs ...Value) {
    self.current().Term = &IrReturn { R: vs }
    self.bb = nil
}

// Build finalizes the function. It panics if any referenced label was never
// placed or the last block does not terminate.
func (self *Builder) Build() *Func {
    for key := range self.refs {
        if !self.mark[key] {
            panic("labels are not fully resolved: " + key)
        }
    }

    /* the function must end in a terminator */
    if self.bb != nil && self.bb.Term == nil {
        panic(fmt.Sprintf("basic block %d does not terminate", self.bb.Id))
    }

    /* link the predecessors */
    self.fn.Rebuild()
    return self.fn
}

func (self *Builder) temp() string {
    i := self.i
    self.i++
    return "t" + strconv.Itoa(i)
}

func (self *Builder) emit(p IrNode) {
    self.current().Ins = append(self.current().Ins, p)
}

func (self *Builder) place(bb *BasicBlock) {
    bb.Id = len(self.fn.Blocks)
    self.fn.Blocks = append(self.fn.Blocks, bb)
}

func (self *Builder) block(to string) *BasicBlock {
    if bb, ok := self.refs[to]; ok {
        return bb
    } else {
        bb = &BasicBlock { Id: -1 }
        self.refs[to] = bb
        return bb
    }
}

func (self *Builder) branch(cmp Value, to string) {
    fall := &BasicBlock { Id: -1 }
    self.current().Term = &IrSwitch {
        V  : cmp,
        Ln : fall,
        Br : map[int64]*BasicBlock { 1: self.block(to) },
    }
    self.place(fall)
    self.bb = fall
}

func (self *Builder) current() *BasicBlock {
    if self.bb == nil {
        panic("unreachable instruction, missing label")
    } else {
        return self.bb
    }
}
