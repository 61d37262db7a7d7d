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
    `sort`
    `strings`
)

// Value is an opaque handle to anything an instruction operand may refer to:
// a formal parameter, a constant, or the result of an instruction. Equality
// is identity, two distinct handles are never the same value even if they
// would evaluate to the same bits.
type Value interface {
    fmt.Stringer
    Name() string
    value()
}

func (*Param)        value() {}
func (*ConstInt)     value() {}
func (*IrAlloca)     value() {}
func (*IrLoad)       value() {}
func (*IrStore)      value() {}
func (*IrUnaryExpr)  value() {}
func (*IrBinaryExpr) value() {}
func (*IrCall)       value() {}

// Param is a formal parameter of a function.
type Param struct {
    Sym string
}

func (self *Param) Name() string {
    return "%" + self.Sym
}

func (self *Param) String() string {
    return self.Name()
}

// ConstInt is an integer literal operand.
type ConstInt struct {
    V int64
}

func (self *ConstInt) Name() string {
    return fmt.Sprintf("$%d", self.V)
}

func (self *ConstInt) String() string {
    return self.Name()
}

type IrNode interface {
    fmt.Stringer
    irnode()
}

func (*IrAlloca)     irnode() {}
func (*IrLoad)       irnode() {}
func (*IrStore)      irnode() {}
func (*IrUnaryExpr)  irnode() {}
func (*IrBinaryExpr) irnode() {}
func (*IrCall)       irnode() {}
func (*IrSwitch)     irnode() {}
func (*IrReturn)     irnode() {}

// IrUsages is implemented by every node with rewritable operand slots. The
// returned pointers address the operand slots themselves, assigning through
// them rewrites the instruction in place.
type IrUsages interface {
    IrNode
    Usages() []*Value
}

// IrAlloca reserves a named stack slot. The instruction handle itself is the
// address value of the slot.
type IrAlloca struct {
    Sym string
}

func (self *IrAlloca) Name() string {
    return "%" + self.Sym
}

func (self *IrAlloca) String() string {
    return fmt.Sprintf("%s = alloca", self.Name())
}

// IrStore writes Src into the memory location named by Mem.
type IrStore struct {
    Src Value
    Mem Value
}

func (self *IrStore) Name() string {
    return fmt.Sprintf("store(%s -> *%s)", self.Src.Name(), self.Mem.Name())
}

func (self *IrStore) String() string {
    return self.Name()
}

func (self *IrStore) Usages() []*Value {
    return []*Value { &self.Src, &self.Mem }
}

// IrLoad reads from the memory location named by Mem. The instruction handle
// itself is the loaded value.
type IrLoad struct {
    Sym string
    Mem Value
}

func (self *IrLoad) Name() string {
    return "%" + self.Sym
}

func (self *IrLoad) String() string {
    return fmt.Sprintf("%s = load *%s", self.Name(), self.Mem.Name())
}

func (self *IrLoad) Usages() []*Value {
    return []*Value { &self.Mem }
}

type (
    IrUnaryOp  uint8
    IrBinaryOp uint8
)

const (
    IrOpNegate IrUnaryOp = iota
)

const (
    IrOpAdd IrBinaryOp = iota
    IrOpSub
    IrOpMul
    IrOpAnd
    IrOpOr
    IrOpXor
    IrOpShr
    IrCmpEq
    IrCmpNe
    IrCmpLt
)

func (self IrUnaryOp) String() string {
    switch self {
        case IrOpNegate : return "-"
        default         : panic("unreachable")
    }
}

func (self IrBinaryOp) String() string {
    switch self {
        case IrOpAdd : return "+"
        case IrOpSub : return "-"
        case IrOpMul : return "*"
        case IrOpAnd : return "&"
        case IrOpOr  : return "|"
        case IrOpXor : return "^"
        case IrOpShr : return ">>"
        case IrCmpEq : return "=="
        case IrCmpNe : return "!="
        case IrCmpLt : return "<"
        default      : panic("unreachable")
    }
}

type IrUnaryExpr struct {
    Sym string
    V   Value
    Op  IrUnaryOp
}

func (self *IrUnaryExpr) Name() string {
    return "%" + self.Sym
}

func (self *IrUnaryExpr) String() string {
    return fmt.Sprintf("%s = %s%s", self.Name(), self.Op, self.V.Name())
}

func (self *IrUnaryExpr) Usages() []*Value {
    return []*Value { &self.V }
}

type IrBinaryExpr struct {
    Sym string
    X   Value
    Y   Value
    Op  IrBinaryOp
}

func (self *IrBinaryExpr) Name() string {
    return "%" + self.Sym
}

func (self *IrBinaryExpr) String() string {
    return fmt.Sprintf("%s = %s %s %s", self.Name(), self.X.Name(), self.Op, self.Y.Name())
}

func (self *IrBinaryExpr) Usages() []*Value {
    return []*Value { &self.X, &self.Y }
}

// IrCall invokes a host intrinsic with no result. It exists to give programs
// an observable effect, its operands are rewritable like any other.
type IrCall struct {
    Fn string
    In []Value
}

func (self *IrCall) Name() string {
    return self.String()
}

func (self *IrCall) String() string {
    in := make([]string, 0, len(self.In))
    for _, v := range self.In { in = append(in, v.Name()) }
    return fmt.Sprintf("call %s, {%s}", self.Fn, strings.Join(in, ", "))
}

func (self *IrCall) Usages() []*Value {
    return valuesliceref(self.In)
}

type IrSuccessors interface {
    Next() bool
    Block() *BasicBlock
    Value() (int64, bool)
}

type IrTerminator interface {
    IrNode
    Successors() IrSuccessors
    irterminator()
}

func (*IrSwitch) irterminator() {}
func (*IrReturn) irterminator() {}

type _SwitchSuccessors struct {
    i int
    k []int64
    v []*BasicBlock
}

func (self *_SwitchSuccessors) Next() bool {
    self.i++
    return self.i < len(self.v)
}

func (self *_SwitchSuccessors) Block() *BasicBlock {
    return self.v[self.i]
}

func (self *_SwitchSuccessors) Value() (int64, bool) {
    if self.i >= len(self.k) {
        return 0, false
    } else {
        return self.k[self.i], true
    }
}

// IrSwitch transfers control to the branch matching V, or to Ln when no
// branch matches. With an empty branch table it is an unconditional jump.
type IrSwitch struct {
    V  Value
    Ln *BasicBlock
    Br map[int64]*BasicBlock
}

func (self *IrSwitch) String() string {
    nb := len(self.Br)
    ret := make([]string, 0, nb)

    /* no branches */
    if nb == 0 {
        return fmt.Sprintf("goto bb_%d", self.Ln.Id)
    }

    /* add each case */
    for _, id := range self.keys() {
        ret = append(ret, fmt.Sprintf("  %d => bb_%d,", id, self.Br[id].Id))
    }

    /* default branch */
    ret = append(ret, fmt.Sprintf(
        "  _ => bb_%d,",
        self.Ln.Id,
    ))

    /* join them together */
    return fmt.Sprintf(
        "switch %s {\n%s\n}",
        self.V.Name(),
        strings.Join(ret, "\n"),
    )
}

func (self *IrSwitch) keys() []int64 {
    ks := make([]int64, 0, len(self.Br))
    for id := range self.Br { ks = append(ks, id) }
    sort.Slice(ks, func(i int, j int) bool { return ks[i] < ks[j] })
    return ks
}

func (self *IrSwitch) Usages() []*Value {
    if self.V == nil {
        return nil
    } else {
        return []*Value { &self.V }
    }
}

func (self *IrSwitch) Successors() IrSuccessors {
    ks := self.keys()
    vs := make([]*BasicBlock, 0, len(ks) + 1)
    for _, id := range ks { vs = append(vs, self.Br[id]) }
    return &_SwitchSuccessors {
        i: -1,
        k: ks,
        v: append(vs, self.Ln),
    }
}

type _EmptySuccessor struct{}
func (_EmptySuccessor) Next()  bool          { return false }
func (_EmptySuccessor) Block() *BasicBlock   { return nil }
func (_EmptySuccessor) Value() (int64, bool) { return 0, false }

type IrReturn struct {
    R []Value
}

func (self *IrReturn) String() string {
    nb := len(self.R)
    ret := make([]string, 0, nb)

    /* dump the return values */
    for _, v := range self.R {
        ret = append(ret, v.Name())
    }

    /* join them together */
    return fmt.Sprintf(
        "ret {%s}",
        strings.Join(ret, ", "),
    )
}

func (self *IrReturn) Usages() []*Value {
    return valuesliceref(self.R)
}

func (self *IrReturn) Successors() IrSuccessors {
    return _EmptySuccessor{}
}

func valuesliceref(v []Value) (r []*Value) {
    r = make([]*Value, len(v))
    for i := range v { r[i] = &v[i] }
    return
}
