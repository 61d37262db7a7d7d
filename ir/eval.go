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
)

const (
    _MaxSteps = 65536
)

// ExecResult captures the observable behavior of one execution: the values
// returned and the trace of the "print" intrinsic.
type ExecResult struct {
    Ret []int64
    Out []int64
}

type _Emulator struct {
    val  map[Value]int64
    mem  map[Value]int64
    out  []int64
    fuel int
}

// Exec interprets the function over the given arguments. It exists as the
// reference semantics of the IR, an optimization pass must not change what
// Exec observes. Structural violations and non-terminating programs panic.
func Exec(fn *Func, args ...int64) ExecResult {
    if len(args) != len(fn.Params) {
        panic(fmt.Sprintf("emu: function %s takes %d arguments", fn.Name, len(fn.Params)))
    }

    /* bind the parameters */
    p := &_Emulator {
        val  : make(map[Value]int64),
        mem  : make(map[Value]int64),
        fuel : _MaxSteps,
    }
    for i, a := range fn.Params {
        p.val[a] = args[i]
    }

    /* run from the entry block */
    return p.run(fn.Root)
}

func (self *_Emulator) run(bb *BasicBlock) ExecResult {
    for {
        for _, v := range bb.Ins {
            self.step(v)
        }

        /* basic blocks must terminate */
        if bb.Term == nil {
            panic(fmt.Sprintf("emu: basic block %d does not terminate", bb.Id))
        }

        /* dispatch on the terminator */
        switch p := bb.Term.(type) {
            default: {
                panic("emu: invalid terminator")
            }

            /* conditional and unconditional jumps */
            case *IrSwitch: {
                bb = self.branch(p)
            }

            /* procedure return */
            case *IrReturn: {
                ret := make([]int64, 0, len(p.R))
                for _, r := range p.R { ret = append(ret, self.valueOf(r)) }
                return ExecResult { Ret: ret, Out: self.out }
            }
        }
    }
}

func (self *_Emulator) step(v IrNode) {
    if self.fuel--; self.fuel < 0 {
        panic("emu: step limit exceeded")
    }

    /* dispatch on the instruction */
    switch p := v.(type) {
        default: {
            panic("emu: invalid instruction: " + v.String())
        }

        /* stack slots start out as zero */
        case *IrAlloca: {
            self.mem[p] = 0
        }

        /* memory operations */
        case *IrStore : self.mem[p.Mem] = self.valueOf(p.Src)
        case *IrLoad  : self.val[p] = self.mem[p.Mem]

        /* arithmetics */
        case *IrUnaryExpr  : self.val[p] = self.unary(p)
        case *IrBinaryExpr : self.val[p] = self.binary(p)

        /* intrinsic calls */
        case *IrCall: {
            if p.Fn != "print" {
                panic("emu: unknown intrinsic: " + p.Fn)
            }
            for _, r := range p.In {
                self.out = append(self.out, self.valueOf(r))
            }
        }
    }
}

func (self *_Emulator) unary(p *IrUnaryExpr) int64 {
    switch p.Op {
        case IrOpNegate : return -self.valueOf(p.V)
        default         : panic("emu: invalid unary operator")
    }
}

func (self *_Emulator) binary(p *IrBinaryExpr) int64 {
    x := self.valueOf(p.X)
    y := self.valueOf(p.Y)

    /* evaluate the operator */
    switch p.Op {
        case IrOpAdd : return x + y
        case IrOpSub : return x - y
        case IrOpMul : return x * y
        case IrOpAnd : return x & y
        case IrOpOr  : return x | y
        case IrOpXor : return x ^ y
        case IrOpShr : return x >> uint64(y)
        case IrCmpEq : if x == y { return 1 } else { return 0 }
        case IrCmpNe : if x != y { return 1 } else { return 0 }
        case IrCmpLt : if x <  y { return 1 } else { return 0 }
        default      : panic("emu: invalid binary operator")
    }
}

func (self *_Emulator) branch(p *IrSwitch) *BasicBlock {
    if p.V == nil {
        return p.Ln
    } else if bb, ok := p.Br[self.valueOf(p.V)]; ok {
        return bb
    } else {
        return p.Ln
    }
}

func (self *_Emulator) valueOf(v Value) int64 {
    switch p := v.(type) {
        case *ConstInt: {
            return p.V
        }
        default: {
            if r, ok := self.val[p]; ok {
                return r
            }
            panic("emu: use of undefined value: " + v.Name())
        }
    }
}
