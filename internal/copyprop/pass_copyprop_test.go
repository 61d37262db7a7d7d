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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/zaviermiller/cpass/internal/opts`
    `github.com/zaviermiller/cpass/ir`
)

func loadsOf(fn *ir.Func) (r []*ir.IrLoad) {
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if p, ok := v.(*ir.IrLoad); ok {
                r = append(r, p)
            }
        }
    }
    return
}

func storesOf(fn *ir.Func) (r []*ir.IrStore) {
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if p, ok := v.(*ir.IrStore); ok {
                r = append(r, p)
            }
        }
    }
    return
}

func callsOf(fn *ir.Func) (r []*ir.IrCall) {
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if p, ok := v.(*ir.IrCall); ok {
                r = append(r, p)
            }
        }
    }
    return
}

func TestCopyProp_LocalChain(t *testing.T) {
    p := ir.CreateBuilder("local_chain")
    a := p.Param("a")
    x := p.Alloca("x")
    y := p.Alloca("y")
    p.Store(a, x)
    p.Store(p.Load(x), y)
    p.Print(p.Load(y))
    p.RET()
    fn := p.Build()
    r0 := ir.Exec(fn, 7)

    /* the whole chain collapses onto the parameter */
    require.True(t, Run(fn, opts.Options{}))
    require.Empty(t, loadsOf(fn))

    /* both stores now source the parameter directly */
    ss := storesOf(fn)
    require.Len(t, ss, 2)
    assert.Same(t, a, ss[0].Src)
    assert.Same(t, a, ss[1].Src)

    /* so does the print */
    cs := callsOf(fn)
    require.Len(t, cs, 1)
    assert.Same(t, a, cs[0].In[0])

    /* behavior is unchanged */
    require.Equal(t, r0, ir.Exec(fn, 7))
}

func TestCopyProp_OverwriteKills(t *testing.T) {
    p := ir.CreateBuilder("overwrite")
    a := p.Param("a")
    b := p.Param("b")
    x := p.Alloca("x")
    p.Store(a, x)
    p.Print(p.Load(x))
    p.Store(b, x)
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()
    r0 := ir.Exec(fn, 1, 2)

    /* every load resolves against the store in force at its position */
    require.True(t, Run(fn, opts.Options{}))
    require.Empty(t, loadsOf(fn))
    cs := callsOf(fn)
    require.Len(t, cs, 2)
    assert.Same(t, a, cs[0].In[0])
    assert.Same(t, b, cs[1].In[0])
    require.Equal(t, r0, ir.Exec(fn, 1, 2))
}

func TestCopyProp_DiamondAgreement(t *testing.T) {
    p := ir.CreateBuilder("diamond_agree")
    a := p.Param("a")
    c := p.Param("c")
    x := p.Alloca("x")
    p.Store(a, x)
    p.BEQ(c, p.Int(0), "then")
    p.Print(p.Int(1))
    p.JMP("join")
    p.Label("then")
    p.Print(p.Int(2))
    p.Label("join")
    v := p.Load(x)
    p.Print(v)
    p.RET(v)
    fn := p.Build()
    r0 := ir.Exec(fn, 9, 0)
    r1 := ir.Exec(fn, 9, 1)

    /* both paths agree on the content of x, the join load goes away */
    require.True(t, Run(fn, opts.Options{}))
    require.Empty(t, loadsOf(fn))

    /* the join print and the return both use the parameter now */
    cs := callsOf(fn)
    require.Len(t, cs, 3)
    assert.Same(t, a, cs[2].In[0])
    join := fn.Blocks[len(fn.Blocks) - 1]
    ret := join.Term.(*ir.IrReturn)
    require.Len(t, ret.R, 1)
    assert.Same(t, a, ret.R[0])

    /* behavior is unchanged on both paths */
    require.Equal(t, r0, ir.Exec(fn, 9, 0))
    require.Equal(t, r1, ir.Exec(fn, 9, 1))
}

func TestCopyProp_DiamondDisagreement(t *testing.T) {
    p := ir.CreateBuilder("diamond_disagree")
    a := p.Param("a")
    b := p.Param("b")
    c := p.Param("c")
    x := p.Alloca("x")
    p.Store(a, x)
    p.BEQ(c, p.Int(0), "then")
    p.JMP("join")
    p.Label("then")
    p.Store(b, x)
    p.Label("join")
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()

    /* the paths disagree, the load must survive and nothing changes */
    require.False(t, Run(fn, opts.Options{}))
    ls := loadsOf(fn)
    require.Len(t, ls, 1)
    assert.Same(t, x, ls[0].Mem)

    /* the print still consumes the load */
    cs := callsOf(fn)
    require.Len(t, cs, 1)
    assert.Same(t, ls[0], cs[0].In[0])

    /* both paths still behave */
    require.Equal(t, []int64 { 5 }, ir.Exec(fn, 4, 5, 0).Out)
    require.Equal(t, []int64 { 4 }, ir.Exec(fn, 4, 5, 1).Out)
}

func TestCopyProp_LoopOverwrite(t *testing.T) {
    p := ir.CreateBuilder("loop_overwrite")
    a := p.Param("a")
    n := p.Param("n")
    x := p.Alloca("x")
    i := p.Alloca("i")
    p.Store(a, x)
    p.Store(p.Int(0), i)
    p.Label("head")
    ti := p.Load(i)
    tx := p.Load(x)
    p.Print(tx)
    p.Store(p.Add(tx, p.Int(1)), x)
    p.Store(p.Add(ti, p.Int(1)), i)
    p.BLT(p.Load(i), n, "head")
    p.RET(p.Load(x))
    fn := p.Build()
    r0 := ir.Exec(fn, 5, 3)

    /* the latch overwrites both slots, the in-loop loads must survive */
    require.True(t, Run(fn, opts.Options{}))
    ls := loadsOf(fn)
    require.Len(t, ls, 2)
    assert.Same(t, i, ls[0].Mem)
    assert.Same(t, x, ls[1].Mem)

    /* the exit load was folded onto the last stored value */
    exit := fn.Blocks[len(fn.Blocks) - 1]
    ret := exit.Term.(*ir.IrReturn)
    require.Len(t, ret.R, 1)
    _, ok := ret.R[0].(*ir.IrBinaryExpr)
    assert.True(t, ok)

    /* behavior is unchanged */
    require.Equal(t, r0, ir.Exec(fn, 5, 3))
    require.Equal(t, []int64 { 5, 6, 7 }, r0.Out)
    require.Equal(t, []int64 { 8 }, r0.Ret)
}

func TestCopyProp_LaterStoreWins(t *testing.T) {
    p := ir.CreateBuilder("later_wins")
    a := p.Param("a")
    c := p.Param("c")
    x := p.Alloca("x")
    p.Store(a, x)
    p.Store(c, x)
    p.JMP("next")
    p.Label("next")
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()
    r0 := ir.Exec(fn, 1, 2)

    /* both stores flow into the successor, the later one is in force */
    require.True(t, Run(fn, opts.Options{}))
    require.Empty(t, loadsOf(fn))
    cs := callsOf(fn)
    require.Len(t, cs, 1)
    assert.Same(t, c, cs[0].In[0])
    require.Equal(t, r0, ir.Exec(fn, 1, 2))
}

func TestCopyProp_Idempotent(t *testing.T) {
    p := ir.CreateBuilder("idempotent")
    a := p.Param("a")
    c := p.Param("c")
    x := p.Alloca("x")
    p.Store(a, x)
    p.BEQ(c, p.Int(0), "then")
    p.Print(p.Load(x))
    p.JMP("join")
    p.Label("then")
    p.Store(p.Add(a, p.Int(1)), x)
    p.Print(p.Load(x))
    p.Label("join")
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()

    /* the first run mutates, the second finds nothing left to do */
    require.True(t, Run(fn, opts.Options{}))
    s := fn.String()
    require.False(t, Run(fn, opts.Options{}))
    require.Equal(t, s, fn.String())
}

func TestCopyProp_Verbose(t *testing.T) {
    p := ir.CreateBuilder("verbose")
    a := p.Param("a")
    x := p.Alloca("x")
    p.Store(a, x)
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()

    /* the dumps only have to not blow up */
    require.True(t, Run(fn, opts.Options { Verbose: true }))
}
