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

package cpass

import (
    `testing`

    `github.com/stretchr/testify/require`
    `github.com/zaviermiller/cpass/ir`
)

func TestRun_Propagates(t *testing.T) {
    p := ir.CreateBuilder("copy_chain")
    a := p.Param("a")
    x := p.Alloca("x")
    y := p.Alloca("y")
    p.Store(a, x)
    p.Store(p.Load(x), y)
    p.Print(p.Load(y))
    p.RET(p.Load(y))
    fn := p.Build()
    r0 := ir.Exec(fn, 11)

    /* the pass mutates once, then settles */
    require.True(t, Run(fn))
    require.False(t, Run(fn))
    require.Equal(t, r0, ir.Exec(fn, 11))

    /* every load is gone */
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            _, ok := v.(*ir.IrLoad)
            require.False(t, ok)
        }
    }
}

func TestRun_Verbose(t *testing.T) {
    p := ir.CreateBuilder("verbose")
    a := p.Param("a")
    x := p.Alloca("x")
    p.Store(a, x)
    p.Print(p.Load(x))
    p.RET()
    fn := p.Build()
    require.True(t, Run(fn, WithVerbose(true)))
}
