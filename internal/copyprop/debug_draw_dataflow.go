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

    `github.com/ajstarks/svgo`
    `github.com/bits-and-blooms/bitset`
)

const (
    _CellW = 24
    _CellH = 20
    _RowGap = 8
)

var _VecNames = [...]string {
    "CPIn",
    "CPOut",
    "COPY",
    "KILL",
}

// draw_dataflow renders the per-block analysis vectors as an SVG grid, one
// column per copy index, a filled cell for a set bit. Debugging aid only.
func draw_dataflow(fn string, dfa *_DataFlow) {
    nc := len(dfa.copies)
    nb := len(dfa.rpo)
    fp, err := os.OpenFile(fn, os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0644)

    /* the caller wants the picture, so failing to draw is fatal */
    if err != nil {
        panic(err)
    }

    /* canvas large enough for every block */
    defer fp.Close()
    p := svg.New(fp)
    p.Start(nc * _CellW + 180, nb * (len(_VecNames) * _CellH + _CellH + _RowGap) + 60)

    /* one band of four vector rows per block */
    for i, bb := range dfa.rpo {
        bbi := dfa.info[bb.Id]
        top := 30 + i * (len(_VecNames) * _CellH + _CellH + _RowGap)
        p.Text(10, top + 14, fmt.Sprintf("bb_%d", bb.Id), "fill:gray;font-size:14px;font-family:monospace")

        /* draw the four vectors */
        vecs := [...]*bitset.BitSet { bbi.cpin, bbi.cpout, bbi.copy, bbi.kill }
        for j, bv := range vecs {
            y := top + _CellH + j * _CellH
            p.Text(10, y + 14, _VecNames[j], "fill:black;font-size:12px;font-family:monospace")

            /* one cell per copy index */
            for k := 0; k < nc; k++ {
                x := 80 + k * _CellW
                if bv.Test(uint(k)) {
                    p.Rect(x, y, _CellW, _CellH, "fill:steelblue;stroke:gray")
                } else {
                    p.Rect(x, y, _CellW, _CellH, "fill:white;stroke:gray")
                }
            }
        }
    }

    /* finish the document */
    p.End()
}
