// Copyright (c) 2022, The Goki Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alignsl checks that Go structs crossing the host/device
// boundary are safe to reinterpret as packed GPU buffers: every field
// is a 32-bit scalar (or nested struct of such), and the total size is
// a multiple of 16 bytes (4 float32 lanes), matching the std140-style
// layout rules compute shaders expect.
package alignsl

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Sizes is the target's type-size table, set by CheckPackage before
// any CheckStruct call.
var Sizes types.Sizes

// CheckStruct reports layout problems in st as a slice of messages;
// an empty slice means the struct is GPU-safe.
func CheckStruct(st *types.Struct) []string {
	var issues []string
	var flds []*types.Var
	nf := st.NumFields()
	if nf == 0 {
		return issues
	}
	for i := 0; i < nf; i++ {
		fl := st.Field(i)
		flds = append(flds, fl)
		ft := fl.Type()
		ut := ft.Underlying()
		if bt, isBasic := ut.(*types.Basic); isBasic {
			kind := bt.Kind()
			if !(kind == types.Uint32 || kind == types.Int32 || kind == types.Float32) {
				issues = append(issues, fmt.Sprintf("%s: basic type != [U]Int32 or Float32: %s", fl.Name(), bt.String()))
			}
		} else if _, is := ut.(*types.Struct); !is {
			issues = append(issues, fmt.Sprintf("%s: unsupported type: %s", fl.Name(), ft.String()))
		}
	}
	offs := Sizes.Offsetsof(flds)
	last := Sizes.Sizeof(flds[nf-1].Type())
	totsz := int(offs[nf-1] + last)
	if totsz%16 != 0 {
		issues = append(issues, fmt.Sprintf("total size: %d not even multiple of 16", totsz))
	}
	return issues
}

// CheckPackage walks every named struct type in pkg's scope and
// returns a single error describing all layout violations found, or
// nil if the package's GPU-bound structs are all safe.
func CheckPackage(pkg *packages.Package) error {
	Sizes = pkg.TypesSizes
	var issues []string
	checkScope(pkg.Types.Scope(), &issues)
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("alignsl: %s", strings.Join(issues, "; "))
}

func checkScope(sc *types.Scope, issues *[]string) {
	nms := sc.Names()
	ntyp := 0
	for _, nm := range nms {
		ob := sc.Lookup(nm)
		tp := ob.Type()
		if tp == nil {
			continue
		}
		nt, is := tp.(*types.Named)
		if !is {
			continue
		}
		ut := nt.Underlying()
		if ut == nil {
			continue
		}
		if st, is := ut.(*types.Struct); is {
			for _, msg := range CheckStruct(st) {
				*issues = append(*issues, fmt.Sprintf("%s.%s", nt.Obj().Name(), msg))
			}
			ntyp++
		}
	}
	if ntyp == 0 {
		for i := 0; i < sc.NumChildren(); i++ {
			checkScope(sc.Child(i), issues)
		}
	}
}
