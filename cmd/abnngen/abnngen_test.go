// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilesFromPaths(t *testing.T) {
	got := FilesFromPaths([]string{"testdata"})
	if len(got) != 1 {
		t.Fatalf("expected one file under testdata, got %v", got)
	}
	if !strings.HasSuffix(got[0], "traversal.go") {
		t.Errorf("expected traversal.go, got %s", got[0])
	}
}

func TestSlEditsReplace(t *testing.T) {
	lines := [][]byte{
		[]byte("float32 w = 1"),
		[]byte("uint32 clock = 0"),
		[]byte("x = math.Exp(-1)"),
	}
	slEditsReplace(lines)
	joined := string(bytes.Join(lines, []byte("\n")))
	for _, want := range []string{"float w", "uint clock", "exp(-1)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected replaced source to contain %q, got %q", want, joined)
		}
	}
}

func TestExtractHLSLStripsMarkersAndComments(t *testing.T) {
	src := []byte(`package kernel

//gosl: hlsl traversal
/*
[[vk::binding(0, 0)]] uniform Params P;
// a plain comment becomes HLSL directly
[numthreads(64, 1, 1)]
void main(uint3 idx : SV_DispatchThreadID) {}
*/
//gosl: end traversal
`)
	out := ExtractHLSL(src)
	if bytes.Contains(out, []byte("//gosl:")) {
		t.Errorf("expected gosl markers to be stripped, got %q", out)
	}
	if !bytes.Contains(out, []byte("void main(")) {
		t.Errorf("expected shader entry point to survive extraction, got %q", out)
	}
}
