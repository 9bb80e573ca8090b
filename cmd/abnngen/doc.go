// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Abnngen extracts the `//gosl:`-annotated kernel code in internal/kernel,
writes the corresponding HLSL compute-shader source to the -out
directory and compiles each .hlsl file to SPIR-V (.spv) with glslc, so the
traversal and renormalisation kernels have one Go-syntax source of
truth that also runs, unmodified, on the CPU dispatcher.

Usage:

	abnngen [flags] [path ...]

The flags are:

	-out dir
		output directory for shader code, relative to where abnngen is invoked (default "shaders")
	-exclude names
		comma-separated function names to exclude from the exported shader (default "Update,Defaults")
	-keep
		keep temporary converted versions of the source files, for debugging

Given a file, abnngen processes that file; given a directory, it walks
all .go files in that directory, recursively. Only code between a
`//gosl: start <name>` and matching `//gosl: end <name>` comment pair
is translated; everything else is CPU-only Go and is left alone.
*/
package main
