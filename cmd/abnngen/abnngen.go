// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// copied and heavily edited from go src/cmd/gofmt/gofmt.go:

// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goki/gosl/slprint"
)

// flags
var (
	outDir        = flag.String("out", "shaders", "output directory for shader code, relative to where abnngen is invoked")
	excludeFuns   = flag.String("exclude", "Update,Defaults", "names of functions to exclude from exporting to HLSL")
	keepTmp       = flag.Bool("keep", false, "keep temporary converted versions of the source files, for debugging")
	excludeFunMap = map[string]bool{}
)

// Keep these in sync with go/format/format.go.
const (
	tabWidth    = 8
	printerMode = slprint.UseSpaces | slprint.TabIndent | printerNormalizeNumbers

	// printerNormalizeNumbers means to canonicalize number literal prefixes
	// and exponents while printing. See https://golang.org/doc/go1.13#gosl.
	//
	// This value is defined in go/printer specifically for go/format and cmd/gosl.
	printerNormalizeNumbers = 1 << 30
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: abnngen [flags] [path ...]\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *outDir != "" {
		os.MkdirAll(*outDir, 0755)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("at least one file name must be passed")
		return
	}

	for _, fn := range strings.Split(*excludeFuns, ",") {
		excludeFunMap[fn] = true
	}

	files := FilesFromPaths(args)
	if _, err := ProcessFiles(files); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
