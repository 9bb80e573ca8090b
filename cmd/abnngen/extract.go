// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadedPackageNames holds the base names of packages imported by the
// kernel source being processed, so ExtractFiles can strip their
// qualifiers (e.g. "slrand.RandFloat" -> "RandFloat") before emitting
// shader source, which has no notion of packages.
var LoadedPackageNames = map[string]bool{
	"math":    true,
	"mat32":   true,
	"slbool":  true,
	"slrand":  true,
	"sltype":  true,
	"synapse": true,
	"kernel":  true,
}

func isGoFile(f fs.DirEntry) bool {
	name := f.Name()
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".go") && !f.IsDir()
}

// FilesFromPaths expands a list of file and directory arguments into a
// flat list of .go file paths, walking directories recursively.
func FilesFromPaths(paths []string) []string {
	seen := map[string]bool{}
	var files []string
	add := func(fn string) {
		if seen[fn] {
			return
		}
		seen[fn] = true
		files = append(files, fn)
	}
	for _, arg := range paths {
		info, err := os.Stat(arg)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !isGoFile(d) {
				return err
			}
			add(path)
			return nil
		})
	}
	return files
}
