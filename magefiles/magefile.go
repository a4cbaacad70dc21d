//go:build mage

// Package main contains Mage build targets for versacard developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the Convert target uses.
var projectDirs = []string{
	"contacts/in",
	"contacts/out",
}

// Init creates the contacts/in and contacts/out working directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "versacard"
	cmdPkg  = "./cmd/versacard"
)

// Build compiles the CLI binary into bin/, stamping the version from
// VERSACARD_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	args := []string{"build", "-o", out}
	if v := os.Getenv("VERSACARD_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X main.version="+v)
	}
	if err := sh.RunV("go", append(args, cmdPkg)...); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Convert builds the CLI and converts every .pbb and .monosim file in
// contacts/in, plus the folder itself as a vCard merge, into contacts/out.
func Convert() error {
	mg.Deps(Init, Build)

	bin := filepath.Join(binDir, binName)
	entries, err := os.ReadDir(projectDirs[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", projectDirs[0], err)
	}

	converted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".pbb" && ext != ".monosim" {
			continue
		}
		in := filepath.Join(projectDirs[0], e.Name())
		out := filepath.Join(projectDirs[1], strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))+".vcf")
		if err := sh.RunV(bin, "convert", "-o", out, in); err != nil {
			fmt.Printf("  %s: %v\n", in, err)
			continue
		}
		converted++
	}

	merged := filepath.Join(projectDirs[1], "merged.vcf")
	if err := sh.RunV(bin, "convert", "-o", merged, projectDirs[0]); err != nil {
		return fmt.Errorf("merging %s: %w", projectDirs[0], err)
	}
	fmt.Printf("Converted %d file(s); merged vCards into %s\n", converted, merged)
	return nil
}

// Stats prints Go production and test line counts.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines walks root and counts non-blank lines in Go files, split
// into production and test files. Directories starting with _ or . are
// skipped, as the go tool does.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
