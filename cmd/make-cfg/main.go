// Command make-cfg statically recovers the control-flow graph of every
// reachable function in a 32-bit ELF executable, plus the inter-procedural
// call graph, and emits them as DOT, VCG, JSON, or a binary serialization.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"makecfg/internal/addrspace"
	"makecfg/internal/cfg"
	"makecfg/internal/diagnostics"
	"makecfg/internal/disasm"
	"makecfg/internal/driver"
	"makecfg/internal/program"
	"makecfg/internal/render"
	"makecfg/internal/serialize"
)

func main() {
	fs := flag.NewFlagSet("make-cfg", flag.ContinueOnError)
	dotDir := fs.String("dot", "", "emit per-function .dot files and callgraph.dot in this directory")
	vcgDir := fs.String("vcg", "", "emit per-function .vcg files and callgraph.vcg in this directory")
	jsonDir := fs.String("json", "", "emit <dir>/cfg.json (suppresses --dot/--vcg emission)")
	cfgOut := fs.String("cfg-out", "", "write a binary serialization of the program to this path")
	verbose := fs.Bool("verbose", false, "preview the first instructions decoded from the ELF entry point")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: make-cfg [options] <elf-path>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := run(fs.Arg(0), *dotDir, *vcgDir, *jsonDir, *cfgOut, *verbose); err != nil {
		diagnostics.Fatalf("%v", err)
	}
}

func run(elfPath, dotDir, vcgDir, jsonDir, cfgOut string, verbose bool) error {
	loaded, err := addrspace.Load(elfPath)
	if err != nil {
		return err
	}

	p := program.New(loaded.AS, loaded.Symbols)
	p.AddModule(loaded.Module)
	p.Ensure(loaded.Entry)

	dec := disasm.X86Decoder{}

	if verbose {
		fmt.Fprint(os.Stderr, disasm.Preview(dec, loaded.AS.BytesAt, loaded.Entry, 10))
	}

	driver.Run(p, dec)
	reportSanity(p)

	switch {
	case jsonDir != "":
		if err := emitJSON(p, jsonDir); err != nil {
			return err
		}
	default:
		if dotDir != "" {
			if err := emitDOT(p, dotDir); err != nil {
				return err
			}
		}
		if vcgDir != "" {
			if err := emitVCG(p, vcgDir); err != nil {
				return err
			}
		}
	}

	if cfgOut != "" {
		if err := serialize.WriteFile(cfgOut, p); err != nil {
			return err
		}
	}
	return nil
}

func reportSanity(p *program.Program) {
	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		if violations := cfg.SanityCheck(f.CFG); len(violations) > 0 {
			diagnostics.ReportViolations(f.Name, violations)
		}
	}
}

func emitDOT(p *program.Program, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		path := filepath.Join(dir, f.Entry.String()+".dot")
		if err := os.WriteFile(path, []byte(render.DOTFunction(f)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	path := filepath.Join(dir, "callgraph.dot")
	return os.WriteFile(path, []byte(render.DOTCallGraph(p)), 0o644)
}

func emitVCG(p *program.Program, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	for _, a := range p.SortedEntries() {
		f, _ := p.Get(a)
		path := filepath.Join(dir, f.Entry.String()+".vcg")
		if err := os.WriteFile(path, []byte(render.VCGFunction(f)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	path := filepath.Join(dir, "callgraph.vcg")
	return os.WriteFile(path, []byte(render.VCGCallGraph(p)), 0o644)
}

func emitJSON(p *program.Program, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	data, err := render.JSON(p)
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	path := filepath.Join(dir, "cfg.json")
	return os.WriteFile(path, data, 0o644)
}
