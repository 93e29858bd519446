// Package main provides the CLI entrypoint for tosca-resolver.
//
// tosca-resolver loads TOSCA service template files, resolves their type
// hierarchies against the normative type set, validates property
// assignments, and binds every node template requirement. Diagnostics
// from all files are printed; the exit code is non-zero when any file
// carries errors.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"tosca-resolver/diagnostic"
	"tosca-resolver/document"
	"tosca-resolver/graph"
	"tosca-resolver/registry"
	"tosca-resolver/tosca"
)

func main() {
	var (
		showGraph = flag.BoolP("graph", "g", false, "print the bound topology edges")
		quiet     = flag.BoolP("quiet", "q", false, "suppress everything but errors")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <service-template.yaml>...\n\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false

	for _, path := range flag.Args() {
		if !run(path, *showGraph, *quiet) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// run processes one template file and reports whether it is valid. Each
// file gets a fresh registry: custom types never leak between files.
func run(path string, showGraph, quiet bool) bool {
	doc, err := document.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}

	st, diags := tosca.ParseServiceTemplate(doc)

	var topo *graph.Topology

	if st != nil {
		built, buildDiags, err := graph.BuildTemplate(st, registry.New(registry.Builtin()))
		if err != nil {
			printDiagnostics(path, diags, quiet)
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)

			return false
		}

		diags.Merge(*buildDiags)
		topo = built
	}

	printDiagnostics(path, diags, quiet)

	if !diags.IsValid() {
		return false
	}

	if !quiet {
		fmt.Printf("%s: ok (%d node templates, %d bindings)\n", path, len(topo.Nodes), len(topo.Edges))
	}

	if showGraph {
		for _, e := range topo.Edges {
			fmt.Printf("  %s.%s -> %s (%s via %s)\n",
				e.Source, e.Requirement, e.Target, e.CapabilityName, e.Relationship)
		}
	}

	return true
}

func printDiagnostics(path string, diags *diagnostic.Diagnostics, quiet bool) {
	for _, d := range diags.Errors {
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", path, d)
	}

	if quiet {
		return
	}

	for _, d := range diags.Warnings {
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", path, d)
	}

	for _, d := range diags.Infos {
		fmt.Printf("%s: %s\n", path, d)
	}
}
