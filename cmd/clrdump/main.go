package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MaximumOverflow/clrmeta/clrmodel"
	"github.com/MaximumOverflow/clrmeta/resolver"
)

var (
	searchPaths []string
	refs        bool
	types       bool
)

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Printf("JSON marshal error: %v", err)
		return ""
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

// assemblyView is the JSON-friendly projection of a clrmodel.Assembly
// printed by dump, mirroring only the fields a caller is likely to want on
// a terminal rather than the full interned type graph.
type assemblyView struct {
	Name  string   `json:"name"`
	Refs  []string `json:"refs,omitempty"`
	Types []string `json:"types,omitempty"`
}

func viewOf(asm *clrmodel.Assembly) assemblyView {
	v := assemblyView{Name: asm.Name.String()}
	if refs {
		for _, r := range asm.Refs {
			v.Refs = append(v.Refs, r.String())
		}
	}
	if types {
		for _, t := range asm.Types {
			v.Types = append(v.Types, t.String())
		}
	}
	return v
}

func dumpFile(ctx *resolver.Context, path string) {
	log.Printf("loading %s", path)
	asm, err := ctx.LoadAssembly(path)
	if err != nil {
		log.Printf("error loading %s: %v", path, err)
		return
	}
	fmt.Println(prettyPrint(viewOf(asm)))
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func runDump(cmd *cobra.Command, args []string) {
	ctx := resolver.NewContext(resolver.Options{SearchPaths: searchPaths})

	for _, path := range args {
		if !isDirectory(path) {
			dumpFile(ctx, path)
			continue
		}
		filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				dumpFile(ctx, p)
			}
			return nil
		})
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clrdump",
		Short: "An ECMA-335 CLI metadata dumper",
		Long:  "Reads managed assemblies and prints their structured metadata as JSON",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("clrdump 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [files or directories...]",
		Short: "Load and print one or more managed assemblies",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDump,
	}
	dumpCmd.Flags().StringSliceVarP(&searchPaths, "search-path", "p", nil, "assembly reference search path (repeatable)")
	dumpCmd.Flags().BoolVarP(&refs, "refs", "", true, "include resolved/unresolved references")
	dumpCmd.Flags().BoolVarP(&types, "types", "", true, "include defined types")

	rootCmd.AddCommand(versionCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
