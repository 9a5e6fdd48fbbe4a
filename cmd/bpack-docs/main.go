// Command bpack-docs writes the bpack reference pages for packaging:
// man pages or markdown, one file per command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/bpack/cmd/bpack"
	"github.com/arthur-debert/bpack/internal/version"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <man|markdown> <dir>\n", os.Args[0])
		os.Exit(1)
	}
	if err := generate(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s pages: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func generate(kind, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	root := bpack.NewRootCmd()
	root.InitDefaultHelpCmd()
	hideHelp(root)

	switch kind {
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "BPACK",
			Section: "1",
			Source:  "bpack " + version.Version,
			Manual:  "bpack manual",
		}, dir)
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	default:
		return fmt.Errorf("unknown page kind %q (want man or markdown)", kind)
	}
}

// hideHelp keeps the topic-aware help command out of the generated pages
func hideHelp(root *cobra.Command) {
	for _, c := range root.Commands() {
		if c.Name() == "help" {
			c.Hidden = true
		}
	}
}
