// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// Command catalog-adoc writes an asciidoc reference for the function catalog.
// Catalog files or URLs on the command line are merged with the built-in catalog.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/korrel8r/metricq/pkg/catalog"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [CATALOG...]:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	level := flag.Int("level", 2, "asciidoc section level for categories")
	flag.Parse()

	c := catalog.Builtin()
	for _, arg := range flag.Args() {
		more, err := catalog.Load(arg)
		check(err)
		c = c.Merge(more)
	}
	check(c.Validate())
	check(write(os.Stdout, c, *level))
}

// write one section per category, with a table of functions.
func write(w io.Writer, c *catalog.Catalog, level int) error {
	byCategory := map[string][]*catalog.FuncDef{}
	var categories []string
	for _, d := range c.Defs() {
		cat := d.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], d)
	}
	title := strings.Repeat("=", level+1)
	for _, cat := range categories {
		if _, err := fmt.Fprintf(w, "\n%v %v\n\n[cols=\"1,2,1\"]\n|===\n|Function |Parameters |Defaults\n\n", title, cat); err != nil {
			return err
		}
		for _, d := range byCategory[cat] {
			var params []string
			for _, p := range d.Params {
				s := p.Name
				if p.Type != "" {
					s += ": " + p.Type
				}
				if p.Multiple {
					s += "..."
				}
				if p.Optional {
					s = "[" + s + "]"
				}
				params = append(params, s)
			}
			if _, err := fmt.Fprintf(w, "|`%v` |%v |%v\n", d.Name, strings.Join(params, ", "), strings.Join(d.DefaultParams, ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "|==="); err != nil {
			return err
		}
	}
	return nil
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
