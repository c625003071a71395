// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"encoding/json"
	"errors"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/korrel8r/metricq/internal/pkg/must"
	"sigs.k8s.io/yaml"
)

type printer interface {
	Print(any) // Print a single item.
}

type jsonPrinter struct{ *json.Encoder }

func (p jsonPrinter) Print(v any) { must.Must(p.Encode(v)) }

type yamlPrinter struct{ io.Writer }

func (p yamlPrinter) Print(v any) { must.Must1(p.Write(must.Must1(yaml.Marshal(v)))) }

type templatePrinter struct {
	io.Writer
	*template.Template
}

func (p templatePrinter) Print(v any) { must.Must(p.Execute(p.Writer, v)) }

func newPrinter(w io.Writer) printer {
	switch outputFlag.String() {
	case "json":
		return jsonPrinter{Encoder: json.NewEncoder(w)}

	case "json-pretty":
		p := jsonPrinter{Encoder: json.NewEncoder(w)}
		p.SetIndent("", "  ")
		return p

	case "template":
		if *templateFlag == "" {
			must.Must(errors.New("--template is required for --output=template"))
		}
		t := must.Must1(template.New("output").Funcs(sprig.TxtFuncMap()).Parse(*templateFlag))
		return templatePrinter{Writer: w, Template: t}

	default:
		return yamlPrinter{Writer: w}
	}
}
