package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/runtime"
)

type result struct {
	Obj2        []string           `yaml:"obj2"`
	Obj3        []string           `yaml:"obj3"`
	Diagnostics []diagnosticRecord `yaml:"diagnostics"`
}

type diagnosticRecord struct {
	Severity string `yaml:"severity"`
	Code     string `yaml:"code"`
	Module   string `yaml:"module,omitempty"`
	Message  string `yaml:"message"`
}

func newResult(state runtime.State, diags []kernel.Diagnostic) result {
	res := result{
		Obj2:        make([]string, 0, len(state.Obj2)),
		Obj3:        make([]string, 0, len(state.Obj3)),
		Diagnostics: make([]diagnosticRecord, 0, len(diags)),
	}
	for _, obj := range state.Obj2 {
		res.Obj2 = append(res.Obj2, describe(obj))
	}
	for _, obj := range state.Obj3 {
		res.Obj3 = append(res.Obj3, describe(obj))
	}
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, diagnosticRecord{
			Severity: string(d.Severity),
			Code:     string(d.Code),
			Module:   d.Module,
			Message:  d.Message,
		})
	}
	return res
}

func describe(obj any) string {
	if s, ok := obj.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", obj)
}

// writeText prints one object per line on out and the diagnostics on errOut.
func writeText(out, errOut io.Writer, res result) {
	for _, obj := range res.Obj2 {
		fmt.Fprintf(out, "2d: %s\n", obj)
	}
	for _, obj := range res.Obj3 {
		fmt.Fprintf(out, "3d: %s\n", obj)
	}
	for _, d := range res.Diagnostics {
		if d.Module == "" {
			fmt.Fprintf(errOut, "%s: %s\n", d.Severity, d.Message)
			continue
		}
		fmt.Fprintf(errOut, "%s: %s: %s\n", d.Severity, d.Module, d.Message)
	}
}

func writeYAML(w io.Writer, res result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}
