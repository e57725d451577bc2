package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/shibukawa/deepget"
	"github.com/shibukawa/deepget/accessor"
)

// writeValue renders a found value in the requested format. The table
// format prints the whole trace instead.
func writeValue(w io.Writer, format string, res accessor.Result) error {
	switch format {
	case deepget.FormatYAML:
		data, err := yaml.Marshal(res.Value)
		if err != nil {
			return fmt.Errorf("failed to encode value as YAML: %w", err)
		}

		_, err = w.Write(data)

		return err
	case deepget.FormatJSON:
		data, err := yaml.MarshalWithOptions(res.Value, yaml.JSON())
		if err != nil {
			return fmt.Errorf("failed to encode value as JSON: %w", err)
		}

		_, err = w.Write(data)

		return err
	case deepget.FormatTable:
		writeTrace(w, res.Chain)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, format)
	}
}

// writeTrace prints one row per walked step.
func writeTrace(w io.Writer, chain []accessor.ChainPart) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Step", "Value", "Fault"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	for i, part := range chain {
		value := "<absent>"
		if !part.Absent() {
			value = summarize(part.Value)
		}

		fault := ""
		if part.Fault != nil {
			fault = part.Fault.Error()
		}

		table.Append([]string{fmt.Sprint(i), part.Name, value, fault})
	}

	table.Render()
}

// summarize renders a step value on one line.
func summarize(v any) string {
	switch val := v.(type) {
	case map[string]any:
		return fmt.Sprintf("{%d keys}", len(val))
	case []any:
		return fmt.Sprintf("[%d items]", len(val))
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprint(val)
	}
}

// dumpValue writes a detailed dump of v.
func dumpValue(w io.Writer, v any) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(w, v)
}
