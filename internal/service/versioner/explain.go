package versioner

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oshokin/mod-version/internal/domain/version"
)

// Explain renders how the version was assembled.
func Explain(w io.Writer, result version.Result) {
	c := result.Components

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Component", "Value"})

	t.AppendRow(table.Row{"MC version", c.MCVersion})

	if result.Degraded() {
		t.AppendRow(table.Row{"Status", "degraded: " + result.Reason.Error()})
	} else {
		minor := strconv.Itoa(c.Minor)
		if c.MinorFrozen {
			minor += " (frozen)"
		}

		t.AppendRows([]table.Row{
			{"Mod.API", c.ModAndAPI},
			{"Commits since tag", c.CommitsSinceTag},
			{"Minor", minor},
			{"Patch", c.Patch},
			{"Status", "ok"},
		})
	}

	t.AppendRow(table.Row{"Suffix", c.Suffix})
	t.AppendRow(table.Row{"Branch suffix", c.BranchSuffix})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Version", result.Version})

	t.Render()
}
