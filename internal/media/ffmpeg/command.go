package ffmpeg

import (
	"strconv"
	"strings"
)

// Command accumulates ffmpeg inputs, a filter graph, stream maps and output
// options, and renders them as an argument list.
type Command struct {
	inputs  [][]string
	filters []string
	maps    []string
	output  []string
}

// NewCommand returns an empty command.
func NewCommand() *Command {
	return &Command{}
}

// Input adds path as an input, preceded by any per-input options such as
// -stream_loop or -t, and returns its input index.
func (c *Command) Input(path string, opts ...string) int {
	entry := make([]string, 0, len(opts)+2)
	entry = append(entry, opts...)
	entry = append(entry, "-i", path)
	c.inputs = append(c.inputs, entry)
	return len(c.inputs) - 1
}

// Filter appends a filter chain, e.g. "[0:v]scale=1620:2880[v0]".
func (c *Command) Filter(chain string) {
	if chain = strings.TrimSpace(chain); chain != "" {
		c.filters = append(c.filters, chain)
	}
}

// Map selects an output stream by label ("[vout]") or specifier ("0:a:0").
func (c *Command) Map(stream string) {
	c.maps = append(c.maps, stream)
}

// Output appends output options (codecs, rate, duration).
func (c *Command) Output(opts ...string) {
	c.output = append(c.output, opts...)
}

// FilterGraph returns the joined filter_complex value.
func (c *Command) FilterGraph() string {
	return strings.Join(c.filters, ";")
}

// Args renders the full argument list writing to dest.
func (c *Command) Args(dest string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, input := range c.inputs {
		args = append(args, input...)
	}
	if len(c.filters) > 0 {
		args = append(args, "-filter_complex", c.FilterGraph())
	}
	for _, m := range c.maps {
		args = append(args, "-map", m)
	}
	args = append(args, c.output...)
	return append(args, dest)
}

// Seconds formats a duration in seconds for ffmpeg options.
func Seconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}

// Number formats a float without trailing zeros for filter arguments.
func Number(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// EscapeFilterValue escapes a value (typically a file path) for use as a
// filter option inside -filter_complex. Two levels apply: the option value
// and the filter graph description.
func EscapeFilterValue(value string) string {
	option := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`).Replace(value)
	return strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	).Replace(option)
}
