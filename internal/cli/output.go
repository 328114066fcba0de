package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
)

// print writes v in the selected output format. table renders the table
// mode; when nil, table mode falls back to indented JSON.
func (a *app) print(v any, table func(w io.Writer)) error {
	switch a.output {
	case OutputJSON:
		return writeJSON(a.out, v)
	case OutputYAML:
		return writeYAML(a.out, v)
	}
	if table == nil {
		return writeJSON(a.out, v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// message prints a confirmation line in table mode and v otherwise, so
// scripts still get the refreshed data after a mutation.
func (a *app) message(v any, format string, args ...any) error {
	if a.output == OutputTable {
		_, err := fmt.Fprintf(a.out, format+"\n", args...)
		return err
	}
	return a.print(v, nil)
}

func writeJSON(w io.Writer, v any) error {
	text, err := console.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// writeYAML goes through JSON first so keys match the backend field names
// instead of the Go ones.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

func row(w io.Writer, cols ...any) {
	s := make([]string, len(cols))
	for i, c := range cols {
		s[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(s, "\t"))
}

// when renders epoch milliseconds as a datetime plus a relative time.
func when(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	t := timeutil.FromMillis(ms)
	return fmt.Sprintf("%s (%s)", t.Local().Format(timeutil.DatetimeLayout), humanize.Time(t))
}

func datetime(t time.Time) string {
	return t.Local().Format(timeutil.DatetimeLayout)
}

func pairs(m map[string]string) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + m[k]
	}
	return strings.Join(out, ",")
}

// truncate shortens free text for table cells.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
