package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// rangeFlags select the time window of the alerts, events and dashboard
// views.
type rangeFlags struct {
	rng       string
	datetime  string
	direction string
}

func (f *rangeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.rng, "range", "4h", "window length: "+strings.Join(filter.Presets, ", ")+" or any duration like 45m")
	fs.StringVar(&f.datetime, "datetime", "", "window anchor: now, epoch millis, RFC3339 or '"+timeutil.DatetimeLayout+"' (default now)")
	fs.StringVar(&f.direction, "direction", string(filter.Before), "whether the window lies Before or After the anchor")
}

func (f *rangeFlags) build(now time.Time) (filter.Range, error) {
	rng, err := filter.ParseRange(f.rng, now)
	if err != nil {
		return rng, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}
	if f.datetime != "" {
		at, err := timeutil.ParseDatetime(f.datetime, now, time.Local)
		if err != nil {
			return rng, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
		}
		rng.Datetime = at
	}
	switch strings.ToLower(f.direction) {
	case "", "before":
		rng.Direction = filter.Before
	case "after":
		rng.Direction = filter.After
	default:
		return rng, fmt.Errorf("%w: invalid direction %q: use Before or After", client.ErrInvalidInput, f.direction)
	}
	return rng, nil
}

// pagerFlags are the server side paging of alerts and events.
type pagerFlags struct {
	page    int
	perPage int
	sort    string
	order   string
}

func (f *pagerFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.page, "page", 0, "page number, 0 based")
	fs.IntVar(&f.perPage, "per-page", 20, "items per page")
	fs.StringVar(&f.sort, "sort", "", "field to sort by, e.g. ctime or severity")
	fs.StringVar(&f.order, "order", "", "asc or desc")
}

func (f *pagerFlags) pager() types.Pager {
	return types.Pager{Page: f.page, PerPage: f.perPage, Sort: f.sort, Order: f.order}
}

// lifecycleFlags carry the operator input of ack, resolve and note.
type lifecycleFlags struct {
	user  string
	notes string
}

func (f *lifecycleFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.user, "user", os.Getenv("USER"), "operator recorded on the alert")
	fs.StringVar(&f.notes, "notes", "", "notes recorded with the change (required)")
}

func (f *lifecycleFlags) lifecycle() console.Lifecycle {
	return console.Lifecycle{User: f.user, Notes: f.notes}
}

// readDocument returns the JSON document of a create, update or import
// command: the file named by path, or stdin for "-".
func readDocument(path string, stdin io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: --file is required, use - to read stdin", client.ErrInvalidInput)
	}
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}
