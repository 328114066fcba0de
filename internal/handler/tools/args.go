package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
)

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// requiredArg returns a validation error naming an example call when key is
// missing or empty.
func requiredArg(args map[string]any, key, example string) (string, error) {
	s := stringArg(args, key)
	if s == "" {
		return "", fmt.Errorf("%w: Parameter validation failed: %q must be a non-empty string. Example: %s", client.ErrInvalidInput, key, example)
	}
	return s, nil
}

func intArg(args map[string]any, key string, defaultVal int) (int, error) {
	str := stringArg(args, key)
	if str == "" {
		return defaultVal, nil
	}
	num, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %q value %q: must be a number", client.ErrInvalidInput, key, str)
	}
	if num <= 0 {
		return defaultVal, nil
	}
	return num, nil
}

// boolArg accepts real booleans and "true"/"false" strings.
func boolArg(args map[string]any, key string, defaultVal bool) (bool, error) {
	switch v := args[key].(type) {
	case bool:
		return v, nil
	case string:
		if v == "" {
			return defaultVal, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: invalid %q value %q: use 'true' or 'false'", client.ErrInvalidInput, key, v)
		}
		return b, nil
	}
	return defaultVal, nil
}

// rangeArg builds the query window from "range" (a preset or a duration
// like "45m") and an optional "datetime" anchor. With an anchor, "direction"
// may look "After" it instead of before.
func rangeArg(args map[string]any, now time.Time) (filter.Range, error) {
	rng, err := filter.ParseRange(stringArg(args, "range"), now)
	if err != nil {
		return rng, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}
	if anchor := stringArg(args, "datetime"); anchor != "" {
		at, err := timeutil.ParseDatetime(anchor, now, time.Local)
		if err != nil {
			return rng, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
		}
		rng.Datetime = at
	}
	switch dir := stringArg(args, "direction"); strings.ToLower(dir) {
	case "":
	case "before":
		rng.Direction = filter.Before
	case "after":
		rng.Direction = filter.After
	default:
		return rng, fmt.Errorf("%w: invalid direction %q: use Before or After", client.ErrInvalidInput, dir)
	}
	return rng, nil
}

func alertFilterArg(args map[string]any) filter.AlertFilter {
	f := filter.DefaultAlertFilter()
	if s := stringArg(args, "severity"); s != "" {
		f.Severity = s
	}
	if s := stringArg(args, "status"); s != "" {
		f.Status = s
	}
	f.TagQuery = stringArg(args, "tagQuery")
	return f
}

func lifecycleArg(args map[string]any) console.Lifecycle {
	return console.Lifecycle{User: stringArg(args, "user"), Notes: stringArg(args, "notes")}
}
