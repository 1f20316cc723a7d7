package app

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"
)

// ShowState prints the persisted alert dedup record.
func (a *App) ShowState() error {
	rec := a.newStateCache().Load()
	if len(rec.Targets) == 0 {
		fmt.Fprintln(os.Stdout, "no alert state recorded")
		return nil
	}

	ids := make([]string, 0, len(rec.Targets))
	for id := range rec.Targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Target\tLast Alert JD\tLast Alert (UTC)")

	for _, id := range ids {
		state := rec.Targets[id]
		jd := "-"
		if state.LastAlertJD != nil {
			jd = state.LastAlertJD.StringFixed(5)
		}
		at := "-"
		if state.LastAlertAt != nil {
			at = state.LastAlertAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", id, jd, at)
	}

	writer.Flush()
	return nil
}
