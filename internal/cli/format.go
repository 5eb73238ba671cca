// Package cli holds output helpers shared by the command-line tools.
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fpang/story-viewer/internal/story"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Round(time.Second).Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// TotalDuration sums the timed length of pages.
func TotalDuration(pages []story.PageDescriptor) time.Duration {
	var total time.Duration
	for _, p := range pages {
		total += time.Duration(p.DurationSeconds * float64(time.Second))
	}
	return total
}

// WritePageTable prints one row per page followed by the total runtime.
func WritePageTable(w io.Writer, pages []story.PageDescriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tDURATION\tSOURCE")
	for _, p := range pages {
		dur := FormatDurationShort(time.Duration(p.DurationSeconds * float64(time.Second)))
		if p.MediaDriven() {
			dur += " (media)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Index, p.Kind, dur, pageSource(p))
	}
	fmt.Fprintf(tw, "\t\t%s\ttotal, %d pages\n", FormatDurationShort(TotalDuration(pages)), len(pages))
	return tw.Flush()
}

func pageSource(p story.PageDescriptor) string {
	switch {
	case p.EmbedURL != "":
		return p.EmbedURL
	case p.BackgroundURL != "":
		return p.BackgroundURL
	case p.Color != "":
		return p.Color
	}
	return "-"
}
