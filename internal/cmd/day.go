package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// DayCmd shows the merged view of a day
type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, defaults to today)"`
	JSON bool   `help:"Emit the full visualization as JSON"`
}

// Run executes the day command
func (d *DayCmd) Run(cli *CLI) error {
	date := d.Date
	if date == "" {
		date = time.Now().Format(domain.DateFormat)
	}
	ctx := context.Background()

	if d.JSON {
		visualization, err := cli.Container.Service.DailyVisualization(ctx, date)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(visualization)
	}

	aggregate, err := cli.Container.Service.DailyAggregate(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d workblocks, %d minutes\n\n",
		date, aggregate.TotalWorkblocks, aggregate.TotalMinutes)

	if len(aggregate.Timeline) == 0 {
		fmt.Println("No intervals recorded")
		return nil
	}

	fmt.Println("Timeline:")
	for _, entry := range aggregate.Timeline {
		content := entry.Content
		if entry.Cancelled {
			content = "(cancelled)"
		} else if content == "" {
			content = "(pending)"
		}
		fmt.Printf("  %s  wb%-3d #%-2d  %s\n",
			entry.StartTime.Format("15:04"), entry.WorkblockID, entry.Number, content)
	}

	if len(aggregate.Activity) > 0 {
		fmt.Println("\nActivity:")
		for _, entry := range aggregate.Activity {
			fmt.Printf("  %4dm  %5.1f%%  %s\n",
				entry.TotalMinutes, entry.Percentage, entry.Content)
		}
	}

	return nil
}

// ArchiveCmd archives a day's workblocks
type ArchiveCmd struct {
	Date string `arg:"" optional:"" help:"Date to archive (YYYY-MM-DD, defaults to yesterday)"`
}

// Run executes the archive command
func (a *ArchiveCmd) Run(cli *CLI) error {
	date := a.Date
	if date == "" {
		date = time.Now().AddDate(0, 0, -1).Format(domain.DateFormat)
	}

	archive, err := cli.Container.Service.ArchiveDay(context.Background(), date)
	if err != nil {
		return err
	}

	fmt.Printf("Archived %s: %d workblocks, %d minutes\n",
		archive.Date, archive.TotalWorkblocks, archive.TotalMinutes)
	return nil
}

// ArchivesCmd lists daily archives
type ArchivesCmd struct {
	JSON bool `help:"Emit archives as JSON, including visualization data"`
}

// Run executes the archives command
func (a *ArchivesCmd) Run(cli *CLI) error {
	archives, err := cli.Container.Service.Archives(context.Background())
	if err != nil {
		return err
	}

	if a.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(archives)
	}

	if len(archives) == 0 {
		fmt.Println("No archives yet")
		return nil
	}

	for _, archive := range archives {
		fmt.Printf("%s  %2d workblocks  %4d minutes  (archived %s)\n",
			archive.Date, archive.TotalWorkblocks, archive.TotalMinutes,
			archive.ArchivedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
