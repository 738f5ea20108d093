// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/listing-finder/internal/archive"
	"github.com/pdiddy/listing-finder/internal/dedup"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or reset the persisted pipeline state",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived listings, best first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := archive.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		rows, err := store.List(context.Background(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tTIER\tPRICE\tTOWN\tADDRESS\tLAST SEEN")
		for _, r := range rows {
			fmt.Fprintf(w, "%.3f\t%s\t$%d\t%s\t%s\t%s\n",
				r.Listing.Score, r.Listing.Tier, r.Listing.Price,
				r.Listing.Town, r.Listing.Address,
				r.LastSeen.Format("2006-01-02"))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		seen, err := dedup.Open(cfg.Store.SeenPath)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d archived, %d seen IDs\n", len(rows), seen.Len())
		return nil
	},
}

var storeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the seen set so every listing is re-evaluated",
	Long: `Reset removes the seen-ID file. The next run treats every scraped
listing as new. The listing archive is left alone; use --archive to drop
that too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := dedup.Reset(cfg.Store.SeenPath); err != nil {
			return err
		}
		fmt.Println("seen set cleared")

		if dropArchive, _ := cmd.Flags().GetBool("archive"); dropArchive {
			if err := archive.Remove(cfg.Store); err != nil {
				return err
			}
			fmt.Println("listing archive removed")
		}
		return nil
	},
}

func init() {
	storeListCmd.Flags().Int("limit", 0, "maximum rows to print (0 = all)")
	storeResetCmd.Flags().Bool("archive", false, "also remove the listing archive database")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeResetCmd)
	rootCmd.AddCommand(storeCmd)
}
