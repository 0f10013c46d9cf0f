package cmd

import (
	"context"
	"fmt"
	"time"

	coreconfig "github.com/AzielCF/az-digest/core/config"
	"github.com/spf13/cobra"
)

var checkFeedsCmd = &cobra.Command{
	Use:   "check-feeds",
	Short: "Fetch every configured feed and report its health",
	Run:   checkFeeds,
}

func init() {
	rootCmd.AddCommand(checkFeedsCmd)
}

func checkFeeds(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	urls := append([]string{}, coreconfig.Global.Feeds.RSS...)
	urls = append(urls, coreconfig.Global.Feeds.Youtube...)

	if len(urls) == 0 {
		fmt.Println("No feeds configured. Set RSS_FEEDS / YOUTUBE_FEEDS.")
		return
	}

	failures := 0
	for _, url := range urls {
		items, err := feedFetcher.Fetch(ctx, url)
		if err != nil {
			failures++
			fmt.Printf("FAIL  %s\n      %v\n", url, err)
			continue
		}
		fmt.Printf("OK    %s (%d items)\n", url, len(items))
		for i, item := range items {
			if i >= 2 {
				break
			}
			fmt.Printf("      - %s\n", item.Title)
		}
	}

	fmt.Printf("\n%d feeds checked, %d failing\n", len(urls), failures)
	StopApp()
}
