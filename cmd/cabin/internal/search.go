package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for packages on GitHub",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchClient = &http.Client{
	Timeout: 60 * time.Second,
}

type searchResult struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
	} `json:"items"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := url.Values{}
	query.Set("q", args[0]+" language:c++")
	query.Set("per_page", "10")
	endpoint := "https://api.github.com/search/repositories?" + query.Encode()

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := searchClient.Do(req)
	if err != nil {
		return fmt.Errorf("search `%s`: %w", args[0], err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search `%s`: unexpected status: %s", args[0], resp.Status)
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	if len(result.Items) == 0 {
		fmt.Printf("no packages found for `%s`\n", args[0])
		return nil
	}

	for _, item := range result.Items {
		desc := item.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Printf("%-40s ★%-6d %s\n", item.FullName, item.Stars, desc)
	}
	return nil
}
