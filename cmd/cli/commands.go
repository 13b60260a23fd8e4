package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	difficulty string
	language   string
	live       bool
)

func init() {
	queueCmd.Flags().StringVar(&difficulty, "difficulty", "medium", "Challenge difficulty to queue for")
	submitCmd.Flags().StringVar(&language, "language", "python", "Language of the submitted code")
	matchesCmd.Flags().BoolVar(&live, "live", false, "List only live matches")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(frozenCmd)
	rootCmd.AddCommand(clearFrozenCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue [playerID]",
	Short: "Join the matchmaking queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/queue/join?playerID="+url.QueryEscape(args[0])+"&difficulty="+url.QueryEscape(difficulty), "")
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [matchID] [playerID] [code]",
	Short: "Submit code for an active match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"match_id":%q,"player_id":%q,"code":%q,"language":%q}`, args[0], args[1], args[2], language)
		return performPostRequest("/submit", body)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done [matchID] [playerID]",
	Short: "Signal that a player has finished",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/done?matchID="+url.QueryEscape(args[0])+"&playerID="+url.QueryEscape(args[1]), "")
	},
}

var matchCmd = &cobra.Command{
	Use:   "match [matchID]",
	Short: "Show one match, live or concluded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/match?id=" + url.QueryEscape(args[0]))
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/matches"
		if live {
			endpoint += "?live=true"
		}
		return performGetRequest(endpoint)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the arena store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the rating leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var frozenCmd = &cobra.Command{
	Use:   "frozen",
	Short: "List rating changes frozen for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/review/frozen")
	},
}

var clearFrozenCmd = &cobra.Command{
	Use:   "clear-frozen [changeID]",
	Short: "Re-admit a frozen rating change after review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/review/clear?changeID="+url.QueryEscape(args[0]), "")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
