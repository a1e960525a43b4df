package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/solshare/feed-ranker/internal/postindex"
)

var (
	apiFlag   string
	indexFlag string
	rootCmd   = &cobra.Command{
		Use:   "rankerctl",
		Short: "Operational CLI for the feed ranker service",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8000", "Feed ranker base URL")
	rootCmd.PersistentFlags().StringVarP(&indexFlag, "index", "i", "localhost:8081", "Post index host:port")

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap-index",
		Short: "Create the post index schema if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := postindex.Bootstrap(ctx, indexFlag); err != nil {
				return err
			}
			fmt.Println("post index ready")
			return nil
		},
	}
	rootCmd.AddCommand(bootstrapCmd)

	resetCmd := &cobra.Command{
		Use:   "reset-index",
		Short: "Drop and recreate the post index (destroys all indexed posts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := postindex.Reset(ctx, indexFlag); err != nil {
				return err
			}
			fmt.Println("post index reset")
			return nil
		},
	}
	resetCmd.Flags().Bool("yes", false, "Confirm destructive reset")
	rootCmd.AddCommand(resetCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print the service's action set and default weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")
			client := resty.New().SetBaseURL(apiFlag).SetTimeout(10 * time.Second)
			req := client.R()
			if key != "" {
				req.SetHeader("X-Internal-API-Key", key)
			}
			resp, err := req.Get("/api/pipeline/info")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
			}
			var pretty json.RawMessage = resp.Body()
			out, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	infoCmd.Flags().String("key", "", "Internal API key")
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
