package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	activitiesCmd := &cobra.Command{Use: "activities", Short: "Activity feed operations"}

	var sources, member, from, to string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List activities across sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if sources != "" {
				q.Set("sources", sources)
			}
			if member != "" {
				q.Set("member", member)
			}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}
			q.Set("limit", fmt.Sprint(limit))
			if offset > 0 {
				q.Set("offset", fmt.Sprint(offset))
			}
			data, err := doGet(fmt.Sprintf("%s/api/activities?%s", apiFlag, q.Encode()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&sources, "sources", "s", "", "Comma-separated sources (default all)")
	listCmd.Flags().StringVarP(&member, "member", "m", "", "Filter by member display name")
	listCmd.Flags().StringVarP(&from, "from", "f", "", "Start date (RFC3339 or YYYY-MM-DD)")
	listCmd.Flags().StringVarP(&to, "to", "t", "", "End date (RFC3339 or YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Max activities to return")
	listCmd.Flags().IntVarP(&offset, "offset", "o", 0, "Pagination offset")
	activitiesCmd.AddCommand(listCmd)

	memberCmd := &cobra.Command{
		Use:   "member MEMBER_ID",
		Short: "List activities for one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			data, err := doGet(fmt.Sprintf("%s/api/members/%s/activities?%s", apiFlag, args[0], q.Encode()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	memberCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Max activities to return")
	activitiesCmd.AddCommand(memberCmd)

	rootCmd.AddCommand(activitiesCmd)

	// resolve subcommand
	resolveCmd := &cobra.Command{
		Use:   "resolve SOURCE RAW_ID",
		Short: "Resolve a raw source identifier to a member name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("source", args[0])
			q.Set("id", args[1])
			data, err := doGet(fmt.Sprintf("%s/api/resolve?%s", apiFlag, q.Encode()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(resolveCmd)
}
