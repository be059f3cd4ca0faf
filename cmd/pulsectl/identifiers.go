package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	identifiersCmd := &cobra.Command{Use: "identifiers", Short: "Member identifier operations"}

	// add
	var source, idType, value string
	addCmd := &cobra.Command{
		Use:   "add MEMBER_ID",
		Short: "Attach a source identifier to a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || value == "" {
				return fmt.Errorf("--source and --value required")
			}
			payload := map[string]interface{}{"source": source, "type": idType, "value": value}
			data, err := doPostJSON(fmt.Sprintf("%s/api/members/%s/identifiers", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&source, "source", "s", "", "Source (github, slack, notion, drive)")
	addCmd.Flags().StringVarP(&idType, "type", "t", "username", "Identifier type (username, email, user_id)")
	addCmd.Flags().StringVarP(&value, "value", "v", "", "Identifier value (required)")
	_ = addCmd.MarkFlagRequired("source")
	_ = addCmd.MarkFlagRequired("value")
	identifiersCmd.AddCommand(addCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list MEMBER_ID",
		Short: "List a member's identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/members/%s/identifiers", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	identifiersCmd.AddCommand(listCmd)

	// update
	var upSource, upType, upValue string
	updateCmd := &cobra.Command{
		Use:   "update MEMBER_ID",
		Short: "Replace a member's identifier for a source and type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if upSource == "" || upValue == "" {
				return fmt.Errorf("--source and --value required")
			}
			payload := map[string]interface{}{"source": upSource, "type": upType, "value": upValue}
			data, err := doJSON(http.MethodPut, fmt.Sprintf("%s/api/members/%s/identifiers", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&upSource, "source", "s", "", "Source (github, slack, notion, drive)")
	updateCmd.Flags().StringVarP(&upType, "type", "t", "username", "Identifier type")
	updateCmd.Flags().StringVarP(&upValue, "value", "v", "", "New identifier value (required)")
	_ = updateCmd.MarkFlagRequired("source")
	_ = updateCmd.MarkFlagRequired("value")
	identifiersCmd.AddCommand(updateCmd)

	// remove
	removeCmd := &cobra.Command{
		Use:   "remove MEMBER_ID IDENTIFIER_ID",
		Short: "Remove an identifier from a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete(fmt.Sprintf("%s/api/members/%s/identifiers/%s", apiFlag, args[0], args[1]))
		},
	}
	identifiersCmd.AddCommand(removeCmd)

	rootCmd.AddCommand(identifiersCmd)
}
