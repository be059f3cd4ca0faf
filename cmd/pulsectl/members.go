package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	membersCmd := &cobra.Command{Use: "members", Short: "Member operations"}

	// create
	var name, role string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			payload := map[string]interface{}{"name": name}
			if role != "" {
				payload["role"] = role
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/members", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Member display name (required)")
	createCmd.Flags().StringVarP(&role, "role", "r", "", "Member role")
	_ = createCmd.MarkFlagRequired("name")
	membersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get MEMBER_ID",
		Short: "Get member by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/members/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	membersCmd.AddCommand(getCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/members", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	membersCmd.AddCommand(listCmd)

	// rename
	var newName string
	renameCmd := &cobra.Command{
		Use:   "rename MEMBER_ID",
		Short: "Rename a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newName == "" {
				return fmt.Errorf("--name required")
			}
			data, err := doJSON(http.MethodPatch, fmt.Sprintf("%s/api/members/%s", apiFlag, args[0]), map[string]interface{}{"name": newName})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	renameCmd.Flags().StringVarP(&newName, "name", "n", "", "New display name (required)")
	_ = renameCmd.MarkFlagRequired("name")
	membersCmd.AddCommand(renameCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete MEMBER_ID",
		Short: "Delete a member and its identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete(fmt.Sprintf("%s/api/members/%s", apiFlag, args[0]))
		},
	}
	membersCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(membersCmd)
}
