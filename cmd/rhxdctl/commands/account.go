package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhxd/rhxd/internal/cli/output"
	"github.com/rhxd/rhxd/internal/cli/prompt"
	"github.com/rhxd/rhxd/pkg/accounts"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage named accounts",
}

var (
	addNickname  string
	addAccess    string
	addPassword  string
	grantAccess  string
	revokeAccess string
	listOutput   string
)

// accessPresets offers a quick starting point for interactive account
// creation, in place of spelling out every individual flag.
var accessPresets = []prompt.SelectOption{
	{Label: "guest (read-chat, send-chat)", Value: "read-chat,send-chat"},
	{Label: "member (guest + file download, news read)", Value: "read-chat,send-chat,download-file,news-read-article"},
	{Label: "admin (everything)", Value: allAccessNamesCSV()},
	{Label: "none", Value: ""},
}

var addCmd = &cobra.Command{
	Use:   "add <login>",
	Short: "Create a named account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var passwdCmd = &cobra.Command{
	Use:   "passwd <login>",
	Short: "Reset an account's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runPasswd,
}

var grantCmd = &cobra.Command{
	Use:   "grant <login>",
	Short: "Add access privileges to an account",
	Long:  "Add access privileges to an account. --access takes a comma-separated list of these names: " + allAccessNamesCSV(),
	Args:  cobra.ExactArgs(1),
	RunE:  runGrant,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <login>",
	Short: "Remove access privileges from an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevoke,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <login>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runList,
}

func init() {
	addCmd.Flags().StringVar(&addNickname, "nickname", "", "default nickname for this account")
	addCmd.Flags().StringVar(&addAccess, "access", "", "comma-separated access flags, e.g. send-chat,read-chat")
	addCmd.Flags().StringVar(&addPassword, "password", "", "password (prompts if not provided)")

	grantCmd.Flags().StringVar(&grantAccess, "access", "", "comma-separated access flags to add")
	revokeCmd.Flags().StringVar(&revokeAccess, "access", "", "comma-separated access flags to remove")
	listCmd.Flags().StringVar(&listOutput, "output", "table", "output format: table, json, or yaml")

	accountCmd.AddCommand(addCmd, passwdCmd, grantCmd, revokeCmd, deleteCmd, listCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	login := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	accessCSV := addAccess
	if accessCSV == "" && addPassword == "" {
		accessCSV, err = prompt.Select("Access preset", accessPresets)
		if err != nil {
			return fmt.Errorf("access prompt: %w", err)
		}
	}

	access, err := parseAccessList(accessCSV)
	if err != nil {
		return err
	}

	password := addPassword
	if password == "" {
		password, err = prompt.NewPassword()
		if err != nil {
			return fmt.Errorf("password prompt: %w", err)
		}
	}

	nickname := addNickname
	if nickname == "" {
		if addPassword == "" {
			nickname, err = prompt.Input("Nickname", login)
			if err != nil {
				return fmt.Errorf("nickname prompt: %w", err)
			}
		} else {
			nickname = login
		}
	}

	ctx := context.Background()
	if err := store.Create(ctx, login, password, nickname, access); err != nil {
		return fmt.Errorf("create account %q: %w", login, err)
	}

	fmt.Printf("Account %q created.\n", login)
	return nil
}

func runPasswd(cmd *cobra.Command, args []string) error {
	login := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	password, err := prompt.NewPassword()
	if err != nil {
		return fmt.Errorf("password prompt: %w", err)
	}

	if err := store.SetPassword(context.Background(), login, password); err != nil {
		return fmt.Errorf("set password for %q: %w", login, err)
	}

	fmt.Printf("Password updated for %q.\n", login)
	return nil
}

func runGrant(cmd *cobra.Command, args []string) error {
	return adjustAccess(args[0], grantAccess, true)
}

func runRevoke(cmd *cobra.Command, args []string) error {
	return adjustAccess(args[0], revokeAccess, false)
}

func adjustAccess(login, csv string, grant bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	delta, err := parseAccessList(csv)
	if err != nil {
		return err
	}

	ctx := context.Background()
	existing, err := accountByLogin(ctx, store, login)
	if err != nil {
		return err
	}

	var access = existing.Access
	if grant {
		access |= delta
	} else {
		access &^= delta
	}

	if err := store.SetAccess(ctx, login, access); err != nil {
		return fmt.Errorf("update access for %q: %w", login, err)
	}

	fmt.Printf("Access for %q is now: %s\n", login, formatAccessList(access))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	login := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	confirmed, err := prompt.Confirm(fmt.Sprintf("Delete account %q", login), false)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := store.Delete(context.Background(), login); err != nil {
		return fmt.Errorf("delete account %q: %w", login, err)
	}

	fmt.Printf("Account %q deleted.\n", login)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	accts, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		printer := output.NewPrinter(os.Stdout, format, false)
		return printer.Print(accts)
	}

	table := output.NewTableData("LOGIN", "NICKNAME", "ACCESS")
	for _, a := range accts {
		table.AddRow(a.Login, a.Nickname, formatAccessList(a.Access))
	}
	return output.PrintTable(os.Stdout, table)
}

func accountByLogin(ctx context.Context, store accounts.Store, login string) (*accounts.Account, error) {
	accts, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range accts {
		if a.Login == login {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("account %q not found", login)
}
