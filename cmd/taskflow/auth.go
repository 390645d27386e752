package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskflow/internal/reconcile"
	"taskflow/pkg/client"
	"taskflow/pkg/session"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func loginCmd(open opener) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			if password == "" {
				password, err = readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
			}

			cred, err := a.reconciler.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(client.UserMessage(err))
			}
			printSignedIn(cmd.OutOrStdout(), email, cred)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func oauthCmd(open opener) *cobra.Command {
	var provider, id, email, name string

	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Sign in with an identity confirmed by an external provider",
		Long: `Reconciles an external identity (Google, Facebook or GitHub) with a
TaskFlow account: signs in, registers the account on first use, and stores
the resulting session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := reconcile.ParseProvider(provider)
			if err != nil {
				return err
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ext := reconcile.ExternalIdentity{ProviderUserID: id, Email: email, DisplayName: name}
			cred, err := a.reconciler.Reconcile(cmd.Context(), p, ext)
			if err != nil {
				return err
			}
			if !cred.Established {
				return fmt.Errorf("could not sign in with %s, try again later", p)
			}
			printSignedIn(cmd.OutOrStdout(), reconcile.Derive(p, ext).Email, cred)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Identity provider: google, facebook or github")
	cmd.Flags().StringVar(&id, "id", "", "Provider user id")
	cmd.Flags().StringVar(&email, "email", "", "Email reported by the provider")
	cmd.Flags().StringVar(&name, "name", "", "Display name reported by the provider")
	cmd.MarkFlagRequired("provider")
	cmd.MarkFlagRequired("id")
	return cmd
}

func logoutCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if a.store.Token(ctx) != "" {
				// 服务端吊销失败不影响本地清理
				if resp := a.client.Post(ctx, "/logout"); !resp.OK {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", client.UserMessage(resp.Err))
				}
			}
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func whoamiCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			resp, err := a.client.Request(ctx, http.MethodGet, "/me")
			if err != nil {
				return errors.New(client.UserMessage(err))
			}

			var me struct {
				ID          string `json:"id"`
				Username    string `json:"username"`
				Email       string `json:"email"`
				DisplayName string `json:"display_name"`
			}
			if err := resp.Decode(&me); err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Field", "Value"})
			table.SetBorder(false)
			table.SetColumnSeparator("|")
			table.Append([]string{"ID", me.ID})
			table.Append([]string{"Username", me.Username})
			table.Append([]string{"Email", me.Email})
			table.Append([]string{"Name", me.DisplayName})
			table.Append([]string{"Session", sessionSummary(ctx, a.store)})
			table.Render()
			return nil
		},
	}
}

func printSignedIn(w io.Writer, who string, cred *session.Credential) {
	ok := color.New(color.FgGreen, color.Bold)
	ok.Fprint(w, "Signed in")
	fmt.Fprintf(w, " as %s", who)
	if cred.Token == "" {
		fmt.Fprint(w, " (cookie session)")
	}
	fmt.Fprintln(w)
}

func sessionSummary(ctx context.Context, store *session.Store) string {
	cred, err := store.Credential(ctx)
	if err != nil || !cred.Established {
		return "none"
	}
	if cred.Token == "" {
		return "cookie"
	}
	if exp, ok := session.TokenExpiry(cred.Token); ok {
		return "token, expires " + exp.Local().Format("2006-01-02 15:04")
	}
	return "token"
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
