// Package main implements the siteclient CLI, which drives the marketing site
// view state and forms against a running API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"flipper-backend/pkg/siteclient"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL of the API server
	serverURL string
	// token is an admin bearer token for write endpoints
	token string
	// timeout bounds each request
	timeout time.Duration
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "siteclient",
	Short: "Browse and submit to the Flipper marketing site API",
	Long: `siteclient renders the public sections and admin tables of the marketing
site and submits its forms against the REST API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("SITE_API_URL", "http://localhost:5000"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ADMIN_TOKEN"), "admin bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", siteclient.DefaultTimeout, "request timeout")

	rootCmd.AddCommand(healthCmd, loadCmd, adminCmd, loginCmd)
	rootCmd.AddCommand(addProjectCmd(), addClientCmd(), contactCmd(), subscribeCmd())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newSite() *siteclient.Site {
	api := siteclient.NewAPI(serverURL, siteclient.WithTimeout(timeout), siteclient.WithToken(token))
	return siteclient.NewSite(api, siteclient.NewNotifier(siteclient.DefaultNotificationDuration))
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		api := siteclient.NewAPI(serverURL, siteclient.WithTimeout(timeout))
		h, err := api.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (store: %s) at %s\n", h.Status, h.Store, h.Timestamp)
		return nil
	},
}

// loadCmd renders the public page
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load every collection and print the public sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		site := newSite()
		loadErr := site.Load(cmd.Context())
		printSections(cmd.OutOrStdout(), site.PublicSections())
		return loadErr
	},
}

// adminCmd renders the admin tables
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Load every collection and print the admin tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		site := newSite()
		loadErr := site.Load(cmd.Context())
		site.OpenAdmin()
		printTables(cmd.OutOrStdout(), site.AdminTables())
		return loadErr
	},
}

// loginCmd exchanges the admin password for a token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as admin and print a bearer token",
	Long: `Log in as admin and print a bearer token.

Examples:
  ADMIN_PASSWORD=secret siteclient login
  export ADMIN_TOKEN=$(siteclient login --password secret)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		api := siteclient.NewAPI(serverURL, siteclient.WithTimeout(timeout))
		res, err := api.Login(cmd.Context(), password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Token)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "admin password (defaults to $ADMIN_PASSWORD)")
}

func addProjectCmd() *cobra.Command {
	var form siteclient.ProjectForm
	cmd := &cobra.Command{
		Use:   "add-project",
		Short: "Add a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := newSite()
			site.Forms.Project = form
			return submit(cmd, site, site.AddProject)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "project name")
	cmd.Flags().StringVar(&form.Description, "description", "", "project description")
	cmd.Flags().StringVar(&form.Image, "image", "", "image URL")
	return cmd
}

func addClientCmd() *cobra.Command {
	var form siteclient.ClientForm
	cmd := &cobra.Command{
		Use:   "add-client",
		Short: "Add a client testimonial",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := newSite()
			site.Forms.Client = form
			return submit(cmd, site, site.AddClient)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "client name")
	cmd.Flags().StringVar(&form.Designation, "designation", "",
		"one of: "+strings.Join(siteclient.Designations, ", "))
	cmd.Flags().StringVar(&form.Description, "description", "", "testimonial")
	cmd.Flags().StringVar(&form.Image, "image", "", "image URL")
	return cmd
}

func contactCmd() *cobra.Command {
	var form siteclient.ContactForm
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Submit the contact form",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := newSite()
			site.Forms.Contact = form
			return submit(cmd, site, site.SubmitContact)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "your phone")
	cmd.Flags().StringVar(&form.City, "city", "", "your city")
	return cmd
}

func subscribeCmd() *cobra.Command {
	var form siteclient.NewsletterForm
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe an email to the newsletter",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := newSite()
			site.Forms.Newsletter = form
			return submit(cmd, site, site.Subscribe)
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	return cmd
}

// submit runs fn and prints the resulting notification
func submit(cmd *cobra.Command, site *siteclient.Site, fn func(context.Context) error) error {
	err := fn(cmd.Context())
	if note, ok := site.Notifier().Current(); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", note.Kind, note.Text)
	}
	if errors.Is(err, siteclient.ErrRefreshFailed) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return err
}

func printSections(w io.Writer, sections []siteclient.Section) {
	for _, s := range sections {
		fmt.Fprintf(w, "== %s ==\n", s.Title)
		switch {
		case s.Form:
			fmt.Fprintln(w, "(form)")
		case s.Placeholder != "":
			fmt.Fprintln(w, s.Placeholder)
		default:
			for _, c := range s.Cards {
				if c.Subtitle != "" {
					fmt.Fprintf(w, "- %s (%s): %s\n", c.Title, c.Subtitle, c.Body)
				} else {
					fmt.Fprintf(w, "- %s: %s\n", c.Title, c.Body)
				}
			}
		}
		fmt.Fprintln(w)
	}
}

func printTables(w io.Writer, tables []siteclient.Table) {
	for _, t := range tables {
		fmt.Fprintf(w, "%s (%d)\n", t.Title, len(t.Rows))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}
}
