package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"tailor_shop/custom/policy"
	"tailor_shop/custom/util"
	"tailor_shop/model"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "Administration commands for the tailor shop service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config/config.yaml", "path to the service config")

	rootCmd.AddCommand(migrateCmd(), tokenCmd(), rulesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() *util.ServerConfig {
	serverConfig := util.ServerConfig{}
	return serverConfig.GetConf(configFile)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the shop tables and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := util.OpenDB(loadConfig())
			if err != nil {
				return err
			}
			if err := model.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration applied")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a caller token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--sub is required")
			}
			secret := loadConfig().JwtSecret
			if secret == "" {
				return fmt.Errorf("jwt_secret is not configured")
			}
			token, err := policy.IssueToken(secret, policy.Caller{ID: subject, Role: role}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "caller identity, the customer id for customers")
	cmd.Flags().StringVar(&role, "role", "", `caller role, "admin" for staff`)
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the access rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tOPERATION\tCLASSES\tRULE")
			for _, r := range policy.Default.Rules() {
				classes := make([]string, 0, len(r.Classes))
				for _, c := range r.Classes {
					classes = append(classes, c.String())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Table, r.Operation, strings.Join(classes, ","), r.Name)
			}
			return tw.Flush()
		},
	}
}
