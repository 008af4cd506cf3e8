package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankist/internal/adapter/http/dto"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
	retries uint64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bankist-cli",
		Short:         "Bankist CLI tool",
		Long:          `A command line interface for interacting with the Bankist API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the Bankist API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("BANKIST_TOKEN"), "Session token (defaults to $BANKIST_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().Uint64Var(&opts.retries, "retries", 2, "Retries for safe requests")

	rootCmd.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		sessionCmd(opts),
		movementsCmd(opts),
		summaryCmd(opts),
		transferCmd(opts),
		loanCmd(opts),
		closeCmd(opts),
		ledgerCmd(opts),
	)

	return rootCmd
}

func (o *options) client() *client {
	return newClient(o.baseURL, o.token, o.timeout, o.retries)
}

func parsePin(s string) (int, error) {
	pin, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("pin must be a number: %q", s)
	}
	return pin, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount must be a number: %q", s)
	}
	return amount, nil
}

func loginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME PIN",
		Short: "Start a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[1])
			if err != nil {
				return err
			}

			var resp dto.SessionResponse
			req := dto.LoginRequest{Username: args[0], Pin: pin}
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/session", req, &resp, ""); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome back, %s\n", resp.FirstName)
			fmt.Fprintf(out, "You will be logged out in %s\n", resp.Remaining)
			if resp.Token != "" {
				fmt.Fprintf(out, "export BANKIST_TOKEN=%s\n", resp.Token)
			}
			return nil
		},
	}
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().do(cmd.Context(), http.MethodDelete, "/api/v1/session", nil, nil, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func sessionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the session state and remaining time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SessionResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/session", nil, &resp, ""); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resp.Username == "" {
				fmt.Fprintln(out, "Logged out")
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s (%s)\n", resp.Owner, resp.Username)
			fmt.Fprintf(out, "You will be logged out in %s\n", resp.Remaining)
			return nil
		},
	}
}

func movementsCmd(opts *options) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "movements",
		Short: "List the movements of the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/account/movements"
			if sorted {
				path += "?sort=asc"
			}

			var resp dto.MovementsResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp, ""); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			// Newest first, the way the statement is read.
			for i := len(resp.Movements) - 1; i >= 0; i-- {
				m := resp.Movements[i]
				fmt.Fprintf(w, "%d %s\t%s\t%s\n", m.Position, m.Kind, formatMovementDate(m.Date, m.DaysAgo), m.Amount.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&sorted, "sort", false, "Sort ascending by amount")
	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, income, expense and interest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SummaryResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/account/summary", nil, &resp, ""); err != nil {
				return err
			}

			money := func(d decimal.Decimal) string { return formatMoney(d, resp.Currency, resp.Locale) }
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Balance\t%s\n", money(resp.Balance))
			fmt.Fprintf(w, "In\t%s\n", money(resp.TotalIncome))
			fmt.Fprintf(w, "Out\t%s\n", money(resp.TotalExpense))
			fmt.Fprintf(w, "Interest\t%s\n", money(resp.TotalInterest))
			return w.Flush()
		},
	}
}

func transferCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer TO AMOUNT",
		Short: "Send money to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var resp dto.TransferResponse
			req := dto.TransferRequest{To: args[0], Amount: amount}
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/transfers", req, &resp, ulid.Make().String()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s from %s to %s (%s)\n", resp.Amount, resp.From, resp.To, resp.ID)
			return nil
		},
	}
}

func loanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "loan AMOUNT",
		Short: "Request a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			var resp dto.LoanResponse
			req := dto.LoanRequest{Amount: amount}
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/loans", req, &resp, ulid.Make().String()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loan of %s accepted, credited at %s unless the session ends first\n",
				resp.Amount, resp.ReviewAt.Local().Format(time.Kitchen))
			return nil
		},
	}
}

func closeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "close USERNAME PIN",
		Short: "Close the logged-in account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[1])
			if err != nil {
				return err
			}

			req := dto.CloseAccountRequest{Username: args[0], Pin: pin}
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/account/close", req, nil, ulid.Make().String()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %s closed\n", args[0])
			return nil
		},
	}
}

func ledgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &resp, "")
			if err != nil {
				return err
			}
			return printConsistency(cmd, &resp)
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	return ledgerCmd
}

func printConsistency(cmd *cobra.Command, resp *dto.ConsistencyResponse) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tCURRENCY\tMOVEMENTS\tBALANCE\tOK")
	for _, a := range resp.Accounts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%v\n", a.Username, a.Currency, a.MovementCount, a.Balance.StringFixed(2), a.Consistent)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Total balance: %s\n", resp.TotalBalance.StringFixed(2))
	if !resp.Consistent {
		return fmt.Errorf("consistency check FAILED")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
	return nil
}
