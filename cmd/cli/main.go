package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradesim-cli",
		Short: "TradeSim CLI tool",
		Long:  `A command line interface for interacting with the TradeSim API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TradeSim API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd(), tradeCmd(), portfolioCmd(), quoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var owner, currency, balance string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cash account",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/accounts", map[string]any{
				"owner":           owner,
				"currency":        currency,
				"initial_balance": balance,
			})
		},
	}
	createCmd.Flags().StringVar(&owner, "owner", "", "Account owner")
	createCmd.Flags().StringVar(&currency, "currency", "USD", "Account currency")
	createCmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	createCmd.MarkFlagRequired("owner")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0])
		},
	}

	activityCmd := &cobra.Command{
		Use:   "activity <id>",
		Short: "Show an account's balance, realized P/L and entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0] + "/activity")
		},
	}

	var amount string
	depositCmd := &cobra.Command{
		Use:   "deposit <id>",
		Short: "Deposit cash",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/accounts/"+args[0]+"/deposits", map[string]any{"amount": amount})
		},
	}
	depositCmd.Flags().StringVar(&amount, "amount", "", "Amount to deposit")
	depositCmd.MarkFlagRequired("amount")

	var withdrawAmount string
	withdrawCmd := &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw cash",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/accounts/"+args[0]+"/withdrawals", map[string]any{"amount": withdrawAmount})
		},
	}
	withdrawCmd.Flags().StringVar(&withdrawAmount, "amount", "", "Amount to withdraw")
	withdrawCmd.MarkFlagRequired("amount")

	cmd.AddCommand(createCmd, getCmd, activityCmd, depositCmd, withdrawCmd)
	return cmd
}

func tradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade operations",
	}

	addTrade := func(side string) *cobra.Command {
		var accountID, portfolioID, symbol, quantity, price string
		tradeCmd := &cobra.Command{
			Use:   side,
			Short: fmt.Sprintf("Execute a %s order", side),
			Run: func(cmd *cobra.Command, args []string) {
				body := map[string]any{
					"account_id":   accountID,
					"portfolio_id": portfolioID,
					"symbol":       symbol,
					"quantity":     quantity,
				}
				if price != "" {
					body["price"] = price
				}
				post("/api/v1/trades/"+side, body)
			},
		}
		tradeCmd.Flags().StringVar(&accountID, "account", "", "Account ID")
		tradeCmd.Flags().StringVar(&portfolioID, "portfolio", "", "Portfolio ID")
		tradeCmd.Flags().StringVar(&symbol, "symbol", "", "Symbol to trade")
		tradeCmd.Flags().StringVar(&quantity, "quantity", "", "Quantity to trade")
		tradeCmd.Flags().StringVar(&price, "price", "", "Limit price (empty for market)")
		tradeCmd.MarkFlagRequired("account")
		tradeCmd.MarkFlagRequired("portfolio")
		tradeCmd.MarkFlagRequired("symbol")
		tradeCmd.MarkFlagRequired("quantity")
		return tradeCmd
	}

	cmd.AddCommand(addTrade("buy"), addTrade("sell"))
	return cmd
}

func portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio operations",
	}

	var owner, accountID string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a portfolio",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/portfolios", map[string]any{
				"owner":      owner,
				"account_id": accountID,
			})
		},
	}
	createCmd.Flags().StringVar(&owner, "owner", "", "Portfolio owner")
	createCmd.Flags().StringVar(&accountID, "account", "", "Linked account ID")
	createCmd.MarkFlagRequired("owner")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a portfolio",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/portfolios/" + args[0])
		},
	}

	valuationCmd := &cobra.Command{
		Use:   "valuation <id>",
		Short: "Value a portfolio at market prices",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/portfolios/" + args[0] + "/valuation")
		},
	}

	breakdownCmd := &cobra.Command{
		Use:   "breakdown <id>",
		Short: "Show a per-holding valuation breakdown",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/portfolios/" + args[0] + "/breakdown")
		},
	}

	cmd.AddCommand(createCmd, getCmd, valuationCmd, breakdownCmd)
	return cmd
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Show the current price for a symbol",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/quotes/" + args[0])
		},
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func post(path string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}
