package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		active := app.Gateway.ActiveNetwork().Name
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, styleTitle.Render("Networks"))
		for _, def := range app.Networks.GetAllNetworkDefinitions() {
			marker := " "
			if def.Name == active {
				marker = styleSuccess.Render("*")
			}
			fmt.Fprintf(w, " %s %-10s %s\n", marker, def.Name, styleDim.Render(def.RPCURL))
		}
		return nil
	},
}

var networkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show health of the active network",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		st := app.Gateway.NetworkStatus(cmd.Context())
		connected := styleWarning.Render("unreachable")
		if st.Connected {
			connected = styleSuccess.Render("connected")
		}
		printKeyValues(cmd.OutOrStdout(), "Network",
			"name", st.Network,
			"status", connected,
			"latest ledger", strconv.FormatUint(uint64(st.LatestLedger), 10),
			"rpc", st.RPCURL,
			"passphrase", styleDim.Render(st.NetworkPassphrase),
			"others", joinNames(app.Networks.GetAllNetworkDefinitions()))
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account <public-key>",
	Short: "Show native balance and sequence of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		acc, err := app.Gateway.GetAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printKeyValues(cmd.OutOrStdout(), "Account",
			"public key", styleAddress.Render(acc.PublicKey),
			"balance", styleValue.Render(acc.NativeBalance.String()+" XLM"),
			"sequence", strconv.FormatInt(acc.Sequence, 10))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkStatusCmd)
}
