package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
	"github.com/spf13/cobra"
)

const (
	flagCode   = "code"
	flagABI    = "abi"
	flagParams = "params"
	flagScope  = "scope"
	flagLimit  = "limit"
	flagLower  = "lower"
	flagUpper  = "upper"
)

func readDeployment(codePath string, abiPath string) (types.Code, *types.Interface, error) {
	raw, err := os.ReadFile(codePath)
	if err != nil {
		return nil, nil, err
	}
	code, err := types.NewCode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", codePath, err)
	}
	abiJSON, err := os.ReadFile(abiPath)
	if err != nil {
		return nil, nil, err
	}
	iface, err := types.ParseInterface(abiJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", abiPath, err)
	}
	return code, iface, nil
}

func deployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "install contract code and interface on the configured account",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, iface, err := readDeployment(conf.GetString(flagCode), conf.GetString(flagABI))
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.deployer.Deploy(cmd.Context(), code, iface)
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"outcome":   result.Outcome,
				"tx":        result.TxID,
				"ramBought": result.Plan.RAMToBuy,
				"interface": result.Interface,
			}
			if result.PublishErr != nil {
				out["publishError"] = result.PublishErr.Error()
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), out)
		},
	}
	cmd.Flags().String(flagCode, "", "compiled wasm file")
	cmd.Flags().String(flagABI, "", "abi json file")
	cmd.MarkFlagRequired(flagCode)
	cmd.MarkFlagRequired(flagABI)
	return cmd
}

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "republish the interface of the contract already on the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			published, err := a.deployer.CheckDeployedInterface(cmd.Context())
			if err != nil {
				return err
			}
			if published == nil {
				logger.Info().Str("account", a.cfg.Account.Name).Msg("No contract deployed")
				return nil
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), published)
		},
	}
}

func grantCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-code",
		Short: "add eosio.code to the account active permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			granted, err := a.deployer.GrantCodePermission(cmd.Context())
			if errors.Is(err, types.ErrAlreadyGranted) {
				fmt.Fprintln(cmd.OutOrStdout(), "eosio.code permission already granted")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted: %v\n", granted)
			return nil
		},
	}
}

func transactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transact <action>",
		Short: "call an action of the deployed contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := json.RawMessage(conf.GetString(flagParams))
			if len(params) > 0 && !json.Valid(params) {
				return fmt.Errorf("--%s is not valid json", flagParams)
			}
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.deployer.Transact(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), map[string]interface{}{
				"tx":    receipt.TxID,
				"block": receipt.BlockNum,
			})
		},
	}
	cmd.Flags().String(flagParams, "{}", "action parameters as json")
	return cmd
}

func tableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table <name>",
		Short: "read rows of a table of the deployed contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.deployer.TableRows(cmd.Context(), session.TableQuery{
				Scope:      conf.GetString(flagScope),
				Table:      args[0],
				LowerBound: conf.GetString(flagLower),
				UpperBound: conf.GetString(flagUpper),
				Limit:      conf.GetUint32(flagLimit),
			})
			if err != nil {
				return err
			}
			var decoded interface{}
			if err := json.Unmarshal(rows, &decoded); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), decoded)
		},
	}
	cmd.Flags().String(flagScope, "", "table scope, defaults to the account")
	cmd.Flags().String(flagLower, "", "lower bound of the primary key")
	cmd.Flags().String(flagUpper, "", "upper bound of the primary key")
	cmd.Flags().Uint32(flagLimit, 10, "maximum rows")
	return cmd
}

func interfaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interface",
		Short: "print the stored published interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			account, exists, err := a.store.DeployedTo()
			if err != nil {
				return err
			}
			if !exists {
				account = a.cfg.Account.Name
			}
			published, exists, err := a.store.Get(account)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("no published interface for %s", account)
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), published)
		},
	}
}

func historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded deployment attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.journal.List(a.cfg.Account.Name, conf.GetInt(flagLimit))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), conf.GetString(flagFormat), records)
		},
	}
	cmd.Flags().Int(flagLimit, 20, "maximum records, 0 for all")
	return cmd
}
