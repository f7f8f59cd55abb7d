package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/dapp-registry-backend/api"
	"github.com/ruteri/dapp-registry-backend/api/clients"
	"github.com/ruteri/dapp-registry-backend/cmd/flags"
	"github.com/ruteri/dapp-registry-backend/interfaces"
)

func main() {
	app := &cli.App{
		Name:  "registry-cli",
		Usage: "Interact with a dapp registry server",
		Flags: []cli.Flag{
			flags.ServerURLFlag,
			flags.PrivateKeyFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "count",
				Usage:  "Print the registration index length",
				Action: runCount,
			},
			{
				Name:      "at",
				Usage:     "Print the entry at an index position",
				ArgsUsage: "<index>",
				Action:    runAt,
			},
			{
				Name:      "get",
				Usage:     "Print the entry for a dapp ID",
				ArgsUsage: "<id>",
				Action:    runGet,
			},
			{
				Name:      "meta",
				Usage:     "Print one metadata value",
				ArgsUsage: "<id> <key>",
				Action:    runMeta,
			},
			{
				Name:   "fee",
				Usage:  "Print the current registration fee",
				Action: runFee,
			},
			{
				Name:   "administrator",
				Usage:  "Print the current administrator",
				Action: runAdministrator,
			},
			{
				Name:      "verify-domain",
				Usage:     "Check a dapp's domain-ownership TXT record",
				ArgsUsage: "<id>",
				Action:    runVerifyDomain,
			},
			{
				Name:      "id",
				Usage:     "Derive the dapp ID for a label",
				ArgsUsage: "<label>",
				Action:    runDeriveID,
			},
			{
				Name:      "register",
				Usage:     "Register a dapp ID, paying the given amount",
				ArgsUsage: "<id> <paid>",
				Action:    runRegister,
			},
			{
				Name:      "unregister",
				Usage:     "Remove a dapp registration",
				ArgsUsage: "<id>",
				Action:    runUnregister,
			},
			{
				Name:      "set-meta",
				Usage:     "Write one metadata value",
				ArgsUsage: "<id> <key> <value>",
				Action:    runSetMeta,
			},
			{
				Name:      "set-owner",
				Usage:     "Transfer a dapp to a new owner",
				ArgsUsage: "<id> <new-owner>",
				Action:    runSetOwner,
			},
			{
				Name:      "set-fee",
				Usage:     "Update the registration fee",
				ArgsUsage: "<fee>",
				Action:    runSetFee,
			},
			{
				Name:      "transfer-admin",
				Usage:     "Hand the registry over to a new administrator",
				ArgsUsage: "<new-administrator>",
				Action:    runTransferAdmin,
			},
			{
				Name:      "drain",
				Usage:     "Drain the collected balance to a destination",
				ArgsUsage: "<destination>",
				Action:    runDrain,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) (*clients.RegistryClient, error) {
	serverURL := cCtx.String(flags.ServerURLFlag.Name)

	keyHex := cCtx.String(flags.PrivateKeyFlag.Name)
	if keyHex == "" {
		return clients.NewRegistryClient(serverURL, nil), nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return clients.NewRegistryClient(serverURL, key), nil
}

func argDappID(cCtx *cli.Context, position int) (interfaces.DappID, error) {
	return interfaces.NewDappIDFromHex(cCtx.Args().Get(position))
}

func argIdentity(cCtx *cli.Context, position int) (interfaces.Identity, error) {
	return interfaces.NewIdentityFromHex(cCtx.Args().Get(position))
}

func runCount(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	count, err := client.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}

func runAt(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	index, err := strconv.ParseUint(cCtx.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}

	entry, err := client.At(context.Background(), index)
	if err != nil {
		return err
	}
	fmt.Printf("id: %s\nowner: %s\n", entry.ID, entry.Owner)
	return nil
}

func runGet(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	entry, err := client.Get(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Printf("id: %s\nowner: %s\n", entry.ID, entry.Owner)
	return nil
}

func runMeta(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	value, err := client.Meta(context.Background(), id, cCtx.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(string(value))
	return nil
}

func runFee(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	fee, err := client.Fee(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(fee.String())
	return nil
}

func runAdministrator(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	admin, err := client.Administrator(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(admin.String())
	return nil
}

func runVerifyDomain(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	result, err := client.VerifyDomain(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Printf("domain: %s\nowner: %s\nverified: %t\n", result.Domain, result.Owner, result.Verified)
	return nil
}

func runDeriveID(cCtx *cli.Context) error {
	label := cCtx.Args().First()
	if label == "" {
		return fmt.Errorf("label is required")
	}
	fmt.Println(interfaces.ComputeDappID(label).String())
	return nil
}

func runRegister(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	paid, err := api.ParseAmount(cCtx.Args().Get(1))
	if err != nil {
		return err
	}

	entry, err := client.Register(context.Background(), id, paid)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s to %s\n", entry.ID, entry.Owner)
	return nil
}

func runUnregister(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	if err := client.Unregister(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("unregistered %s\n", id)
	return nil
}

func runSetMeta(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	key := cCtx.Args().Get(1)
	value := cCtx.Args().Get(2)
	if err := client.SetMeta(context.Background(), id, key, []byte(value)); err != nil {
		return err
	}
	fmt.Printf("set %s[%s]\n", id, key)
	return nil
}

func runSetOwner(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	id, err := argDappID(cCtx, 0)
	if err != nil {
		return err
	}

	newOwner, err := argIdentity(cCtx, 1)
	if err != nil {
		return err
	}

	if err := client.SetDappOwner(context.Background(), id, newOwner); err != nil {
		return err
	}
	fmt.Printf("transferred %s to %s\n", id, newOwner)
	return nil
}

func runSetFee(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	fee, err := api.ParseAmount(cCtx.Args().First())
	if err != nil {
		return err
	}

	if err := client.SetFee(context.Background(), fee); err != nil {
		return err
	}
	fmt.Printf("fee set to %s\n", fee)
	return nil
}

func runTransferAdmin(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	newAdmin, err := argIdentity(cCtx, 0)
	if err != nil {
		return err
	}

	if err := client.TransferAdministrator(context.Background(), newAdmin); err != nil {
		return err
	}
	fmt.Printf("administrator transferred to %s\n", newAdmin)
	return nil
}

func runDrain(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	destination, err := argIdentity(cCtx, 0)
	if err != nil {
		return err
	}

	amount, err := client.Drain(context.Background(), destination)
	if err != nil {
		return err
	}
	fmt.Printf("drained %s to %s\n", amount, destination)
	return nil
}
