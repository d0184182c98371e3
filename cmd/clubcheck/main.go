// Command clubcheck prints the membership of an account in a club, the
// club's plan quotes, or buys a plan with the configured key.
//
//	clubcheck -config clubs.yaml -club builders.eth -account 0x...
//	clubcheck -config clubs.yaml -club builders.eth -quotes
//	clubcheck -config clubs.yaml -club builders.eth -buy quarterly
//
// CLUBS_PRIVATE_KEY, from the environment or a .env file in the working
// directory, overrides the key in the config file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/config"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/pricing"
	"github.com/clubs-network/clubs-sdk-go/pkg/sdk"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const privateKeyEnv = "CLUBS_PRIVATE_KEY"

func main() {
	var (
		configPath = flag.String("config", "clubs.yaml", "path to the YAML config")
		club       = flag.String("club", "", "club domain, e.g. builders.eth")
		account    = flag.String("account", "", "account to check; defaults to the signer")
		quotes     = flag.Bool("quotes", false, "print plan quotes instead of a membership")
		buy        = flag.String("buy", "", "purchase a plan: monthly, quarterly or yearly")
		asJSON     = flag.Bool("json", false, "print the membership status as JSON")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	if *club == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if key := os.Getenv(privateKeyEnv); key != "" {
		cfg.PrivateKey = key
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	clubs, err := sdk.NewSDK(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create SDK: %v", err)
	}
	defer clubs.Close()

	switch {
	case *quotes:
		printQuotes(ctx, clubs, *club)
	case *buy != "":
		purchase(ctx, clubs, *club, *buy)
	default:
		check(ctx, clubs, *club, *account, *asJSON)
	}
}

func check(ctx context.Context, clubs *sdk.Core, club, account string, asJSON bool) {
	addr := clubs.Address()
	if account != "" {
		if !common.IsHexAddress(account) {
			log.Fatalf("Invalid account address %q", account)
		}
		addr = common.HexToAddress(account)
	}
	if addr == (common.Address{}) {
		log.Fatalf("No account given and no private key configured")
	}

	status, err := clubs.CheckMembership(ctx, club, addr)
	if err != nil {
		log.Fatalf("Membership undetermined: %v", err)
	}
	if asJSON {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode status: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	fmt.Printf("%s in %s: %s\n", addr.Hex(), club, status)
}

func printQuotes(ctx context.Context, clubs *sdk.Core, club string) {
	list, err := clubs.QuotePlans(ctx, club)
	if err != nil {
		log.Fatalf("Failed to quote plans: %v", err)
	}
	conditions, err := clubs.GetMembershipConditions(ctx, club)
	if err != nil {
		log.Fatalf("Failed to read conditions: %v", err)
	}
	fmt.Printf("%s, billing period %s\n", club, pricing.HumanizeDuration(conditions.Duration))
	for _, q := range list {
		fmt.Println(q.Summary())
	}
}

func purchase(ctx context.Context, clubs *sdk.Core, club, planName string) {
	plan, err := model.ParsePlan(planName)
	if err != nil {
		log.Fatalln(err)
	}
	receipt, err := clubs.PurchaseMembership(ctx, club, plan)
	if err != nil {
		log.Fatalf("Purchase failed: %v", err)
	}
	fmt.Printf("purchased %s membership of %s in block %s\n", plan, club, receipt.BlockNumber)
	if url := clubs.Network().TxURL(receipt.TxHash); url != "" {
		fmt.Println(url)
	}
}
