package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/amount"
	"nova-swap/pkg/store"
)

var (
	listingsSeller string
	listingsLister string

	addGroupID     string
	addName        string
	addDescription string
	addPrice       string
	addPriceType   string
	addSeller      string
	addCID         string
	addLister      string
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Browse marketplace listings",
	Long: `Browse marketplace listings from the configured store.

Examples:
  nova-swap listings
  nova-swap listings --lister your.near
  nova-swap listings add --group g1 --name "dataset" --price 2.5 --seller seller.near
  nova-swap listings purchases your.near`,
	Run: runListings,
}

var listingsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a listing",
	Run:   runListingsAdd,
}

var purchasesCmd = &cobra.Command{
	Use:   "purchases <buyer>",
	Short: "Show a buyer's purchases",
	Args:  cobra.ExactArgs(1),
	Run:   runPurchases,
}

func init() {
	rootCmd.AddCommand(listingsCmd)
	listingsCmd.AddCommand(listingsAddCmd)
	listingsCmd.AddCommand(purchasesCmd)

	listingsCmd.Flags().StringVar(&listingsSeller, "seller", "", "Filter by seller account")
	listingsCmd.Flags().StringVar(&listingsLister, "lister", "", "Filter by lister account (your listings)")

	listingsAddCmd.Flags().StringVar(&addGroupID, "group", "", "Group id (REQUIRED)")
	listingsAddCmd.Flags().StringVar(&addName, "name", "", "Listing name (REQUIRED)")
	listingsAddCmd.Flags().StringVar(&addDescription, "description", "", "Listing description")
	listingsAddCmd.Flags().StringVar(&addPrice, "price", "", "Price in the origin asset, e.g. 2.5 (REQUIRED)")
	listingsAddCmd.Flags().StringVar(&addPriceType, "price-type", string(store.PriceOneTime), "one-time or subscription")
	listingsAddCmd.Flags().StringVar(&addSeller, "seller", "", "Seller account (REQUIRED)")
	listingsAddCmd.Flags().StringVar(&addCID, "cid", "", "Content CID")
	listingsAddCmd.Flags().StringVar(&addLister, "lister", "", "Lister account (defaults to seller)")
	_ = listingsAddCmd.MarkFlagRequired("group")
	_ = listingsAddCmd.MarkFlagRequired("name")
	_ = listingsAddCmd.MarkFlagRequired("price")
	_ = listingsAddCmd.MarkFlagRequired("seller")
}

func runListings(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	st, err := newStore(cmd, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	listings, err := st.Listings(cmd.Context(), store.Filter{
		Seller:          listingsSeller,
		ListerAccountID: listingsLister,
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(listings, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(listings) == 0 {
		fmt.Println("\nNo listings found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                         MARKETPLACE LISTINGS")
	fmt.Println(strings.Repeat("=", 80))

	for _, l := range listings {
		fmt.Printf("\n  %s  %s\n", color.YellowString(l.Name), color.HiBlackString(l.GroupID))
		fmt.Printf("    Price:   %s %s (%s)\n",
			amount.FromBaseUnits(l.Price, cfg.OriginDecimals, 6), cfg.OriginChain, l.PriceType)
		fmt.Printf("    Seller:  %s\n", l.Seller)
		fmt.Printf("    Created: %s\n", l.CreatedAt.Format("2006-01-02 15:04:05"))
		if l.Description != "" {
			fmt.Printf("    %s\n", l.Description)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("\nTotal: %d listings\n\n", len(listings))
}

func runListingsAdd(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Prices are stored in base units like every other monetary value.
	price, err := amount.ToBaseUnits(addPrice, cfg.OriginDecimals)
	if err != nil {
		printError(fmt.Errorf("invalid price %q: %w", addPrice, err))
		os.Exit(1)
	}

	priceType := store.PriceType(addPriceType)
	if priceType != store.PriceOneTime && priceType != store.PriceSubscription {
		printError(fmt.Errorf("invalid price type %q", addPriceType))
		os.Exit(1)
	}

	lister := addLister
	if lister == "" {
		lister = addSeller
	}

	st, err := newStore(cmd, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	err = st.AppendListing(cmd.Context(), store.Listing{
		GroupID:         addGroupID,
		Name:            addName,
		Description:     addDescription,
		Price:           price,
		PriceType:       priceType,
		Seller:          addSeller,
		CreatedAt:       time.Now().UTC(),
		CID:             addCID,
		ListerAccountID: lister,
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fmt.Printf("\nListing %s published.\n\n", color.CyanString(addGroupID))
}

func runPurchases(cmd *cobra.Command, args []string) {
	buyer := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	st, err := newStore(cmd, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	purchases, err := st.Purchases(cmd.Context(), buyer)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(purchases, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(purchases) == 0 {
		fmt.Printf("\nNo purchases found for %s.\n", buyer)
		return
	}

	fmt.Printf("\nPurchases for %s:\n\n", color.CyanString(buyer))
	for _, p := range purchases {
		line := fmt.Sprintf("  %s  %s", p.CreatedAt.Format("2006-01-02 15:04"), color.YellowString(p.GroupID))
		if name := listingName(cmd, st, p.GroupID); name != "" {
			line += "  " + name
		}
		if p.TxHash != "" {
			line += "  " + color.HiBlackString(p.TxHash)
		}
		fmt.Println(line)
	}
	fmt.Println()
}

// listingName joins the purchase with its listing, tolerating listings
// that no longer exist.
func listingName(cmd *cobra.Command, st store.Store, groupID string) string {
	l, err := st.ListingByGroupID(cmd.Context(), groupID)
	if err != nil {
		return ""
	}
	return l.Name
}
