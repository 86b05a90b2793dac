package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/procuro/rfqmatch/config"
	"github.com/procuro/rfqmatch/core/match"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/score"
	"github.com/procuro/rfqmatch/infra/logger"
	"github.com/procuro/rfqmatch/infra/store"
)

var (
	matchRFQID string
	seedPath   string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run a one-off matching pass and print the ranked results",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchRFQID, "rfq", "", "RFQ id to match")
	matchCmd.Flags().StringVar(&seedPath, "seed", "", "JSON fixture with RFQs, suppliers and profiles")
	_ = matchCmd.MarkFlagRequired("rfq")
	rootCmd.AddCommand(matchCmd)
}

// seedFile is the JSON fixture layout accepted by --seed.
type seedFile struct {
	RFQs      []model.RFQ                 `json:"rfqs"`
	Suppliers map[string][]model.User     `json:"suppliers"`
	Profiles  []model.SupplierProfile     `json:"profiles"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st := store.NewMemoryStore()
	if seedPath != "" {
		if err := loadSeed(st, seedPath); err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
	} else {
		seedDemo(st)
	}

	lookup := score.StaticLookup{}
	for categoryID, specialties := range cfg.Specialties {
		set := make(map[string]bool, len(specialties))
		for _, s := range specialties {
			set[s] = true
		}
		lookup[categoryID] = set
	}

	logg := logger.New("match-command")
	gen, err := match.NewGenerator(st, score.NewEngine(lookup), cfg.Matcher, nil, nil, logg)
	if err != nil {
		return fmt.Errorf("match generator: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := gen.GenerateMatches(ctx, matchRFQID); err != nil {
		return fmt.Errorf("matching run: %w", err)
	}

	rows, err := st.GetMatchResultsByRFQ(ctx, matchRFQID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no matches produced")
		return nil
	}
	for i, r := range rows {
		fmt.Printf("%2d. supplier=%s score=%d\n", i+1, r.SupplierID, r.Score)
	}
	return nil
}

func loadSeed(st *store.MemoryStore, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return err
	}
	for _, rfq := range seed.RFQs {
		if err := rfq.Validate(); err != nil {
			return fmt.Errorf("rfq %s: %w", rfq.ID, err)
		}
		st.PutRFQ(rfq)
	}
	for categoryID, users := range seed.Suppliers {
		for _, u := range users {
			st.PutSupplier(categoryID, u)
		}
	}
	for _, p := range seed.Profiles {
		st.PutProfile(p)
	}
	return nil
}

// seedDemo loads a small synthetic scenario so the command works without a
// fixture file.
func seedDemo(st *store.MemoryStore) {
	st.PutRFQ(model.RFQ{ID: "demo-rfq", BuyerID: "demo-buyer", CategoryID: "demo-cat", Status: model.RFQActive, Quantity: 100})
	st.PutSupplier("demo-cat", model.User{ID: "demo-strong", Name: "Strong Supplies"})
	st.PutSupplier("demo-cat", model.User{ID: "demo-new", Name: "Newcomer Co"})
	st.PutProfile(model.SupplierProfile{
		UserID: "demo-strong", RiskLevel: model.RiskLow,
		AvgRating: 4.6, TotalOrders: 80, OnTimeRate: 0.95,
	})
}
