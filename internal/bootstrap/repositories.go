package bootstrap

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashveil/progression-engine/internal/admission"
	"github.com/ashveil/progression-engine/internal/config"
	"github.com/ashveil/progression-engine/internal/curve"
	"github.com/ashveil/progression-engine/internal/database/postgres"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/repository"
)

// Stores holds the postgres-backed implementations behind the award path.
// This provides a centralized location for their initialization and makes
// dependency injection clearer.
type Stores struct {
	Ledger repository.Ledger
	Guard  admission.Guard
}

// InitializeStores creates the ledger repository and admission guard.
// Both share the database pool; the guard also carries the admission
// policy limits from config.
func InitializeStores(dbPool *pgxpool.Pool, catalog *curve.Catalog, resolver *milestone.Resolver, cfg *config.Config) *Stores {
	guardConfig := admission.Config{
		MaxAmount:   big.NewInt(cfg.MaxAwardAmount),
		Cooldown:    cfg.AwardCooldown,
		Window:      cfg.AwardWindow,
		WindowLimit: cfg.AwardWindowLimit,
	}

	return &Stores{
		Ledger: postgres.NewLedgerRepository(dbPool, catalog, resolver, guardConfig.MaxAmount),
		Guard:  admission.NewPostgresGuard(dbPool, guardConfig),
	}
}
