package di

import (
	"fmt"

	"github.com/aristath/folio/internal/modules/cash_flows"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories on top of portfolio.db
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.PortfolioDB == nil {
		return fmt.Errorf("portfolio database must be initialized first")
	}

	conn := container.PortfolioDB.Conn()
	container.PositionRepo = portfolio.NewPositionRepository(conn, log)
	container.PriceRepo = prices.NewRepository(conn, log)
	container.CashLedger = cash_flows.NewRepository(conn, log)

	return nil
}
