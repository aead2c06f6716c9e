package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addFilterFlags registers the trade selection flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("account", "", "only trades of this account")
	cmd.Flags().String("symbol", "", "only trades of this symbol")
	cmd.Flags().String("from", "", "first trade date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last trade date (YYYY-MM-DD)")
}

// filterFromFlags builds a store filter from the selection flags.
func filterFromFlags(cmd *cobra.Command) (store.TradeFilter, error) {
	var filter store.TradeFilter

	filter.Account, _ = cmd.Flags().GetString("account")
	symbol, _ := cmd.Flags().GetString("symbol")
	filter.Symbol = strings.ToUpper(strings.TrimSpace(symbol))

	from, _ := cmd.Flags().GetString("from")
	if from != "" {
		t, err := models.ParseDay(from)
		if err != nil {
			return filter, errors.NewValidationError("from", from, "must be a date in YYYY-MM-DD format")
		}
		filter.From = t
	}

	to, _ := cmd.Flags().GetString("to")
	if to != "" {
		t, err := models.ParseDay(to)
		if err != nil {
			return filter, errors.NewValidationError("to", to, "must be a date in YYYY-MM-DD format")
		}
		filter.To = t
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, errors.NewValidationError("to", to, "must not be before --from")
	}
	return filter, nil
}

// loadTrades opens the store and fetches trades for the command's filter.
func (a *App) loadTrades(cmd *cobra.Command) ([]models.Trade, store.TradeFilter, error) {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return nil, filter, err
	}

	s, err := a.store()
	if err != nil {
		return nil, filter, err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	trades, err := s.GetTrades(ctx, filter)
	if err != nil {
		return nil, filter, errors.Wrap(err, "loading trades")
	}
	logger := logging.WithAccount(a.Logger, filter.Account)
	logger.Debug().
		Str("symbol", filter.Symbol).
		Int("trades", len(trades)).
		Msg("Trades loaded")
	return trades, filter, nil
}
