package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[analytics]
# Trading days per year used to annualize Sharpe, Sortino and returns
annualization_factor = 252.0
# Annual risk-free rate as a fraction (0.065 = 6.5%); used only with initial_capital
risk_free_rate = 0.0
# Daily P&L threshold for the Omega ratio
omega_threshold = 0.0
# Starting capital; 0 measures returns against the equity peak
initial_capital = 0.0
# Kelly criterion display clamp in percent
kelly_clamp = 100.0
# Rows shown by the symbols and top commands
top_symbols = 10
top_trades = 5

[import]
# Drop rows whose gross P&L is exactly zero
skip_zero_pnl = true
# Account recorded for imports without a client id
default_account = ""
# Input format: "zerodha" (Console P&L export) or "generic"
format = "zerodha"
# Trades written per transaction
batch_size = 100

[display]
currency_symbol = "₹"
# en-IN uses lakh/crore grouping
locale = "en-IN"
decimals = 2
color_enabled = true
# Days shown by the calendar command
calendar_days = 90
chart_width = 60
chart_height = 15

[store]
# SQLite database path; empty uses journal.db in the config directory
path = ""

[logging]
# debug, info, warn, error
level = "info"
# Write rotated logs under the config directory
file = true
max_size_mb = 10
max_backups = 3
max_age_days = 28
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
