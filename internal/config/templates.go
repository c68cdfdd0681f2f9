package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Tradeverse configuration

[journal]
# Path to the journal database. Defaults to ~/.config/tradeverse/journal.db.
# db_path = "/path/to/journal.db"

# Fees applied to new trades when none are given.
default_fees = 0.0

[metrics]
# Recommendation thresholds. Unset values use the built-in defaults.
# min_win_rate = 0.40
# min_profit_factor = 1.0
# max_loss_to_win_ratio = 2.0
# max_drawdown_fraction = 0.5
# min_strategy_win_rate = 0.50
# min_weekday_win_rate = 0.40
# min_bucket_trades = 5

[ui]
color_enabled = true
`

const credentialsTemplate = `# Tradeverse credentials
# Keep this file private (chmod 600).

[zerodha]
# api_key = "your_api_key"
# api_secret = "your_api_secret"
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(filepath.Join(configDir, "config.toml"), configTemplate, 0644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(filepath.Join(configDir, "credentials.toml"), credentialsTemplate, 0600)
}

func writeTemplate(path, content string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing template %s: %w", path, err)
	}
	return nil
}
