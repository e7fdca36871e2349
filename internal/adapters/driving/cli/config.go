package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

var configSetList bool

// stringKeys are never parsed as numbers or booleans.
var stringKeys = map[string]bool{
	"notion.database_id": true,
	"notion.token_env":   true,
	"mapping.dedupe_on":  true,
	"course.driver":      true,
	"course.stamp_field": true,
	"course.export_dir":  true,
	"course.outbox_dir":  true,
	"schedule.interval":  true,
	"log.file":           true,
	"log.results_dir":    true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the database columns",
	Long: `Validates the field mapping and settings, then queries the Notion
database schema to confirm every mapped column exists.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a single configuration key, for example:

  lexisync config set notion.database_id 7c83b2ef86e941b986e8c8461fb5134d
  lexisync config set mapping.columns.French term
  lexisync config set mapping.required term,translation --list
  lexisync config set schedule.interval 30m`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configSetCmd.Flags().BoolVar(&configSetList, "list", false, "treat the value as a comma separated list")
	configCmd.AddCommand(configShowCmd, configValidateCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}

	settings, err := d.Settings.Get()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(settingsDocument(settings))
	if err != nil {
		return fmt.Errorf("render settings: %w", err)
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintln(out, st.Muted("# "+d.Settings.Path()))
	fmt.Fprint(out, string(data))
	return nil
}

// settingsDocument lays settings out the way the config file does.
func settingsDocument(s *domain.Settings) map[string]any {
	return map[string]any{
		"notion": map[string]any{
			"database_id":         s.Notion.DatabaseID,
			"token_env":           s.Notion.TokenEnv,
			"page_size":           s.Notion.PageSize,
			"requests_per_second": s.Notion.RequestsPerSecond,
		},
		"mapping": map[string]any{
			"columns":   s.Mapping.Columns,
			"required":  s.Mapping.Required,
			"dedupe_on": s.Mapping.DedupeOn,
		},
		"course": map[string]any{
			"driver":           s.Course.Driver.String(),
			"stamp_field":      s.Mapping.StampField,
			"columns":          s.Course.Columns,
			"level_word_limit": s.Course.LevelWordLimit,
			"export_dir":       s.Course.ExportDir,
			"outbox_dir":       s.Course.OutboxDir,
		},
		"schedule": map[string]any{
			"enabled":  s.Schedule.Enabled,
			"interval": s.Schedule.Interval.String(),
		},
		"log": map[string]any{
			"file":        s.Log.File,
			"max_size_mb": s.Log.MaxSizeMB,
			"results_dir": s.Log.ResultsDir,
		},
	}
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}

	settings, err := loadSettings(d)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintf(out, "%s %d columns mapped, course driver %s\n",
		st.Success("Configuration is valid:"), len(settings.Mapping.Columns), settings.Course.Driver)

	if d.CheckSource == nil {
		return nil
	}
	if err := d.CheckSource(cmd.Context(), settings); err != nil {
		return fmt.Errorf("source check failed: %w", err)
	}
	fmt.Fprintf(out, "%s database %s has every mapped column\n", st.Success("Source reachable:"), settings.Notion.DatabaseID)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}

	key := strings.TrimSpace(args[0])
	if !strings.Contains(key, ".") {
		return fmt.Errorf("%w: key %q must be section.name", domain.ErrInvalidInput, key)
	}

	var value any
	switch {
	case configSetList:
		value = splitList(args[1])
	case stringKeys[key] || strings.HasPrefix(key, "mapping.columns."):
		value = args[1]
	default:
		value = parseValue(args[1])
	}

	if err := d.Settings.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
	return nil
}

// parseValue turns a command line value into a bool, int, float or string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && !isNumeric(raw) {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// isNumeric reports whether raw is "0" or "1", which ParseBool also accepts.
func isNumeric(raw string) bool {
	return raw == "0" || raw == "1"
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
