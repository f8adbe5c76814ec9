package cli

import (
	"net/url"
	"strconv"

	"contexta/internal/infra/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the server configuration resolved from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			p, err := newPrinter(cmd, v)
			if err != nil {
				return err
			}

			keys := []string{
				"env", "port", "db_host", "db_name", "db_password",
				"redis_url", "notification_stream",
				"backend_token_secret", "service_token",
				"pagination_default_limit", "pagination_max_limit", "invalid_cursor_policy",
				"unread_cache_size", "unread_cache_ttl", "outbox_poll_interval",
			}
			return p.Record(keys, map[string]string{
				"env":                      cfg.Env,
				"port":                     cfg.Port,
				"db_host":                  cfg.DBHost,
				"db_name":                  cfg.DBName,
				"db_password":              mask(cfg.DBPassword),
				"redis_url":                maskURL(cfg.RedisURL),
				"notification_stream":      cfg.NotificationStream,
				"backend_token_secret":     mask(cfg.BackendTokenSecret),
				"service_token":            mask(cfg.ServiceToken),
				"pagination_default_limit": strconv.Itoa(cfg.PaginationDefaultLimit),
				"pagination_max_limit":     strconv.Itoa(cfg.PaginationMaxLimit),
				"invalid_cursor_policy":    string(cfg.InvalidCursorPolicy),
				"unread_cache_size":        strconv.Itoa(cfg.UnreadCacheSize),
				"unread_cache_ttl":         cfg.UnreadCacheTTL.String(),
				"outbox_poll_interval":     cfg.OutboxPollInterval.String(),
			})
		},
	}
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "********"
}

// maskURL hides the password of a connection URL. Unparseable values are
// masked whole since they may still carry credentials.
func maskURL(raw string) string {
	if raw == "" {
		return "(unset)"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "********"
	}
	return u.Redacted()
}
