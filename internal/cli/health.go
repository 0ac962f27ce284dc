package cli

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
)

// ErrUnhealthy is returned when the server reports a failing dependency
var ErrUnhealthy = errors.New("server unhealthy")

func (c *cli) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			out := c.output(cmd)

			err := c.client.Get(cmd.Context(), "/api/health", &result)
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable {
				if jsonErr := json.Unmarshal(statusErr.Body, &result); jsonErr == nil {
					out.Print(result)
					return ErrUnhealthy
				}
			}
			if err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
