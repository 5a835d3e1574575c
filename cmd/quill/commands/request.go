package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/cobra"
)

var requestMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// NewRequestCommand creates the request command
func NewRequestCommand() *cobra.Command {
	var (
		prefix string
		data   string
		stats  bool
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a raw gateway request",
		Long: "Send a request through one of the prefixed gateway clients. Expired access tokens are " +
			"refreshed and the request replayed, as for every other command",
		Example: "  quill request GET / --prefix /blogs\n" +
			"  quill request POST / --prefix /categories --data '{\"name\":\"go\"}'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := parseMethod(args[0])
			if err != nil {
				return err
			}

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON: %s", data)
				}

				body = json.RawMessage(data)
			}

			return run(cmd.Context(), func(s *cliSession) error {
				api, ok := s.gw.API(prefix)
				if !ok {
					return fmt.Errorf("%w: %s", constants.ErrInvalidPrefix, prefix)
				}

				resp, reqErr := api.Request(cmd.Context(), method, args[1], body, nil)

				printErr := printResponse(resp, reqErr)

				if stats {
					printErr = errors.Join(printErr, renderMetrics(s.metrics.Snapshot()))
				}

				if reqErr != nil {
					return reqErr
				}

				return printErr
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", constants.PrefixBlogs, "client prefix (/auth, /users, /categories or /blogs)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().BoolVar(&stats, "stats", false, "print per-endpoint request metrics")

	return cmd
}

func parseMethod(method string) (string, error) {
	method = strings.ToUpper(method)
	if !slices.Contains(requestMethods, method) {
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidMethod, method)
	}

	return method, nil
}

// printResponse writes the response body, indented when it is JSON. A
// failed exchange prints whatever body the gateway sent.
func printResponse(resp *gateway.Response, err error) error {
	var body []byte

	switch {
	case resp != nil:
		body = resp.Body
	case err != nil:
		var transportErr *gateway.TransportError
		if errors.As(err, &transportErr) {
			body = transportErr.Body
		}
	}

	if len(body) == 0 {
		return nil
	}

	var indented bytes.Buffer

	if json.Indent(&indented, body, "", strings.Repeat(" ", constants.JSONIndentSize)) == nil {
		body = indented.Bytes()
	}

	_, writeErr := fmt.Fprintln(os.Stdout, string(body))
	if writeErr != nil {
		return fmt.Errorf("failed to write response: %w", writeErr)
	}

	return nil
}

func renderMetrics(snapshot map[string]gateway.Metrics) error {
	endpoints := make([]string, 0, len(snapshot))
	for endpoint := range snapshot {
		endpoints = append(endpoints, endpoint)
	}

	sort.Strings(endpoints)

	rows := make([][]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		metrics := snapshot[endpoint]
		rows = append(rows, []string{
			endpoint,
			strconv.FormatInt(metrics.TotalRequests, 10),
			strconv.FormatInt(metrics.TotalErrors, 10),
			metrics.AverageLatency.String(),
		})
	}

	return renderTable([]string{"Endpoint", "Requests", "Errors", "Avg Latency"}, rows)
}
