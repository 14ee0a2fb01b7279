package cmdutil

import (
	"strconv"
	"strings"

	"github.com/schmitthub/stackup/internal/endpoint"
	"github.com/schmitthub/stackup/internal/iostreams"
)

// EndpointRow is one resolved service endpoint.
type EndpointRow struct {
	Service string `json:"service"`
	Port    int    `json:"port"`
	URL     string `json:"url"`
}

// EndpointRows resolves services against table. With no services every
// service in the table is listed, sorted by name. An unknown service fails
// with an *endpoint.NotFoundError.
func EndpointRows(table *endpoint.Table, r endpoint.Resolver, services []string) ([]EndpointRow, error) {
	if len(services) == 0 {
		services = table.Services()
	}

	rows := make([]EndpointRow, 0, len(services))
	for _, svc := range services {
		url, err := r.Resolve(table, svc)
		if err != nil {
			return nil, err
		}
		port, _ := table.Port(svc)
		rows = append(rows, EndpointRow{Service: strings.ToLower(strings.TrimSpace(svc)), Port: port, URL: url})
	}
	return rows, nil
}

// PrintEndpoints writes rows to stdout as a table, or as JSON when asJSON.
func PrintEndpoints(ios *iostreams.IOStreams, rows []EndpointRow, asJSON bool) error {
	if asJSON {
		return OutputJSON(ios, rows)
	}
	if len(rows) == 0 {
		return ios.PrintEmpty("endpoints", "the emulator config does not assign any DEFAULT_PORT_* values")
	}

	tp := ios.NewTablePrinter("SERVICE", "PORT", "URL")
	for _, row := range rows {
		tp.AddRow(row.Service, strconv.Itoa(row.Port), row.URL)
	}
	return tp.Render()
}
