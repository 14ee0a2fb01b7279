// Package endpoint extracts per-service ports from the emulator's
// configuration artifact and renders connectable base URLs.
package endpoint

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Service names the emulator assigns ports to.
const (
	S3              = "s3"
	Kinesis         = "kinesis"
	Lambda          = "lambda"
	DynamoDB        = "dynamodb"
	DynamoDBStreams = "dynamodbstreams"
	APIGateway      = "apigateway"
	Elasticsearch   = "elasticsearch"
	Firehose        = "firehose"
	SNS             = "sns"
	SQS             = "sqs"
	Redshift        = "redshift"
)

// KnownServices lists every service with a dedicated accessor.
func KnownServices() []string {
	return []string{
		S3, Kinesis, Lambda, DynamoDB, DynamoDBStreams, APIGateway,
		Elasticsearch, Firehose, SNS, SQS, Redshift,
	}
}

// ErrEndpointNotFound is matched by every *NotFoundError.
var ErrEndpointNotFound = errors.New("endpoint not found")

// NotFoundError reports a service without a port assignment.
type NotFoundError struct {
	Service string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no DEFAULT_PORT_%s assignment for service %q", strings.ToUpper(e.Service), e.Service)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrEndpointNotFound }

var portAssignment = regexp.MustCompile(`DEFAULT_PORT_([A-Za-z0-9_]+)\s*=\s*([0-9]+)`)

// Table maps upper-cased service names to ports. It is immutable once built.
type Table struct {
	ports map[string]int
	raw   string
}

// Parse scans text line by line for DEFAULT_PORT_<NAME> = <port>
// assignments. Surrounding text is ignored; when a name is assigned more
// than once the last assignment wins.
func Parse(text string) *Table {
	t := &Table{ports: make(map[string]int), raw: text}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, m := range portAssignment.FindAllStringSubmatch(sc.Text(), -1) {
			port, err := strconv.Atoi(m[2])
			if err != nil || port <= 0 || port > 65535 {
				continue
			}
			t.ports[strings.ToUpper(m[1])] = port
		}
	}
	return t
}

// ParseFile reads and parses the artifact at path.
func ParseFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading emulator config %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Port returns the port assigned to service (case-insensitive).
func (t *Table) Port(service string) (int, bool) {
	if t == nil {
		return 0, false
	}
	port, ok := t.ports[strings.ToUpper(strings.TrimSpace(service))]
	return port, ok
}

// Services returns the lower-cased names of all services with a port, sorted.
func (t *Table) Services() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.ports))
	for name := range t.ports {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return names
}

// Len returns the number of port assignments.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ports)
}

// Raw returns the artifact text the table was parsed from.
func (t *Table) Raw() string {
	if t == nil {
		return ""
	}
	return t.raw
}

// Resolver renders base URLs for services in a Table.
type Resolver struct {
	Scheme string
	Host   string
}

// DefaultResolver renders http://localhost:<port>/ URLs.
var DefaultResolver = Resolver{Scheme: "http", Host: "localhost"}

// Resolve returns the base URL for service, or a *NotFoundError when the
// table has no port for it.
func (r Resolver) Resolve(t *Table, service string) (string, error) {
	port, ok := t.Port(service)
	if !ok {
		return "", &NotFoundError{Service: service}
	}
	return r.URL(port), nil
}

// URL renders the base URL for port.
func (r Resolver) URL(port int) string {
	scheme, host := r.Scheme, r.Host
	if scheme == "" {
		scheme = DefaultResolver.Scheme
	}
	if host == "" {
		host = DefaultResolver.Host
	}
	return fmt.Sprintf("%s://%s/", scheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// Address returns host:port for service, for dialing rather than HTTP.
func (r Resolver) Address(t *Table, service string) (string, error) {
	port, ok := t.Port(service)
	if !ok {
		return "", &NotFoundError{Service: service}
	}
	host := r.Host
	if host == "" {
		host = DefaultResolver.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
