// Package localstacktest wires a localstack.Stack into go test.
//
// Share one emulator across a package:
//
//	var stack *localstack.Stack
//
//	func TestMain(m *testing.M) {
//		var err error
//		if stack, err = localstack.New(); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			os.Exit(1)
//		}
//		os.Exit(localstacktest.Main(m, stack))
//	}
package localstacktest

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/schmitthub/stackup/pkg/localstack"
)

// M is the subset of *testing.M used by Main.
type M interface {
	Run() int
}

// Main starts stack, runs the tests and tears the emulator down afterwards.
// It returns the exit code for os.Exit. If the emulator cannot be started
// no tests run and the startup error is printed to stderr.
func Main(m M, stack *localstack.Stack) int {
	return run(m, stack, os.Stderr)
}

func run(m M, stack *localstack.Stack, stderr io.Writer) int {
	if err := stack.EnsureRunning(context.Background()); err != nil {
		fmt.Fprintf(stderr, "localstack: %v\n", err)
		if terr := stack.Teardown(); terr != nil {
			fmt.Fprintf(stderr, "localstack: teardown: %v\n", terr)
		}
		return 1
	}

	code := m.Run()

	if err := stack.Teardown(); err != nil {
		fmt.Fprintf(stderr, "localstack: teardown: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// Setup ensures stack is running and fails t otherwise. It returns the
// published snapshot.
func Setup(t testing.TB, stack *localstack.Stack) *localstack.Snapshot {
	t.Helper()
	if err := stack.EnsureRunning(context.Background()); err != nil {
		t.Fatalf("localstack: %v", err)
	}
	return stack.Snapshot()
}

// New creates a Stack owned by t: it is torn down when t completes.
func New(t testing.TB, opts ...localstack.Option) *localstack.Stack {
	t.Helper()
	stack, err := localstack.New(opts...)
	if err != nil {
		t.Fatalf("localstack: %v", err)
	}
	t.Cleanup(func() {
		if err := stack.Teardown(); err != nil {
			t.Errorf("localstack: teardown: %v", err)
		}
	})
	return stack
}

// Endpoint returns the base URL of service, failing t if it cannot.
func Endpoint(t testing.TB, stack *localstack.Stack, service string) string {
	t.Helper()
	url, err := stack.Endpoint(context.Background(), service)
	if err != nil {
		t.Fatalf("localstack: endpoint %s: %v", service, err)
	}
	return url
}
