package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
)

// Override with -godog.tags=@wallet or -godog.format=pretty.
var opts = godog.Options{
	Output:    colors.Colored(os.Stdout),
	Format:    "progress",
	Paths:     []string{"features"},
	Strict:    true,
	Randomize: -1,
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("feature scenarios skipped in short mode")
	}
	opts.TestingT = t

	status := godog.TestSuite{
		Name:                "ridelink",
		ScenarioInitializer: InitializeScenario,
		Options:             &opts,
	}.Run()
	if status != 0 {
		t.Fatalf("feature scenarios failed with status %d", status)
	}
}

// InitializeScenario gives each scenario its own in-process server and clock.
func InitializeScenario(sc *godog.ScenarioContext) {
	tc := NewTestContext()

	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "scenario %q failed after %d events; last response %d: %s\n",
				s.Name, tc.TotalEvents(), tc.GetLastResponseStatus(), tc.GetLastResponseBody())
		}
		tc.Close()
		return ctx, nil
	})

	RegisterSteps(sc, tc)
}
