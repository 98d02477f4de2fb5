package authz

import (
	"context"
	"fmt"
	"testing"

	"pos_terminal/internal/models"

	"github.com/cucumber/godog"
)

type gateTestContext struct {
	sess     *models.Session
	decision Decision
}

func (g *gateTestContext) reset() {
	g.sess = nil
	g.decision = Decision{}
}

func (g *gateTestContext) noSession() error {
	g.sess = nil
	return nil
}

func (g *gateTestContext) aSessionWithRole(role string) error {
	r := models.Role(role)
	if !r.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	g.sess = sessionAs(r)
	return nil
}

func (g *gateTestContext) theScreenIsRequested(role string) error {
	g.decision = Decide(g.sess, models.Role(role))
	return nil
}

func (g *gateTestContext) theLoginScreenIsRequested() error {
	g.decision = DecideLogin(g.sess)
	return nil
}

func (g *gateTestContext) theOutcomeIs(want string) error {
	if got := g.decision.Outcome.String(); got != want {
		return fmt.Errorf("expected outcome %q, got %q", want, got)
	}
	return nil
}

func (g *gateTestContext) theLocationIs(want string) error {
	if g.decision.Location != want {
		return fmt.Errorf("expected location %q, got %q", want, g.decision.Location)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	gc := &gateTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		gc.reset()
		return ctx, nil
	})

	ctx.Step(`^no session$`, gc.noSession)
	ctx.Step(`^a session with role "([^"]*)"$`, gc.aSessionWithRole)
	ctx.Step(`^the "([^"]*)" screen is requested$`, gc.theScreenIsRequested)
	ctx.Step(`^the login screen is requested$`, gc.theLoginScreenIsRequested)
	ctx.Step(`^the outcome is "([^"]*)"$`, gc.theOutcomeIs)
	ctx.Step(`^the location is "([^"]*)"$`, gc.theLocationIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/authorization_gate.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
