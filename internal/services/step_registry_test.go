package services

import (
	"errors"
	"testing"

	"github.com/ad/go-onboarding-wizard/internal/models"
)

func testDefinitions() []models.StepDefinition {
	return []models.StepDefinition{
		{Role: models.RoleCreator, StepOrder: 1, ID: "creator-profile", Title: "Your profile"},
		{Role: models.RoleCreator, StepOrder: 2, ID: "creator-categories", Title: "Content categories"},
		{Role: models.RoleCreator, StepOrder: 3, ID: "creator-socials", Title: "Social channels"},
		{Role: models.RoleCreator, StepOrder: 4, ID: "creator-rates", Title: "Collaboration rates", Terminal: true},
		{Role: models.RoleOrganization, StepOrder: 1, ID: "org-company", Title: "Company details"},
		{Role: models.RoleOrganization, StepOrder: 2, ID: "org-brand", Title: "Brand profile"},
		{Role: models.RoleOrganization, StepOrder: 3, ID: "org-goals", Title: "Campaign goals", Terminal: true},
	}
}

func TestNewStepRegistry_Valid(t *testing.T) {
	registry, err := NewStepRegistry(testDefinitions())
	if err != nil {
		t.Fatalf("NewStepRegistry failed: %v", err)
	}

	if got := registry.StepCount(models.RoleCreator); got != 4 {
		t.Errorf("expected 4 creator steps, got %d", got)
	}
	if got := registry.StepCount(models.RoleOrganization); got != 3 {
		t.Errorf("expected 3 organization steps, got %d", got)
	}

	step, err := registry.Step(models.RoleCreator, 2)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if step.ID != "creator-categories" {
		t.Errorf("expected creator-categories at order 2, got %s", step.ID)
	}

	roles := registry.Roles()
	if len(roles) != 2 || roles[0] != models.RoleCreator || roles[1] != models.RoleOrganization {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestNewStepRegistry_Empty(t *testing.T) {
	if _, err := NewStepRegistry(nil); err == nil {
		t.Fatal("expected error for empty definitions")
	}
}

func TestNewStepRegistry_GappedOrders(t *testing.T) {
	defs := []models.StepDefinition{
		{Role: models.RoleCreator, StepOrder: 1, ID: "a"},
		{Role: models.RoleCreator, StepOrder: 3, ID: "b", Terminal: true},
	}
	if _, err := NewStepRegistry(defs); err == nil {
		t.Fatal("expected error for gapped step orders")
	}
}

func TestNewStepRegistry_DuplicateOrders(t *testing.T) {
	defs := []models.StepDefinition{
		{Role: models.RoleCreator, StepOrder: 1, ID: "a"},
		{Role: models.RoleCreator, StepOrder: 1, ID: "b"},
		{Role: models.RoleCreator, StepOrder: 2, ID: "c", Terminal: true},
	}
	if _, err := NewStepRegistry(defs); err == nil {
		t.Fatal("expected error for duplicate step orders")
	}
}

func TestNewStepRegistry_TerminalNotLast(t *testing.T) {
	defs := []models.StepDefinition{
		{Role: models.RoleCreator, StepOrder: 1, ID: "a", Terminal: true},
		{Role: models.RoleCreator, StepOrder: 2, ID: "b"},
	}
	if _, err := NewStepRegistry(defs); err == nil {
		t.Fatal("expected error for terminal flag before the last step")
	}
}

func TestStepRegistry_UnknownLookups(t *testing.T) {
	registry, err := NewStepRegistry(testDefinitions())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		role  models.Role
		order int
	}{
		{"zero order", models.RoleCreator, 0},
		{"negative order", models.RoleCreator, -1},
		{"past the end", models.RoleCreator, 5},
		{"way past the end", models.RoleOrganization, 99},
		{"unknown role", models.Role("admin"), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := registry.Step(tc.role, tc.order); !errors.Is(err, models.ErrUnknownStep) {
				t.Errorf("expected ErrUnknownStep, got %v", err)
			}
			if _, err := registry.IsTerminal(tc.role, tc.order); !errors.Is(err, models.ErrUnknownStep) {
				t.Errorf("IsTerminal: expected ErrUnknownStep, got %v", err)
			}
		})
	}
}

func TestStepRegistry_IsTerminal(t *testing.T) {
	registry, err := NewStepRegistry(testDefinitions())
	if err != nil {
		t.Fatal(err)
	}

	for order := 1; order <= 4; order++ {
		terminal, err := registry.IsTerminal(models.RoleCreator, order)
		if err != nil {
			t.Fatalf("IsTerminal(%d) failed: %v", order, err)
		}
		if terminal != (order == 4) {
			t.Errorf("creator step %d: terminal=%v", order, terminal)
		}
	}
}
