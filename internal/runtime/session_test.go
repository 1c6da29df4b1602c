package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow/internal/runtime"
	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
	"github.com/acopio/formflow/pkg/registry"
)

type fakeLookup struct {
	queries []ports.EntityQuery
	items   []ports.EntityItem
	err     error
	onCall  func()
}

func (f *fakeLookup) LookupEntities(ctx context.Context, q ports.EntityQuery) (ports.EntityPage, error) {
	f.queries = append(f.queries, q)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return ports.EntityPage{}, f.err
	}
	return ports.EntityPage{Items: f.items, Page: q.Page, PerPage: q.PerPage, Total: len(f.items)}, nil
}

type fakeUnique struct {
	existing map[string]bool
	checked  []string
	err      error
}

func (f *fakeUnique) ValidateUniqueField(ctx context.Context, c ports.UniqueCheck) (bool, error) {
	f.checked = append(f.checked, c.FieldName)
	if f.err != nil {
		return false, f.err
	}
	return f.existing[c.Value], nil
}

type fakeSink struct {
	last ports.Registration
}

func (f *fakeSink) SubmitRegistration(ctx context.Context, reg ports.Registration) (string, error) {
	f.last = reg
	return "reg-1", nil
}

func calculatorDoc() *domain.Document {
	return &domain.Document{
		InstructionStart: "q1",
		ModuleID:         "disbursements",
		Instructions: []domain.Instruction{
			question("q1", "a", success("c1", "q2")),
			question("q2", "b", success("c2", "q3")),
			{
				ID: "q3",
				Gather: &domain.GatherField{
					Name:       "total",
					ValueType:  domain.ValueCalculator,
					Expression: "{{a}} + {{b}}",
					Optional:   true,
				},
			},
		},
	}
}

func TestSession_CalculatorField(t *testing.T) {
	engine := runtime.NewEngine()
	session := engine.Begin("form-1", calculatorDoc())
	ctx := context.Background()

	session.SetValue(ctx, "a", "2")
	assert.Equal(t, "", session.Value("total"), "one operand missing keeps the result empty")

	session.SetValue(ctx, "b", "3")
	assert.Equal(t, "5", session.Value("total"))

	session.SetValue(ctx, "b", "")
	assert.Equal(t, "", session.Value("total"), "clearing an operand reverts the result to empty")
}

func TestSession_EntityFilterRefetch(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			{
				ID:     "q1",
				Gather: &domain.GatherField{Name: "country_id", ValueType: domain.ValueEntity, EntityType: "country"},
				Conditions: []domain.Condition{
					success("c1", "q2"),
				},
			},
			{
				ID: "q2",
				Gather: &domain.GatherField{
					Name:             "region_id",
					ValueType:        domain.ValueEntity,
					EntityType:       "region",
					FilterExpression: "country={{country_id}}",
				},
			},
		},
	}

	lookup := &fakeLookup{items: []ports.EntityItem{{ID: "r1", Label: "Huila"}}}
	engine := runtime.NewEngine(runtime.WithEntityLookup(lookup))
	session := engine.Begin("form-1", doc)

	session.SetValue(context.Background(), "country_id", "co")

	require.Len(t, lookup.queries, 1, "exactly one refetch for the dependent field")
	assert.Equal(t, "region", lookup.queries[0].EntityType)
	assert.Equal(t, "country=co", lookup.queries[0].Filter, "placeholder substituted with the captured value")

	set, ok := session.Options("q2")
	require.True(t, ok)
	assert.Equal(t, "country=co", set.FilterExpression)
	require.Len(t, set.Values, 1)
	assert.Equal(t, "Huila", set.Values[0].Label)
}

func TestSession_LookupFailureDegradesToEmpty(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			{
				ID:     "q1",
				Gather: &domain.GatherField{Name: "warehouse_id", ValueType: domain.ValueEntity, EntityType: "warehouse"},
			},
		},
	}

	lookup := &fakeLookup{err: errors.New("backend down")}
	engine := runtime.NewEngine(runtime.WithEntityLookup(lookup))
	session := engine.Begin("form-1", doc)

	err := session.RefreshOptions(context.Background(), "q1")
	assert.NoError(t, err, "the failure is logged and absorbed, not surfaced")

	set, ok := session.Options("q1")
	require.True(t, ok, "failed lookups still publish an (empty) option table")
	assert.Empty(t, set.Values)
}

func TestSession_StaleLookupDiscarded(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			{
				ID:     "q1",
				Gather: &domain.GatherField{Name: "plot_id", ValueType: domain.ValueEntity, EntityType: "plot"},
				Conditions: []domain.Condition{
					success("c1", "q2"),
				},
			},
			question("q2", "notes"),
		},
	}

	lookup := &fakeLookup{items: []ports.EntityItem{{ID: "p1", Label: "Lote 1"}}}
	engine := runtime.NewEngine(runtime.WithEntityLookup(lookup))
	session := engine.Begin("form-1", doc)

	// A newer version is published while the lookup is in flight.
	lookup.onCall = func() {
		lookup.onCall = nil
		session.SetValue(context.Background(), "notes", "superseding edit")
	}

	require.NoError(t, session.RefreshOptions(context.Background(), "q1"))

	_, ok := session.Options("q1")
	assert.False(t, ok, "a response issued against a superseded version must be discarded")
}

func TestSession_Validate(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			question("q1", "producer_code", success("c1", "q2")),
			question("q2", "phone", success("c2", "q3")),
			{
				ID:     "q3",
				Gather: &domain.GatherField{Name: "remarks", ValueType: domain.ValueText, Optional: true},
			},
		},
	}
	doc.Instructions[0].Gather.Unique = true
	doc.Instructions[1].Gather.Unique = true

	unique := &fakeUnique{existing: map[string]bool{"P-001": true, "555": true}}
	engine := runtime.NewEngine(runtime.WithUniquenessChecker(unique))
	session := engine.Begin("form-1", doc)
	ctx := context.Background()

	t.Run("Required Fields", func(t *testing.T) {
		errs := session.Validate(ctx)
		assert.Equal(t, map[string]string{"producer_code": "required", "phone": "required"}, errs)
	})

	t.Run("Uniqueness Checks Do Not Short-Circuit", func(t *testing.T) {
		session.SetValue(ctx, "producer_code", "P-001")
		session.SetValue(ctx, "phone", "555")

		unique.checked = nil
		errs := session.Validate(ctx)

		assert.Equal(t, map[string]string{"producer_code": "already exists", "phone": "already exists"}, errs)
		assert.Equal(t, []string{"producer_code", "phone"}, unique.checked, "every unique field is checked even after a conflict")
	})

	t.Run("Checker Error Is Non-Fatal", func(t *testing.T) {
		unique.err = errors.New("timeout")
		errs := session.Validate(ctx)
		assert.Empty(t, errs, "a failed existence check does not mark the field invalid")
		unique.err = nil
	})

	t.Run("Clean Pass", func(t *testing.T) {
		session.SetValue(ctx, "producer_code", "P-002")
		session.SetValue(ctx, "phone", "556")
		assert.Empty(t, session.Validate(ctx))
	})
}

func TestSession_ValidateTypeMismatch(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			{
				ID:     "q1",
				Gather: &domain.GatherField{Name: "weight", ValueType: domain.ValueNumber},
			},
		},
	}

	engine := runtime.NewEngine()
	session := engine.Begin("form-1", doc)
	ctx := context.Background()

	session.SetValue(ctx, "weight", "heavy")
	errs := session.Validate(ctx)
	assert.Contains(t, errs["weight"], "expected a number")

	session.SetValue(ctx, "weight", "41.5")
	assert.Empty(t, session.Validate(ctx))
}

func TestSession_Submit(t *testing.T) {
	sink := &fakeSink{}
	engine := runtime.NewEngine(runtime.WithRegistrationSink(sink))
	session := engine.Begin("form-1", calculatorDoc())
	ctx := context.Background()

	t.Run("Validation Errors Abort Submission", func(t *testing.T) {
		_, err := session.Submit(ctx)
		var verr *runtime.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "a")
	})

	t.Run("Successful Submission", func(t *testing.T) {
		session.SetValue(ctx, "a", "2")
		session.SetValue(ctx, "b", "3")

		id, err := session.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, "reg-1", id)

		assert.Equal(t, "form-1", sink.last.FormID)
		require.Len(t, sink.last.Details, 3)
		assert.Equal(t, "a", sink.last.Details[0]["name"])
		assert.Equal(t, "2", sink.last.Details[0]["value"])
		assert.Equal(t, "5", sink.last.Details[2]["value"], "calculator result is part of the payload")
		assert.GreaterOrEqual(t, sink.last.Duration.Nanoseconds(), int64(0))
	})
}

func TestSession_RunTool(t *testing.T) {
	doc := &domain.Document{
		InstructionStart: "q1",
		Instructions: []domain.Instruction{
			question("q1", "code", success("c1", "sync")),
			{
				ID:     "sync",
				Config: domain.Config{Tool: "push-upstream"},
				Conditions: []domain.Condition{
					{ID: "c2", Type: domain.ConditionByUnhappy, NextInstructionID: "q-retry"},
					{ID: "c3", Type: domain.ConditionBySuccess, NextInstructionID: "q-done"},
				},
			},
			question("q-retry", "retry_note"),
			question("q-done", "receipt"),
		},
	}

	t.Run("Failure Activates Unhappy Path", func(t *testing.T) {
		tools := registry.NewRegistry()
		tools.Register("push-upstream", func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("upstream unreachable")
		})

		session := runtime.NewEngine(runtime.WithToolRegistry(tools)).Begin("f1", doc)
		ctx := context.Background()
		session.SetValue(ctx, "code", "P-1")

		_, err := session.RunTool(ctx, "sync")
		require.Error(t, err)
		assert.Contains(t, session.VisibleSet(), "q-retry")
	})

	t.Run("Success Keeps Happy Path", func(t *testing.T) {
		tools := registry.NewRegistry()
		var got map[string]any
		tools.Register("push-upstream", func(ctx context.Context, args map[string]any) (any, error) {
			got = args
			return "ok", nil
		})

		session := runtime.NewEngine(runtime.WithToolRegistry(tools)).Begin("f1", doc)
		ctx := context.Background()
		session.SetValue(ctx, "code", "P-1")

		result, err := session.RunTool(ctx, "sync")
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, "P-1", got["code"], "captured answers are the tool arguments")
		assert.NotContains(t, session.VisibleSet(), "q-retry")
		assert.Contains(t, session.VisibleSet(), "q-done")
	})

	t.Run("Unconfigured Registry", func(t *testing.T) {
		session := runtime.NewEngine().Begin("f1", doc)
		_, err := session.RunTool(context.Background(), "sync")
		assert.ErrorContains(t, err, "no tool registry")
	})
}
