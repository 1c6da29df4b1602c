package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow"
	"github.com/acopio/formflow/pkg/adapters/memory"
	"github.com/acopio/formflow/pkg/domain"
)

func surveyDocument() *domain.Document {
	return &domain.Document{
		InstructionStart: "q-crop",
		ModuleID:         "mod-survey",
		Instructions: []domain.Instruction{
			{
				ID:     "q-crop",
				Config: domain.Config{IsGather: true},
				Gather: &domain.GatherField{Name: "crop", ValueType: domain.ValueText},
				Conditions: []domain.Condition{
					{
						ID:                "c-coffee",
						Type:              domain.ConditionByVar,
						NextInstructionID: "q-altitude",
						Validators:        []domain.Validator{{Operator: domain.OperatorEqual, Value: "coffee"}},
					},
					{ID: "c-next", Type: domain.ConditionBySuccess, NextInstructionID: "q-weight"},
				},
			},
			{
				ID:     "q-altitude",
				Config: domain.Config{IsGather: true},
				Gather: &domain.GatherField{Name: "altitude", ValueType: domain.ValueNumber, Optional: true},
			},
			{
				ID:     "q-weight",
				Config: domain.Config{IsGather: true},
				Gather: &domain.GatherField{Name: "weight", ValueType: domain.ValueNumber},
			},
		},
	}
}

func newTestHandler(t *testing.T) (http.Handler, *memory.Store, *memory.Ledger) {
	t.Helper()

	store := memory.NewStore()
	sink := memory.NewLedger()
	engine, err := formflow.New(
		formflow.WithSchemaStore(store),
		formflow.WithRegistrationSink(sink),
	)
	require.NoError(t, err)

	handler, err := NewHandler(engine)
	require.NoError(t, err)
	return handler, store, sink
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestPersistAndLoadSchema(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	w := doJSON(t, handler, http.MethodPost, "/forms/f1/schema", surveyDocument())
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created["id"])

	w = doJSON(t, handler, http.MethodGet, "/forms/f1/schema", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "q-crop", got.InstructionStart)
	require.Len(t, got.Instructions, 3)
}

func TestGetSchemaNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	w := doJSON(t, handler, http.MethodGet, "/forms/missing/schema", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPersistSchemaRejectsInvalid(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	doc := surveyDocument()
	doc.InstructionStart = "nope"
	w := doJSON(t, handler, http.MethodPost, "/forms/f1/schema", doc)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPersistSchemaRejectsMalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	// Missing instruction_start, caught by the OpenAPI contract.
	req := httptest.NewRequest(http.MethodPost, "/forms/f1/schema", strings.NewReader(`{"instructions":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderFlow(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	w := doJSON(t, handler, http.MethodPost, "/forms/f1/schema", surveyDocument())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, handler, http.MethodGet, "/forms/f1/flow?crop=coffee", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Visible []string          `json:"visible"`
		Answers map[string]string `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"q-crop", "q-altitude", "q-weight"}, resp.Visible)
	require.Equal(t, "coffee", resp.Answers["crop"])
}

func TestSubmitRegistration(t *testing.T) {
	handler, _, sink := newTestHandler(t)

	w := doJSON(t, handler, http.MethodPost, "/forms/f1/schema", surveyDocument())
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("missing required answers", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/registrations", registrationRequest{
			FormID:  "f1",
			Answers: map[string]string{"crop": "cacao"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp.Errors, "weight")
	})

	t.Run("accepted", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/registrations", registrationRequest{
			FormID:  "f1",
			Answers: map[string]string{"crop": "cacao", "weight": "40"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		regs := sink.Registrations()
		require.Len(t, regs, 1)
		require.Equal(t, "f1", regs[0].FormID)
		require.Equal(t, "mod-survey", regs[0].SchemaID)
	})

	t.Run("unknown form", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/registrations", registrationRequest{
			FormID:  "ghost",
			Answers: map[string]string{},
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	doJSON(t, handler, http.MethodGet, "/forms/missing/schema", nil)

	w := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "formflow_http_requests_total")
}

func TestOpenAPISpecServed(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	w := doJSON(t, handler, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "openapi: 3.0.3")
}
