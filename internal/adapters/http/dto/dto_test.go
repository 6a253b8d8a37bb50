package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", map[string]string{"doctorId": "this field is required"}).
		WithTraceID("trace-1")

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "request validation failed",
			"details": {"doctorId": "this field is required"}
		},
		"traceId": "trace-1"
	}`, string(b))

	b, err = json.Marshal(NewErrorResponse(ErrorCodeNotFound, "page view not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"page view not found"}}`, string(b))
}

func TestGetTraceID(t *testing.T) {
	t.Run("from context key", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "")
		c.Request.Header.Set("X-Request-ID", "req-1")
		c.Set("trace_id", "4bf92f3577b34da6a3ce929d0e0e4736")

		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(c))
	})

	t.Run("falls back to request id", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "")
		c.Request.Header.Set("X-Request-ID", "req-1")

		assert.Equal(t, "req-1", GetTraceID(c))
	})

	t.Run("empty", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "")

		assert.Empty(t, GetTraceID(c))
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "unknown session",
			err:         domain.NewNotFoundError("page view", "abc"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: `page view with id "abc" not found`,
		},
		{
			name:        "validation with field",
			err:         domain.NewValidationError("rate", "must be a number"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "validation failed for rate: must be a number",
			wantDetails: map[string]string{"rate": "must be a number"},
		},
		{
			name:        "hidden editor",
			err:         domain.NewForbiddenError("PUT /hero", "admin panel closed"),
			wantStatus:  http.StatusForbidden,
			wantCode:    ErrorCodeForbidden,
			wantMessage: `operation "PUT /hero" forbidden: admin panel closed`,
		},
		{
			name:       "write rejected",
			err:        domain.NewWriteError(domain.ResourceHero, "", errors.New("permission denied")),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrorCodeWriteFailed,
		},
		{
			name:        "store down hides internals",
			err:         domain.NewUnavailableError("content-store:mongo", "dial tcp 10.0.0.7:27017"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "content store is temporarily unavailable",
		},
		{
			name:        "unknown error",
			err:         errors.New("nil map write"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	status, resp := MapError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestHandleError(t *testing.T) {
	c, w := testContext(http.MethodPut, "")
	c.Set("trace_id", "trace-9")

	HandleError(c, domain.NewForbiddenError("PUT /hero", "admin panel closed"))

	assert.Equal(t, http.StatusForbidden, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, ErrorCodeForbidden, resp.Error.Code)
	assert.Equal(t, "trace-9", resp.TraceID)
}

func TestValidate_SelectDoctor(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "roster id", id: string(domain.DoctorWong)},
		{name: "default id", id: string(domain.DoctorChen)},
		{name: "unknown id", id: "dr-who", wantErr: true},
		{name: "missing id", id: "", wantErr: true},
		{name: "case matters", id: "DR-CHEN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&SelectDoctorRequest{DoctorID: tt.id})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrors_Messages(t *testing.T) {
	err := Validate(&SelectDoctorRequest{DoctorID: "dr-house"})
	assert.Equal(t, map[string]string{"doctorId": "must be a known doctor id"}, ValidationErrors(err))

	err = Validate(&SelectDoctorRequest{})
	assert.Equal(t, map[string]string{"doctorId": "this field is required"}, ValidationErrors(err))

	err = Validate(&ColorsRequest{Colors: map[string]string{"primary": "#fff"}})
	assert.Equal(t, map[string]string{"colors[primary]": "must start with --"}, ValidationErrors(err))

	assert.Nil(t, ValidationErrors(errors.New("plain")))
}

func TestSuccessRateForm_RateIsNotValidated(t *testing.T) {
	for _, rate := range []string{"87.9", "120", "-5", "abc", ""} {
		form := SuccessRateForm{DoctorID: string(domain.DoctorChen), Rate: rate}
		assert.NoError(t, Validate(&form), rate)
	}
}

func TestBindAndValidate_Colors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantField string
	}{
		{name: "any values are kept", body: `{"colors":{"--primary":"not a color","--accent":""}}`},
		{name: "key without prefix", body: `{"colors":{"primary":"#fff"}}`, wantErr: ErrValidation, wantField: "colors[primary]"},
		{name: "missing colors", body: `{}`, wantErr: ErrValidation, wantField: "colors"},
		{name: "empty colors", body: `{"colors":{}}`, wantErr: ErrValidation},
		{name: "not json", body: `colors`, wantErr: ErrBinding},
		{name: "wrong type", body: `{"colors":["--primary"]}`, wantErr: ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext(http.MethodPut, tt.body)

			var req ColorsRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "not a color", req.Colors["--primary"])

				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantField != "" {
				assert.Contains(t, ValidationErrors(err), tt.wantField)
			}
		})
	}
}

func TestRejectInvalid(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		target      any
		wantCode    string
		wantDetails bool
	}{
		{name: "malformed body", body: `{`, target: &HeroForm{}, wantCode: ErrorCodeBadRequest},
		{name: "field rule", body: `{"doctorId":"dr-who"}`, target: &SelectDoctorRequest{}, wantCode: ErrorCodeValidation, wantDetails: true},
		{name: "request rule", body: `{"colors":{}}`, target: &ColorsRequest{}, wantCode: ErrorCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPut, tt.body)

			err := BindAndValidate(c, tt.target)
			require.Error(t, err)

			RejectInvalid(c, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, len(resp.Error.Details) > 0)
		})
	}
}

func TestNewEditorResponse(t *testing.T) {
	st := app.EditorState{
		Colors:   map[string]string{"--primary": "#1a73e8"},
		Selected: domain.DoctorChen,
		Status:   app.Status{Visible: true, Message: "Colors applied", Kind: app.StatusSuccess},
		Roster: []domain.RosterEntry{
			{ID: domain.DoctorJohnson, DisplayName: "Dr. Sarah Johnson"},
			{ID: domain.DoctorChen, DisplayName: "Dr. Michael Chen"},
		},
	}

	resp := NewEditorResponse("view-1", st)

	assert.Equal(t, "view-1", resp.Session)
	assert.Equal(t, "dr-chen", resp.SelectedDoctor)
	assert.Equal(t, StatusResponse{Show: true, Message: "Colors applied", Type: "success"}, resp.Status)
	assert.Equal(t, []RosterEntry{
		{ID: "dr-johnson", DisplayName: "Dr. Sarah Johnson"},
		{ID: "dr-chen", DisplayName: "Dr. Michael Chen"},
	}, resp.Roster)
}

func TestForms(t *testing.T) {
	hero := HeroForm{Title: "Hope", Subtitle: "Care", Button1: "Book", Button2: "Call"}.Hero()
	assert.Equal(t, domain.HeroContent{Title: "Hope", Subtitle: "Care", Button1: "Book", Button2: "Call"}, hero)

	rate := SuccessRateForm{DoctorID: "dr-reed", Rate: "91.5", Description: "IVF"}.Draft()
	assert.Equal(t, app.SuccessRateDraft{DoctorID: domain.DoctorReed, Rate: "91.5", Description: "IVF"}, rate)

	doc := DoctorForm{Name: "Dr. Amy Reed", Education: "MD\nPhD"}.Draft()
	assert.Equal(t, "Dr. Amy Reed", doc.Name)
	assert.Equal(t, "MD\nPhD", doc.Education)
}
