package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"lynx/internal/core"
	"lynx/internal/report"
)

var fixedNow = time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantMonth int
		wantYear  int
		wantErr   bool
	}{
		{name: "numbers", query: url.Values{"month": {"3"}, "year": {"2023"}}, wantMonth: 3, wantYear: 2023},
		{name: "month name", query: url.Values{"month": {"October"}, "year": {"2023"}}, wantMonth: 10, wantYear: 2023},
		{name: "defaults to now", query: url.Values{}, wantMonth: 5, wantYear: 2024},
		{name: "only year", query: url.Values{"year": {"2022"}}, wantMonth: 5, wantYear: 2022},
		{name: "out of range passes through", query: url.Values{"month": {"13"}}, wantMonth: 13, wantYear: 2024},
		{name: "unknown name", query: url.Values{"month": {"Smarch"}}, wantErr: true},
		{name: "bad year", query: url.Values{"year": {"twenty"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, fixedNow)
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Fatalf("err = %v, want errBadRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthParams: %v", err)
			}
			if got.Month != tt.wantMonth || got.Year != tt.wantYear {
				t.Errorf("got %d/%d, want %d/%d", got.Month, got.Year, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestParseQuarterParams(t *testing.T) {
	if _, err := ParseQuarterParams(url.Values{"year": {"2023"}}); !errors.Is(err, errBadRequest) {
		t.Fatalf("missing quarter: err = %v", err)
	}
	got, err := ParseQuarterParams(url.Values{"quarter": {"2"}, "year": {"2023"}})
	if err != nil {
		t.Fatalf("ParseQuarterParams: %v", err)
	}
	if got.Quarter != 2 || got.Year != 2023 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseReportRequest(t *testing.T) {
	tests := []struct {
		name    string
		kind    report.Kind
		query   url.Values
		check   func(t *testing.T, month, year, quarter int, q string, auth int64)
		wantErr bool
	}{
		{
			name:  "billing reads month and year",
			kind:  report.KindBilling,
			query: url.Values{"month": {"2"}, "year": {"2024"}, "quarter": {"3"}},
			check: func(t *testing.T, month, year, quarter int, _ string, _ int64) {
				if month != 2 || year != 2024 || quarter != 0 {
					t.Errorf("got month=%d year=%d quarter=%d", month, year, quarter)
				}
			},
		},
		{
			name:  "quarterly reads quarter and year",
			kind:  report.KindSipQuarterlyServices,
			query: url.Values{"quarter": {"1"}, "year": {"2023"}, "month": {"7"}},
			check: func(t *testing.T, month, year, quarter int, _ string, _ int64) {
				if quarter != 1 || year != 2023 || month != 0 {
					t.Errorf("got month=%d year=%d quarter=%d", month, year, quarter)
				}
			},
		},
		{
			name:    "quarterly needs quarter",
			kind:    report.KindSipQuarterlyDemographics,
			query:   url.Values{"year": {"2023"}},
			wantErr: true,
		},
		{
			name:  "contacts sanitizes query",
			kind:  report.KindContacts,
			query: url.Values{"q": {"  smith\x00 "}},
			check: func(t *testing.T, _, _, _ int, q string, _ int64) {
				if q != "smith" {
					t.Errorf("q = %q", q)
				}
			},
		},
		{
			name:  "billing review needs authorization",
			kind:  report.KindBillingReview,
			query: url.Values{"authorization_id": {"7"}},
			check: func(t *testing.T, month, year, _ int, _ string, auth int64) {
				if auth != 7 || month != 5 || year != 2024 {
					t.Errorf("auth=%d month=%d year=%d", auth, month, year)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseReportRequest(tt.kind, tt.query, fixedNow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				tt.check(t, req.Month, req.Year, req.Quarter, req.Query, req.AuthorizationID)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"first_name":"Ada","last_name":"Lovelace"}`},
		{name: "empty", body: ``, wantErr: errBadRequest},
		{name: "malformed", body: `{"first_name":`, wantErr: errBadRequest},
		{name: "unknown field", body: `{"nickname":"A"}`, wantErr: errBadRequest},
		{name: "two objects", body: `{"first_name":"A"} {"first_name":"B"}`, wantErr: errBadRequest},
		{name: "too large", body: `{"notes":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: errBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(tt.body))
			var c core.Contact
			err := decodeJSON(httptest.NewRecorder(), r, &c)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("decodeJSON: %v", err)
				}
				if c.FirstName != "Ada" {
					t.Fatalf("FirstName = %q", c.FirstName)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_BadDateIsValidationError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note_date":"03/01/2024"}`))
	var n core.SipNote
	err := decodeJSON(httptest.NewRecorder(), r, &n)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
	if statusFor(err) != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", statusFor(err))
	}
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	var gotErr error
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = pathID(r, "id")
	})

	for path, want := range map[string]int64{"/things/42": 42, "/things/0": 0, "/things/-3": 0, "/things/abc": 0} {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if want > 0 && (gotErr != nil || got != want) {
			t.Errorf("%s: got %d, %v", path, got, gotErr)
		}
		if want == 0 && !errors.Is(gotErr, errBadRequest) {
			t.Errorf("%s: err = %v, want errBadRequest", path, gotErr)
		}
	}
}
