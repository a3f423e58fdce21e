package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDashboard(t *testing.T, api PenaltyAPI) *Dashboard {
	t.Helper()
	d := NewDashboard(api, newTestDispatcher(t, &recordingNotifier{}, nil), zap.NewNop(), time.Hour)
	t.Cleanup(d.Close)
	return d
}

func TestDashboardDefaults(t *testing.T) {
	snap := newTestDashboard(t, &fakeAPI{}).Snapshot()
	assert.Equal(t, ViewAdmin, snap.Mode)
	assert.Equal(t, SectionOverview, snap.Section)
	assert.Nil(t, snap.Profile)
	assert.Empty(t, snap.Charts)
	assert.Empty(t, snap.History)
	assert.Equal(t, "RED_LIGHT", snap.Violation.Code)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"charts":[]`)
	assert.Contains(t, string(raw), `"profile":null`)
}

func TestSearchShowsProfile(t *testing.T) {
	api := &fakeAPI{fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
		return sampleProfile(plate), nil
	}}
	d := newTestDashboard(t, api)

	require.NoError(t, d.Search(context.Background(), " WP-1234 "))
	snap := d.Snapshot()
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "WP-1234", snap.SearchPlate)
	assert.Equal(t, "Nimal Perera", snap.Profile.Profile.Name)
	assert.Equal(t, "danger", snap.RiskTone)
	assert.Len(t, snap.History, 1)
	require.Len(t, snap.Charts, 5)
	assert.Equal(t, []string{"2023-12", "2024-01"}, snap.Charts[0].Data.Labels)
}

func TestEmptySearchIsNoop(t *testing.T) {
	api := &fakeAPI{}
	d := newTestDashboard(t, api)

	require.NoError(t, d.Search(context.Background(), "  "))
	assert.Equal(t, int32(0), api.profileCalls.Load())
	assert.Empty(t, d.Snapshot().SearchPlate)
}

func TestFailedSearchClearsPreviousProfile(t *testing.T) {
	api := &fakeAPI{fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
		if plate == "WP-1234" {
			return sampleProfile(plate), nil
		}
		return FullProfile{}, &APIError{Status: 404, Detail: "Vehicle not found. Please register first."}
	}}
	d := newTestDashboard(t, api)

	require.NoError(t, d.Search(context.Background(), "WP-1234"))
	require.NotNil(t, d.Snapshot().Profile)

	err := d.Search(context.Background(), "NOPE-1")
	require.Error(t, err)

	snap := d.Snapshot()
	assert.Nil(t, snap.Profile)
	assert.Equal(t, "Vehicle not found. Please register first.", snap.ProfileError)
	assert.Empty(t, snap.Charts)
	assert.Empty(t, snap.RiskTone)
}

func TestSearchFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server error", &APIError{Status: 500, Detail: "boom"}, msgNotRegistered},
		{"timeout", ErrTimeout, msgRequestTimedOut},
		{"connection", ErrConnection, msgConnectionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
				return FullProfile{}, tc.err
			}}
			d := newTestDashboard(t, api)
			require.Error(t, d.Search(context.Background(), "WP-1"))
			assert.Equal(t, tc.want, d.Snapshot().ProfileError)
		})
	}
}

func TestRegisterLiftsPlateIntoSearch(t *testing.T) {
	api := &fakeAPI{fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
		return sampleProfile(plate), nil
	}}
	d := newTestDashboard(t, api)

	require.NoError(t, d.Register(context.Background(), VehicleRegistration{PlateNo: "CAB-9", OwnerName: "Sunil", VehicleType: "Bike"}))

	snap := d.Snapshot()
	assert.Equal(t, "CAB-9", snap.SearchPlate)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, StateSuccess, snap.Register.State)
	assert.Equal(t, int32(1), api.profileCalls.Load())
}

func TestRegisterFailureDoesNotSearch(t *testing.T) {
	api := &fakeAPI{register: func(ctx context.Context, reg VehicleRegistration) error {
		return &APIError{Status: 400, Detail: "Vehicle already registered"}
	}}
	d := newTestDashboard(t, api)

	require.Error(t, d.Register(context.Background(), VehicleRegistration{PlateNo: "CAB-9", OwnerName: "Sunil"}))
	assert.Equal(t, int32(0), api.profileCalls.Load())
	assert.Empty(t, d.Snapshot().SearchPlate)
}

func TestDriverViewLocksViolationPlate(t *testing.T) {
	var submitted string
	api := &fakeAPI{
		fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
			return sampleProfile(plate), nil
		},
		addViolation: func(ctx context.Context, req ViolationRequest) (ViolationResult, error) {
			submitted = req.PlateNo
			return ViolationResult{Points: 2, Multiplier: 1, Label: "No Turn Signal"}, nil
		},
	}
	d := newTestDashboard(t, api)

	require.NoError(t, d.SetView("driver", ""))
	require.NoError(t, d.Search(context.Background(), "WP-1234"))

	_, err := d.SubmitViolation(context.Background(), "SOMETHING-ELSE", "NO_SIGNAL")
	require.NoError(t, err)
	assert.Equal(t, "WP-1234", submitted)

	snap := d.Snapshot()
	assert.Equal(t, "WP-1234", snap.Violation.Plate)
	assert.Equal(t, int32(2), api.profileCalls.Load(), "profile is refetched after the violation")
}

func TestAdminViewUsesTypedPlate(t *testing.T) {
	var submitted string
	api := &fakeAPI{addViolation: func(ctx context.Context, req ViolationRequest) (ViolationResult, error) {
		submitted = req.PlateNo
		return ViolationResult{Points: 2, Multiplier: 1}, nil
	}}
	d := newTestDashboard(t, api)

	_, err := d.SubmitViolation(context.Background(), "WP-7777", "OBSTRUCTION")
	require.NoError(t, err)
	assert.Equal(t, "WP-7777", submitted)
	assert.Empty(t, d.Snapshot().Violation.Plate)
}

func TestSubmitViolationFailureSkipsRefresh(t *testing.T) {
	api := &fakeAPI{addViolation: func(ctx context.Context, req ViolationRequest) (ViolationResult, error) {
		return ViolationResult{}, errors.New("decode: unexpected EOF")
	}}
	d := newTestDashboard(t, api)

	_, err := d.SubmitViolation(context.Background(), "WP-1", "RED_LIGHT")
	require.Error(t, err)
	assert.Equal(t, int32(0), api.profileCalls.Load())
	assert.Equal(t, msgInvalidResponse, d.Snapshot().Violation.Message)
}

func TestSetView(t *testing.T) {
	api := &fakeAPI{fullProfile: func(ctx context.Context, plate string) (FullProfile, error) {
		return sampleProfile(plate), nil
	}}
	d := newTestDashboard(t, api)
	require.NoError(t, d.Search(context.Background(), "WP-1"))

	require.NoError(t, d.SetView("DRIVER", "rewards"))
	snap := d.Snapshot()
	assert.Equal(t, ViewDriver, snap.Mode)
	assert.Equal(t, SectionRewards, snap.Section)
	assert.Len(t, snap.Charts, 2)

	var validation *ValidationError
	assert.ErrorAs(t, d.SetView("superuser", ""), &validation)
	assert.ErrorAs(t, d.SetView("", "fines"), &validation)
	assert.Equal(t, ViewDriver, d.Snapshot().Mode)
}

func TestRiskTone(t *testing.T) {
	assert.Equal(t, "danger", riskTone("High"))
	assert.Equal(t, "danger", riskTone("CRITICAL"))
	assert.Equal(t, "warning", riskTone("Moderate"))
	assert.Equal(t, "ok", riskTone("Low"))
	assert.Equal(t, "ok", riskTone(""))
}
