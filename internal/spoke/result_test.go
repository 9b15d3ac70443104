// SPDX-License-Identifier: Apache-2.0

package spoke_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storagegate/underwrite/internal/spoke"
)

func TestResult_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		result     spoke.Result[int]
		wantValue  int
		wantOK     bool
		wantStatus spoke.Status
	}{
		{name: "ok returns computed value", result: spoke.Ok(7, "computed"), wantValue: 7, wantOK: true, wantStatus: spoke.StatusOK},
		{name: "stub returns caller default", result: spoke.Stub(3, "missing"), wantValue: -1, wantOK: false, wantStatus: spoke.StatusStub},
		{name: "failed returns caller default", result: spoke.Failed(3, errors.New("boom")), wantValue: -1, wantOK: false, wantStatus: spoke.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.result.Resolve(-1)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, tt.result.Status())
		})
	}
}

func TestResult_FailedCarriesMessage(t *testing.T) {
	r := spoke.Failed("default", errors.New("division by zero"))
	assert.Equal(t, "division by zero", r.Notes())
	assert.Equal(t, "default", r.Snapshot(), "a failed result still carries the stub default")

	r = spoke.Failed("default", nil)
	assert.Equal(t, "unknown error", r.Notes())

	r = spoke.Failed("default", errors.New(""))
	assert.Equal(t, "unknown error", r.Notes(), "error notes are never empty")
}

func TestSwitch_DispatchesEveryBranch(t *testing.T) {
	branch := func(r spoke.Result[int]) string {
		return spoke.Switch(r,
			func(int) string { return "ok" },
			func(_ int, notes string) string { return "stub:" + notes },
			func(_ int, notes string) string { return "error:" + notes },
		)
	}
	assert.Equal(t, "ok", branch(spoke.Ok(1, "")))
	assert.Equal(t, "stub:toggle", branch(spoke.Stub(0, "toggle")))
	assert.Equal(t, "error:bad", branch(spoke.Failed(0, errors.New("bad"))))
}

func TestResult_JSON(t *testing.T) {
	r := spoke.Stub(spoke.Zoning{Classification: spoke.ZoneUnknown, ZoningScore: 50}, "no zoning code supplied")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"stub","notes":"no zoning code supplied","data":{
		"code":"","district":"","classification":"unknown","byRight":false,
		"requiresHearing":false,"maxLotCoveragePct":0,"zoningScore":50}}`, string(b))

	var back spoke.Result[spoke.Zoning]
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r.Status(), back.Status())
	assert.Equal(t, r.Notes(), back.Notes())
	assert.Equal(t, r.Snapshot(), back.Snapshot())

	err = json.Unmarshal([]byte(`{"status":"maybe","notes":"","data":{}}`), &back)
	assert.ErrorContains(t, err, "unknown result status")
}
