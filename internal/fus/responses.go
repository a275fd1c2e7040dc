// internal/fus/responses.go
package fus

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// VersionResponse is the answer to VERSION.
type VersionResponse struct {
	Status         uint32 `json:"status"`
	FusVersion     uint32 `json:"fus_version"`
	CoproFwVersion string `json:"copro_fw_version"`
	WsVersion      uint32 `json:"ws_version"`
}

// StatusResponse is the answer to STATUS.
type StatusResponse struct {
	Status        uint32 `json:"status"`
	LastFusStatus uint32 `json:"last_fus_status"`
	LastWsStatus  uint32 `json:"last_ws_status"`
	CurrentWs     uint32 `json:"current_ws"`
}

// Progress is one line emitted while an UPGRADE runs.
// Error is nil when the device did not report one.
type Progress struct {
	Status uint32  `json:"status"`
	Error  *uint32 `json:"error,omitempty"`
}

// Done reports whether the upgrade has finished.
func (p Progress) Done() bool { return p.Status == StatusIdle }

// DecodeError reports a device line that is not a valid response.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fus: decode %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ---- decoding ----

func DecodeVersion(line string) (VersionResponse, error) {
	var v struct {
		VersionResponse
		Status *uint32 `json:"status"`
	}
	if err := decode(line, &v, func() bool { return v.Status != nil }); err != nil {
		return VersionResponse{}, err
	}
	v.VersionResponse.Status = *v.Status
	return v.VersionResponse, nil
}

func DecodeStatus(line string) (StatusResponse, error) {
	var v struct {
		StatusResponse
		Status *uint32 `json:"status"`
	}
	if err := decode(line, &v, func() bool { return v.Status != nil }); err != nil {
		return StatusResponse{}, err
	}
	v.StatusResponse.Status = *v.Status
	return v.StatusResponse, nil
}

func DecodeProgress(line string) (Progress, error) {
	var v struct {
		Progress
		Status *uint32 `json:"status"`
	}
	if err := decode(line, &v, func() bool { return v.Status != nil }); err != nil {
		return Progress{}, err
	}
	v.Progress.Status = *v.Status
	return v.Progress, nil
}

var errMissingStatus = fmt.Errorf("missing field %q", "status")

func decode(line string, dst any, hasStatus func() bool) error {
	if err := json.Unmarshal([]byte(line), dst); err != nil {
		return &DecodeError{Line: line, Err: err}
	}
	if !hasStatus() {
		return &DecodeError{Line: line, Err: errMissingStatus}
	}
	return nil
}
