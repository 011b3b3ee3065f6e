package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

// OpenRequest is the decoded payload of Open.
type OpenRequest struct {
	Page         string
	Action       string
	ErrorMessage string
}

// FailureRequest is the decoded payload of RecordFailure and ClearFailures.
type FailureRequest struct {
	FeatureID    string
	ErrorMessage string
}

// FailureResult is returned by RecordFailure.
type FailureResult struct {
	Count        int
	ShowHelp     bool
	ErrorMessage string
	LastFailure  time.Time
}

// FromStructOpenRequest validates and decodes an Open payload.
func FromStructOpenRequest(in *structpb.Struct) (OpenRequest, error) {
	if in == nil {
		return OpenRequest{}, fmt.Errorf("request is nil")
	}
	var req OpenRequest
	var err error
	if req.Page, err = stringField(in, "page"); err != nil {
		return OpenRequest{}, err
	}
	if req.Action, err = stringField(in, "action"); err != nil {
		return OpenRequest{}, err
	}
	if req.ErrorMessage, err = stringField(in, "errorMessage"); err != nil {
		return OpenRequest{}, err
	}
	if strings.TrimSpace(req.Page) == "" {
		return OpenRequest{}, fmt.Errorf("page is required")
	}
	if strings.TrimSpace(req.Action) == "" {
		return OpenRequest{}, fmt.Errorf("action is required")
	}
	return req, nil
}

// ToStructOpenRequest encodes an Open payload.
func ToStructOpenRequest(req OpenRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"page":   structpb.NewStringValue(req.Page),
		"action": structpb.NewStringValue(req.Action),
	}
	if req.ErrorMessage != "" {
		fields["errorMessage"] = structpb.NewStringValue(req.ErrorMessage)
	}
	return &structpb.Struct{Fields: fields}
}

// FromStructFailureRequest validates and decodes a failure tracker payload.
func FromStructFailureRequest(in *structpb.Struct) (FailureRequest, error) {
	if in == nil {
		return FailureRequest{}, fmt.Errorf("request is nil")
	}
	var req FailureRequest
	var err error
	if req.FeatureID, err = stringField(in, "featureId"); err != nil {
		return FailureRequest{}, err
	}
	if req.ErrorMessage, err = stringField(in, "errorMessage"); err != nil {
		return FailureRequest{}, err
	}
	if strings.TrimSpace(req.FeatureID) == "" {
		return FailureRequest{}, fmt.Errorf("featureId is required")
	}
	return req, nil
}

// ToStructFailureRequest encodes a failure tracker payload.
func ToStructFailureRequest(req FailureRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"featureId": structpb.NewStringValue(req.FeatureID),
	}
	if req.ErrorMessage != "" {
		fields["errorMessage"] = structpb.NewStringValue(req.ErrorMessage)
	}
	return &structpb.Struct{Fields: fields}
}

// ToStructFailureResult encodes the RecordFailure response.
func ToStructFailureResult(res FailureResult) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"count":        structpb.NewNumberValue(float64(res.Count)),
		"showHelp":     structpb.NewBoolValue(res.ShowHelp),
		"errorMessage": structpb.NewStringValue(res.ErrorMessage),
	}
	if !res.LastFailure.IsZero() {
		fields["lastFailure"] = structpb.NewStringValue(res.LastFailure.UTC().Format(time.RFC3339))
	}
	return &structpb.Struct{Fields: fields}
}

// FromStructFailureResult decodes the RecordFailure response.
func FromStructFailureResult(in *structpb.Struct) FailureResult {
	fields := in.GetFields()
	res := FailureResult{
		Count:        int(fields["count"].GetNumberValue()),
		ShowHelp:     fields["showHelp"].GetBoolValue(),
		ErrorMessage: fields["errorMessage"].GetStringValue(),
	}
	if ts, err := time.Parse(time.RFC3339, fields["lastFailure"].GetStringValue()); err == nil {
		res.LastFailure = ts
	}
	return res
}

// ToStructSnapshot converts a workflow snapshot into its wire form. applied
// reports whether the command that produced it took effect.
func ToStructSnapshot(snap workflow.Snapshot, applied bool) (*structpb.Struct, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert snapshot: %w", err)
	}
	out.Fields["applied"] = structpb.NewBoolValue(applied)
	return out, nil
}

// FromStructSnapshot decodes a wire snapshot and its applied flag.
func FromStructSnapshot(in *structpb.Struct) (workflow.Snapshot, bool, error) {
	if in == nil {
		return workflow.Snapshot{}, false, fmt.Errorf("snapshot is nil")
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return workflow.Snapshot{}, false, fmt.Errorf("convert snapshot: %w", err)
	}
	var snap workflow.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return workflow.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, in.GetFields()["applied"].GetBoolValue(), nil
}

func stringField(in *structpb.Struct, name string) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return v.GetStringValue(), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}
