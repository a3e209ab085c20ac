package grpc

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/remark-server/internal/evidence"
	"github.com/godilite/remark-server/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response field names.
const (
	fieldScores      = "scores"
	fieldRemarksText = "remarks_text"
	fieldFallback    = "fallback"
	fieldSubject     = "subject"
	fieldLesson      = "lesson"
	fieldContext     = "context"
	fieldEvidence    = "evidence"
	fieldRunID       = "run_id"
	fieldLimit       = "limit"
	fieldName        = "name"
	fieldData        = "data"
)

func stringField(req *structpb.Struct, key string) string {
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// scoresField returns the raw score values. Numbers arrive as float64,
// strings as strings and nulls as nil, all of which remark.Classify accepts.
func scoresField(req *structpb.Struct) ([]any, error) {
	v, ok := req.GetFields()[fieldScores]
	if !ok || v.GetListValue() == nil {
		return nil, status.Error(codes.InvalidArgument, "scores must be a list")
	}
	values := v.GetListValue().GetValues()
	if len(values) == 0 {
		return nil, status.Error(codes.InvalidArgument, "scores must not be empty")
	}
	out := make([]any, len(values))
	for i, sv := range values {
		out[i] = sv.AsInterface()
	}
	return out, nil
}

func toAnnotateRequest(req *structpb.Struct) (service.AnnotateRequest, error) {
	scores, err := scoresField(req)
	if err != nil {
		return service.AnnotateRequest{}, err
	}
	return service.AnnotateRequest{
		Scores:      scores,
		RemarksText: stringField(req, fieldRemarksText),
		Fallback:    stringField(req, fieldFallback),
		Subject:     stringField(req, fieldSubject),
		Lesson:      stringField(req, fieldLesson),
	}, nil
}

func toGenerateRequest(req *structpb.Struct) (service.GenerateRequest, error) {
	scores, err := scoresField(req)
	if err != nil {
		return service.GenerateRequest{}, err
	}

	items := []evidence.Evidence{{Text: stringField(req, fieldContext)}}
	for i, v := range req.GetFields()[fieldEvidence].GetListValue().GetValues() {
		doc := v.GetStructValue()
		if doc == nil {
			return service.GenerateRequest{}, status.Errorf(codes.InvalidArgument, "evidence[%d] must be an object", i)
		}
		name := stringField(doc, fieldName)
		data, err := base64.StdEncoding.DecodeString(stringField(doc, fieldData))
		if err != nil {
			return service.GenerateRequest{}, status.Errorf(codes.InvalidArgument, "evidence[%d] data is not base64", i)
		}
		ev, err := evidence.Load(name, data)
		if err != nil {
			return service.GenerateRequest{}, status.Errorf(codes.InvalidArgument, "evidence[%d]: %v", i, err)
		}
		items = append(items, ev)
	}

	return service.GenerateRequest{
		Scores:   scores,
		Subject:  stringField(req, fieldSubject),
		Lesson:   stringField(req, fieldLesson),
		Fallback: stringField(req, fieldFallback),
		Evidence: evidence.Merge(items...),
	}, nil
}

func runIDField(req *structpb.Struct) (string, error) {
	id := strings.TrimSpace(stringField(req, fieldRunID))
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "run_id is required")
	}
	return id, nil
}

func limitField(req *structpb.Struct) int {
	return int(req.GetFields()[fieldLimit].GetNumberValue())
}

func runToStruct(run service.Run) (*structpb.Struct, error) {
	remarks := make([]any, len(run.Rows))
	rows := make([]any, len(run.Rows))
	for i, r := range run.Rows {
		remarks[i] = r.Remark
		rows[i] = map[string]any{
			"index":    r.Index,
			"score":    r.Score,
			"band":     r.Band,
			"remark":   r.Remark,
			"fallback": r.Fallback,
		}
	}
	bands := make([]any, len(run.Bands))
	for i, b := range run.Bands {
		bands[i] = map[string]any{
			"band":      b.Band,
			"rows":      b.Rows,
			"fallbacks": b.Fallbacks,
		}
	}

	out, err := structpb.NewStruct(map[string]any{
		fieldRunID:     run.ID,
		"source":       run.Source,
		fieldSubject:   run.Subject,
		fieldLesson:    run.Lesson,
		fieldFallback:  run.Fallback,
		"created_at":   run.CreatedAt.UTC().Format(time.RFC3339),
		"remarks":      remarks,
		"rows":         rows,
		"bands":        bands,
		"fallbacks":    run.Fallbacks,
		"unclassified": run.Unclassified,
		"leftover":     run.Leftover,
	})
	if err != nil {
		return nil, fmt.Errorf("encode run: %w", err)
	}
	return out, nil
}

func runsToStruct(runs []service.RunSummary) (*structpb.Struct, error) {
	items := make([]any, len(runs))
	for i, r := range runs {
		items[i] = map[string]any{
			fieldRunID:   r.ID,
			"source":     r.Source,
			fieldSubject: r.Subject,
			fieldLesson:  r.Lesson,
			"created_at": r.CreatedAt.UTC().Format(time.RFC3339),
			"rows":       r.Rows,
			"fallbacks":  r.Fallbacks,
		}
	}
	out, err := structpb.NewStruct(map[string]any{"runs": items})
	if err != nil {
		return nil, fmt.Errorf("encode runs: %w", err)
	}
	return out, nil
}
