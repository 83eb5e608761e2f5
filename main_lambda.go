//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tidwall/gjson"
)

// maxLambdaTimeout caps a single request's search time.
const maxLambdaTimeout = 10 * time.Minute

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type crunchResult struct {
	Limit     int              `json:"limit"`
	Complete  bool             `json:"complete"`
	TimeMs    int64            `json:"timeMs"`
	Solutions []solutionRecord `json:"solutions"`
}

// handler runs one search per request. The body is
//
//	{"text": "hello world", "limit": 70, "timeoutMs": 20000, "config": {...}}
//
// where config takes the same keys as a JSON config file.
func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	if !gjson.Valid(body) {
		return errResp(400, "invalid JSON")
	}
	req := gjson.Parse(body)

	text := req.Get("text")
	if !text.Exists() {
		return errResp(400, "missing text field")
	}
	goal, err := ParseText(text.String())
	if err != nil {
		return errResp(400, err.Error())
	}

	cfg := DefaultConfig()
	if c := req.Get("config"); c.Exists() {
		if err := applyJSONConfig([]byte(c.Raw), &cfg); err != nil {
			return errResp(400, err.Error())
		}
	}
	if l := req.Get("limit"); l.Exists() {
		cfg.Limit = int(l.Int())
	}

	timeout := maxLambdaTimeout
	if t := req.Get("timeoutMs"); t.Exists() && t.Int() > 0 {
		timeout = min(timeout, time.Duration(t.Int())*time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cr, err := NewCruncher(cfg, goal)
	if err != nil {
		return errResp(400, err.Error())
	}

	start := time.Now()
	res := crunchResult{Limit: cr.Config().Limit, Solutions: []solutionRecord{}}
	err = cr.Run(ctx, func(sol Solution) error {
		res.Solutions = append(res.Solutions, newSolutionRecord(&sol))
		return nil
	})
	switch {
	case err == nil:
		res.Complete = true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		return errResp(500, err.Error())
	}
	res.TimeMs = time.Since(start).Milliseconds()

	respJSON, _ := json.Marshal(res)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
