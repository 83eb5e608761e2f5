//go:build lambda

package main

import (
	"encoding/base64"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHandler(t *testing.T) {
	body := `{"text": "hi", "limit": 60, "config": {"minInit": 14, "maxInit": 16, "rollingLimit": true}}`
	resp, err := handler(t.Context(), events.LambdaFunctionURLRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, resp.Body)

	r := gjson.Parse(resp.Body)
	assert.True(t, r.Get("complete").Bool())
	assert.Equal(t, int64(60), r.Get("limit").Int())
	sols := r.Get("solutions").Array()
	require.NotEmpty(t, sols)
	assert.Equal(t, int64(28), sols[len(sols)-1].Get("length").Int())
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"not json", `{"text": `},
		{"missing text", `{"limit": 60}`},
		{"bad escape", `{"text": "\\x4"}`},
		{"bad config", `{"text": "hi", "config": {"minInit": 20, "maxInit": 15}}`},
		{"unknown config key", `{"text": "hi", "config": {"speed": 11}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := handler(t.Context(), events.LambdaFunctionURLRequest{Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
			assert.True(t, gjson.Get(resp.Body, "error").Exists())
		})
	}
}
