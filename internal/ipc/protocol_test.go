package ipc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

func TestEncodeRequest(t *testing.T) {
	req, err := NewRequest(CmdSeek, SeekRequest{Position: 42.5})
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}

	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	// Verify it's valid JSON
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}

	if decoded["cmd"] != "seek" {
		t.Errorf("Expected cmd 'seek', got '%v'", decoded["cmd"])
	}
	payload, ok := decoded["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data object, got %T", decoded["data"])
	}
	if payload["position"] != 42.5 {
		t.Errorf("Expected position 42.5, got %v", payload["position"])
	}
}

func TestNewRequestWithoutData(t *testing.T) {
	req, err := NewRequest(CmdToggle, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	data, _ := EncodeRequest(req)
	if string(data) != `{"cmd":"toggle"}` {
		t.Errorf("Unexpected encoding %s", data)
	}
}

func TestDecodeRequestWithData(t *testing.T) {
	data := []byte(`{"cmd":"play","data":{"song":{"id":"yt:1","title":"Song","mediaUrl":"https://m.example/1"},"queue":[{"id":"yt:1"},{"id":"yt:2"}]}}`)

	req, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}

	if req.Cmd != CmdPlay {
		t.Errorf("Expected cmd 'play', got '%s'", req.Cmd)
	}

	var playReq PlayRequest
	if err := decodeData(req, &playReq); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}

	if playReq.Song.ID != "yt:1" || playReq.Song.MediaURL != "https://m.example/1" {
		t.Errorf("Unexpected song %+v", playReq.Song)
	}
	if len(playReq.Queue) != 2 {
		t.Errorf("Expected 2 queued songs, got %d", len(playReq.Queue))
	}
}

func TestDecodeRequestInvalid(t *testing.T) {
	data := []byte(`not valid json`)

	_, err := DecodeRequest(data)
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestDecodeDataMissing(t *testing.T) {
	if err := decodeData(&Request{Cmd: CmdSeek}, &SeekRequest{}); err == nil {
		t.Error("Expected error for missing data")
	}
	req := &Request{Cmd: CmdSeek, Data: json.RawMessage(`{"position":"far"}`)}
	if err := decodeData(req, &SeekRequest{}); err == nil {
		t.Error("Expected error for mistyped data")
	}
}

func TestRadioRequestToggleForm(t *testing.T) {
	var r RadioRequest
	if err := json.Unmarshal([]byte(`{}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Enabled != nil {
		t.Error("Expected nil Enabled for toggle form")
	}

	if err := json.Unmarshal([]byte(`{"enabled":false}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Enabled == nil || *r.Enabled {
		t.Error("Expected explicit false")
	}
}

func TestEncodeResponse(t *testing.T) {
	resp, err := NewSuccessResponse(ToggleResponse{Enabled: true})
	if err != nil {
		t.Fatalf("NewSuccessResponse failed: %v", err)
	}

	data, err := EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}

	if decoded["success"] != true {
		t.Errorf("Expected success true, got %v", decoded["success"])
	}
	if _, ok := decoded["error"]; ok {
		t.Error("Expected error to be omitted")
	}
}

func TestDecodeResponseError(t *testing.T) {
	data := []byte(`{"success":false,"error":"unknown command"}`)

	resp, err := DecodeResponse(data)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}

	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Error != "unknown command" {
		t.Errorf("Expected error 'unknown command', got '%s'", resp.Error)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("boom")
	if resp.Success || resp.Error != "boom" || resp.Data != nil {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestNewPushMessage(t *testing.T) {
	data, err := NewPushMessage(PushNotice, types.Notice{Kind: types.NoticeUnplayable, Message: "nope", Song: types.Song{ID: "x"}})
	if err != nil {
		t.Fatalf("NewPushMessage failed: %v", err)
	}

	var msg PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Result is not valid JSON: %v", err)
	}
	if msg.Type != "notice" {
		t.Errorf("Expected type notice, got %s", msg.Type)
	}

	var notice types.Notice
	if err := json.Unmarshal(msg.Data, &notice); err != nil {
		t.Fatalf("Failed to decode notice: %v", err)
	}
	if notice.Kind != types.NoticeUnplayable {
		t.Errorf("Unexpected kind %v", notice.Kind)
	}
	if !strings.Contains(string(msg.Data), `"kind":"unplayable"`) {
		t.Errorf("Expected kind by name in %s", msg.Data)
	}
	if notice.Message != "nope" || notice.Song.ID != "x" {
		t.Errorf("Unexpected notice %+v", notice)
	}
}
