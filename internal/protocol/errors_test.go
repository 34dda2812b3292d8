package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrNotInPool,
		ErrUnsupported,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_WORLD_BUSY") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"LOCATE","protocol_version":"1.0","request_id":"r1","target":"x:y"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypeLocate || m.RequestID != "r1" {
		t.Fatalf("got %+v", m)
	}
	if _, err := DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}

func TestNewRequestID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		if len(id) != 36 || seen[id] {
			t.Fatalf("bad id %q", id)
		}
		seen[id] = true
	}
}
