package model

import (
	"encoding/json"
	"testing"
)

func TestVaultDepositDataJSONStringFields(t *testing.T) {
	payload := VaultDepositData{
		Caller:   "0x1111111111111111111111111111111111111111",
		Owner:    "0x2222222222222222222222222222222222222222",
		Receiver: "0x2222222222222222222222222222222222222222",
		Assets:   "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		Shares:   "5000000000000000000",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"assets", "shares"} {
		if _, ok := decoded[field].(string); !ok {
			t.Fatalf("%s should be string", field)
		}
	}
	if decoded["assets"] != payload.Assets {
		t.Fatalf("assets lost precision: %v", decoded["assets"])
	}
}

func TestDecodeOutcomeConstructors(t *testing.T) {
	event := &TypedEvent{Kind: KindShareTransfer}
	decoded := Decoded(event)
	if decoded.Status != StatusDecoded || decoded.Event != event {
		t.Fatalf("decoded outcome mismatch: %+v", decoded)
	}

	skipped := Skipped()
	if skipped.Status != StatusSkipped || skipped.Event != nil || skipped.Err != "" {
		t.Fatalf("skipped outcome mismatch: %+v", skipped)
	}

	errored := Errored(errTest("bad data"))
	if errored.Status != StatusErrored || errored.Err != "bad data" {
		t.Fatalf("errored outcome mismatch: %+v", errored)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
