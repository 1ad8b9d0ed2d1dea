package integration

import (
	"net/http"
	"strings"
	"testing"

	"khata/internal/models"
)

func TestClassifyMessageFlow(t *testing.T) {
	app := setupApp(t)

	outcome := app.classifyMessage(t, "HDFCBK",
		"Rs.450.00 debited from A/c XX1234 at SWIGGY on 12-06-25", http.StatusCreated)

	decision := outcome["decision"].(map[string]interface{})
	if decision["outcome"] != "INSERT" {
		t.Fatalf("expected INSERT decision, got %v", decision["outcome"])
	}
	if outcome["merchant"] != "Swiggy" {
		t.Errorf("expected normalized merchant Swiggy, got %v", outcome["merchant"])
	}
	if outcome["category_name"] != "Food & Dining" {
		t.Errorf("expected category Food & Dining, got %v", outcome["category_name"])
	}

	entryID, _ := outcome["entry_id"].(string)
	if entryID == "" {
		t.Fatal("expected an entry_id for a persisted decision")
	}

	var entry models.LedgerEntry
	if err := app.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		t.Fatalf("expected entry %s in the database: %v", entryID, err)
	}
	if entry.Type != models.TypeExpense {
		t.Errorf("expected type EXPENSE, got %s", entry.Type)
	}
	if entry.Amount.StringFixed(2) != "450.00" {
		t.Errorf("expected amount 450.00, got %s", entry.Amount.StringFixed(2))
	}
	if len(entry.ContentHash) != 16 {
		t.Errorf("expected a 16-char content hash, got %q", entry.ContentHash)
	}
}

func TestClassifyMessageDrop(t *testing.T) {
	app := setupApp(t)

	outcome := app.classifyMessage(t, "HDFCBK",
		"Your OTP for txn of Rs.500 is 482910. Do not share it with anyone.", http.StatusOK)

	decision := outcome["decision"].(map[string]interface{})
	if decision["outcome"] != "DROP" {
		t.Fatalf("expected DROP decision, got %v", decision["outcome"])
	}
	if outcome["entry_id"] != nil {
		t.Errorf("expected no entry_id on a drop, got %v", outcome["entry_id"])
	}

	var count int64
	app.DB.Model(&models.LedgerEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty ledger after a drop, got %d rows", count)
	}
}

func TestClassifyMessageDuplicate(t *testing.T) {
	app := setupApp(t)

	body := "Rs.899.00 debited from A/c XX1234 at ZOMATO on 14-06-25"
	first := app.classifyMessage(t, "HDFCBK", body, http.StatusCreated)
	second := app.classifyMessage(t, "HDFCBK", body, http.StatusOK)

	if second["duplicate"] != true {
		t.Fatalf("expected the replay to be flagged duplicate, got %v", second["duplicate"])
	}

	var live int64
	app.DB.Model(&models.LedgerEntry{}).Count(&live)
	if live != 1 {
		t.Errorf("expected exactly one live row, got %d", live)
	}

	// The first insert stays canonical.
	var entry models.LedgerEntry
	if err := app.DB.First(&entry).Error; err != nil {
		t.Fatalf("failed to load canonical entry: %v", err)
	}
	if entry.ID != first["entry_id"].(string) {
		t.Errorf("expected canonical entry %v, got %s", first["entry_id"], entry.ID)
	}
}

func TestClassifyRequiresAPIKey(t *testing.T) {
	app := setupApp(t)

	payload := `{"sender":"HDFCBK","body":"Rs.450 debited from A/c XX1234 at SWIGGY"}`

	rec := app.request("POST", "/api/v1/messages/classify", payload, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a key, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/messages/classify", payload, "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong key, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_API_KEY" {
		t.Errorf("expected INVALID_API_KEY, got %v", errObj["code"])
	}
}

func TestScanMessagesFlow(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/messages/scan", `{"messages": [
		{"sender": "HDFCBK", "body": "Rs.450.00 debited from A/c XX1234 at SWIGGY on 12-06-25", "received_at": "2025-06-12T10:00:00Z"},
		{"sender": "HDFCBK", "body": "Rs.450.00 debited from A/c XX1234 at SWIGGY on 12-06-25", "received_at": "2025-06-12T10:05:00Z"},
		{"sender": "HDFCBK", "body": "Your OTP for txn is 482910. Do not share it.", "received_at": "2025-06-12T09:00:00Z"}
	]}`, testAPIKey)

	if rec.Code != http.StatusOK {
		t.Fatalf("scan returned %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["processed"] != float64(3) {
		t.Errorf("expected 3 processed, got %v", result["processed"])
	}
	if result["inserted"] != float64(1) {
		t.Errorf("expected 1 inserted, got %v", result["inserted"])
	}
	if result["duplicates"] != float64(1) {
		t.Errorf("expected 1 duplicate, got %v", result["duplicates"])
	}
	if result["dropped"] != float64(1) {
		t.Errorf("expected 1 dropped, got %v", result["dropped"])
	}
	traceFile, _ := result["trace_file"].(string)
	if traceFile == "" {
		t.Error("expected a trace_file for a debug-enabled scan")
	}

	var live int64
	app.DB.Model(&models.LedgerEntry{}).Count(&live)
	if live != 1 {
		t.Errorf("expected exactly one live row after scan, got %d", live)
	}
}

func TestTraceExportFlow(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/traces/export", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any traces, got %d", rec.Code)
	}

	app.classifyMessage(t, "HDFCBK",
		"Rs.450.00 debited from A/c XX1234 at SWIGGY on 12-06-25", http.StatusCreated)

	rec = app.request("GET", "/api/v1/traces", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trace list returned %d", rec.Code)
	}
	files := parseJSON(t, rec)["files"].([]interface{})
	if len(files) != 1 {
		t.Fatalf("expected 1 trace file, got %d", len(files))
	}

	rec = app.request("GET", "/api/v1/traces/export", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trace export returned %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("expected NDJSON content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"transactionId"`) || !strings.Contains(body, `"ruleTrace"`) {
		t.Errorf("expected trace fields in export, got: %s", body)
	}
}
